// Package profile manages a user's niche/tone preference and writing samples.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
)

// ErrInvalid is returned for input that fails validation.
var ErrInvalid = errors.New("invalid input")

// Niches and Tones are the options offered to users. Other values are
// accepted; unknown niches use the general news category.
var (
	Niches = []string{"AI", "Fitness", "Finance", "Health", "Travel"}
	Tones  = []string{"Formal", "Casual", "Humorous", "Motivational"}
)

const (
	maxLabelLen  = 64
	MaxSampleLen = 280
)

// Store is the persistence the service needs.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*database.Profile, error)
	UpsertProfile(ctx context.Context, userID, niche, tone string) error
	HasProfile(ctx context.Context, userID string) (bool, error)
	InsertSample(ctx context.Context, userID, content string) (*database.Sample, error)
	ListSamples(ctx context.Context, userID string, limit int) ([]database.Sample, error)
	DeleteSample(ctx context.Context, userID string, sampleID int64) error
}

// ExistenceCache caches HasProfile answers. *cache.ProfileCache satisfies it.
type ExistenceCache interface {
	HasProfile(ctx context.Context, userID string, load func(context.Context) (bool, error)) (bool, error)
}

// Subscriber is called after a profile is created or changed.
type Subscriber func(ctx context.Context, p database.Profile)

// Service wraps the profile and sample stores.
type Service struct {
	store Store
	cache ExistenceCache
	log   *zap.Logger

	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewService creates a service. cache may be nil.
func NewService(store Store, cache ExistenceCache) *Service {
	return &Service{store: store, cache: cache, log: logging.Named("profile")}
}

// Subscribe registers fn to run after every successful upsert. Subscribers
// run synchronously in registration order and should hand off slow work.
func (s *Service) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Get returns the user's profile or nil when none exists.
func (s *Service) Get(ctx context.Context, userID string) (*database.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// Upsert creates or replaces the user's profile and notifies subscribers.
func (s *Service) Upsert(ctx context.Context, userID, niche, tone string) (*database.Profile, error) {
	niche, err := validLabel("niche", niche)
	if err != nil {
		return nil, err
	}
	tone, err = validLabel("tone", tone)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertProfile(ctx, userID, niche, tone); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile for %s missing after upsert", userID)
	}

	s.log.Info("profile saved", zap.String("user_id", userID), zap.String("niche", niche), zap.String("tone", tone))
	s.notify(ctx, *p)
	return p, nil
}

// HasProfile reports whether the user has set a profile.
func (s *Service) HasProfile(ctx context.Context, userID string) (bool, error) {
	load := func(ctx context.Context) (bool, error) {
		return s.store.HasProfile(ctx, userID)
	}
	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.HasProfile(ctx, userID, load)
}

func (s *Service) notify(ctx context.Context, p database.Profile) {
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx, p)
	}
}

// AddSample stores a writing sample, truncated to MaxSampleLen characters.
func (s *Service) AddSample(ctx context.Context, userID, content string) (*database.Sample, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: sample content is empty", ErrInvalid)
	}
	content = truncateRunes(content, MaxSampleLen)

	sample, err := s.store.InsertSample(ctx, userID, content)
	if err != nil {
		return nil, fmt.Errorf("saving sample: %w", err)
	}
	return sample, nil
}

// ListSamples returns the user's samples, newest first.
func (s *Service) ListSamples(ctx context.Context, userID string) ([]database.Sample, error) {
	return s.store.ListSamples(ctx, userID, 0)
}

// DeleteSample removes one of the user's samples. Deleting a sample owned by
// someone else returns database.ErrNotFound.
func (s *Service) DeleteSample(ctx context.Context, userID string, sampleID int64) error {
	return s.store.DeleteSample(ctx, userID, sampleID)
}

func validLabel(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if utf8.RuneCountInString(v) > maxLabelLen {
		return "", fmt.Errorf("%w: %s is longer than %d characters", ErrInvalid, field, maxLabelLen)
	}
	return v, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
