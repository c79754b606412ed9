// Package generate turns a user's profile, writing samples and current
// trends into one short social post.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/llm"
	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
	"github.com/pawelsloboda5/draft-spark-compose/internal/metrics"
)

var (
	// ErrNoProfile means the user has not set a niche and tone yet.
	ErrNoProfile = errors.New("profile not set")
	// ErrGeneration means the model call failed or returned nothing usable.
	ErrGeneration = errors.New("generation failed")
	// ErrPersist means a post was generated but could not be saved.
	ErrPersist = errors.New("saving generated post failed")
)

// MaxPostLen is the longest post the generator returns, in characters.
const MaxPostLen = 280

const sampleLimit = 3

const systemPrompt = "You are a social-media copywriter that perfectly mimics a user's tone."

// ProfileReader loads a user's profile; nil means none is set.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*database.Profile, error)
}

// SampleReader lists a user's writing samples, newest first.
type SampleReader interface {
	ListSamples(ctx context.Context, userID string, limit int) ([]database.Sample, error)
}

// PostWriter persists generated posts.
type PostWriter interface {
	InsertPost(ctx context.Context, userID, content string) (*database.GeneratedPost, error)
}

// TrendResolver supplies up to three headlines for a niche.
type TrendResolver interface {
	Resolve(ctx context.Context, niche string) []string
}

// Options are the fixed model parameters.
type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Request is one generation request. SampleText and Headline are optional.
type Request struct {
	UserID     string
	SampleText string
	Headline   string
}

// Generator runs the generation workflow.
type Generator struct {
	profiles ProfileReader
	samples  SampleReader
	posts    PostWriter
	trends   TrendResolver
	provider llm.Provider
	opts     Options
	log      *zap.Logger
}

// NewGenerator creates a generator. A nil provider makes every call fail
// with ErrGeneration.
func NewGenerator(profiles ProfileReader, samples SampleReader, posts PostWriter, trends TrendResolver, provider llm.Provider, opts Options) *Generator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 120
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.8
	}
	return &Generator{
		profiles: profiles,
		samples:  samples,
		posts:    posts,
		trends:   trends,
		provider: provider,
		opts:     opts,
		log:      logging.Named("generate"),
	}
}

// Generate produces, saves and returns one post for req.UserID.
func (g *Generator) Generate(ctx context.Context, req Request) (*database.GeneratedPost, error) {
	log := g.log.With(zap.String("user_id", req.UserID))

	var (
		profile *database.Profile
		samples []database.Sample
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p, err := g.profiles.GetProfile(egCtx, req.UserID)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		profile = p
		return nil
	})
	eg.Go(func() error {
		s, err := g.samples.ListSamples(egCtx, req.UserID, sampleLimit)
		if err != nil {
			return fmt.Errorf("loading samples: %w", err)
		}
		samples = s
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if profile == nil {
		metrics.RecordGeneration(metrics.ResultNoProfile)
		return nil, ErrNoProfile
	}

	trends := g.trends.Resolve(ctx, profile.Niche)

	prompt := buildPrompt(promptInput{
		Niche:    profile.Niche,
		Tone:     profile.Tone,
		Samples:  styleSamples(req.SampleText, samples),
		Trends:   trends,
		Headline: strings.TrimSpace(req.Headline),
	})

	text, err := g.callModel(ctx, prompt)
	if err != nil {
		metrics.RecordGeneration(metrics.ResultModelError)
		log.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	post, err := g.posts.InsertPost(ctx, req.UserID, text)
	if err != nil {
		metrics.RecordGeneration(metrics.ResultPersistError)
		// The text is not returned to the caller; keep it in the log.
		log.Error("generated post not saved", zap.String("content", text), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	metrics.RecordGeneration(metrics.ResultSuccess)
	log.Info("post generated",
		zap.Int64("post_id", post.ID),
		zap.String("niche", profile.Niche),
		zap.Int("samples", len(samples)),
		zap.Int("trends", len(trends)),
		zap.Bool("headline", req.Headline != ""))
	return post, nil
}

func (g *Generator) callModel(ctx context.Context, prompt string) (string, error) {
	if g.provider == nil {
		return "", errors.New("no model provider configured")
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	raw, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", err
	}

	text := llm.CleanPostText(raw, MaxPostLen)
	if text == "" {
		return "", errors.New("model returned an empty post")
	}
	return text, nil
}

// styleSamples puts a one-off sample ahead of the stored ones for this call.
func styleSamples(oneOff string, stored []database.Sample) []string {
	var out []string
	if s := strings.TrimSpace(oneOff); s != "" {
		out = append(out, s)
	}
	for _, s := range stored {
		out = append(out, s.Content)
	}
	return out
}
