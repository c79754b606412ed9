// Package trends resolves current headlines for a niche, preferring a live
// news fetch and falling back to previously cached headlines.
package trends

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
	"github.com/pawelsloboda5/draft-spark-compose/internal/metrics"
	"github.com/pawelsloboda5/draft-spark-compose/internal/news"
)

const (
	defaultFetchLimit = 5
	cacheLimit        = 5
	maxTrends         = 3
	minLiveCount      = 2
)

// Cache is the trend storage the resolver reads from and writes to.
type Cache interface {
	UpsertTrend(ctx context.Context, niche, content, source string) (bool, error)
	RecentTrends(ctx context.Context, niche string, limit int) ([]database.Trend, error)
}

// Resolution describes where a set of trends came from.
type Resolution struct {
	Niche    string
	Category string
	Trends   []string
	Source   string // metrics.TrendSource*
	Live     int    // headlines returned by the live fetch
	Inserted int    // live headlines newly written to the cache
}

// Resolver returns up to three current headlines for a niche.
type Resolver struct {
	source     news.HeadlineSource
	cache      Cache
	timeout    time.Duration
	fetchLimit int
	log        *zap.Logger
}

// NewResolver creates a resolver. A nil source disables live fetching; a
// zero timeout means the caller's context alone bounds the fetch.
func NewResolver(source news.HeadlineSource, cache Cache, timeout time.Duration) *Resolver {
	return &Resolver{
		source:     source,
		cache:      cache,
		timeout:    timeout,
		fetchLimit: defaultFetchLimit,
		log:        logging.Named("trends"),
	}
}

// WithFetchLimit sets how many live headlines are requested per resolve.
func (r *Resolver) WithFetchLimit(n int) *Resolver {
	if n > 0 {
		r.fetchLimit = n
	}
	return r
}

// Resolve returns at most three headlines for niche. An empty result is
// valid when neither the live source nor the cache has anything.
func (r *Resolver) Resolve(ctx context.Context, niche string) []string {
	return r.ResolveDetailed(ctx, niche).Trends
}

// ResolveDetailed is Resolve with bookkeeping about the path taken.
func (r *Resolver) ResolveDetailed(ctx context.Context, niche string) Resolution {
	res := Resolution{Niche: niche, Category: news.CategoryFor(niche)}

	live := r.fetchLive(ctx, res.Category)
	res.Live = len(live)

	sourceName := ""
	if r.source != nil {
		sourceName = r.source.Name()
	}
	for _, headline := range live {
		inserted, err := r.cache.UpsertTrend(ctx, niche, headline, sourceName)
		if err != nil {
			r.log.Debug("trend cache write failed", zap.String("niche", niche), zap.Error(err))
			continue
		}
		if inserted {
			res.Inserted++
		}
	}

	selected := live
	res.Source = metrics.TrendSourceLive
	if len(live) < minLiveCount {
		selected = r.fromCache(ctx, niche)
		res.Source = metrics.TrendSourceCache
	}

	if len(selected) > maxTrends {
		selected = selected[:maxTrends]
	}
	if len(selected) == 0 {
		res.Source = metrics.TrendSourceEmpty
		selected = []string{}
	}
	res.Trends = selected

	metrics.RecordTrendResolution(res.Source)
	r.log.Debug("resolved trends",
		zap.String("niche", niche),
		zap.String("category", res.Category),
		zap.String("source", res.Source),
		zap.Int("live", res.Live),
		zap.Int("count", len(selected)))
	return res
}

// fetchLive treats any failure as zero results.
func (r *Resolver) fetchLive(ctx context.Context, category string) []string {
	if r.source == nil {
		return nil
	}

	fetchCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	headlines, err := r.source.Headlines(fetchCtx, category, r.fetchLimit)
	if err != nil {
		metrics.RecordNewsFetchError(r.source.Name())
		r.log.Warn("live headline fetch failed",
			zap.String("provider", r.source.Name()),
			zap.String("category", category),
			zap.Error(err))
		return nil
	}
	if len(headlines) > r.fetchLimit {
		headlines = headlines[:r.fetchLimit]
	}
	return headlines
}

func (r *Resolver) fromCache(ctx context.Context, niche string) []string {
	cached, err := r.cache.RecentTrends(ctx, niche, cacheLimit)
	if err != nil {
		r.log.Warn("trend cache read failed", zap.String("niche", niche), zap.Error(err))
		return nil
	}
	out := make([]string, 0, len(cached))
	for _, t := range cached {
		out = append(out, t.Content)
	}
	return out
}
