package trends

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StepResult holds the outcome of refreshing one niche.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a refresh run.
type Result struct {
	Steps []StepResult
}

// Failed reports whether any step failed.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Refresher warms the trend cache for a set of niches.
type Refresher struct {
	resolver    *Resolver
	concurrency int
}

// NewRefresher creates a refresher that resolves up to concurrency niches at once.
func NewRefresher(resolver *Resolver, concurrency int) *Refresher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Refresher{resolver: resolver, concurrency: concurrency}
}

// RefreshAll resolves trends for every niche. Steps are reported in the
// order the niches were given.
func (f *Refresher) RefreshAll(ctx context.Context, niches []string) *Result {
	steps := make([]StepResult, len(niches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, niche := range niches {
		g.Go(func() error {
			steps[i] = f.refresh(gctx, niche)
			return nil
		})
	}
	_ = g.Wait()

	return &Result{Steps: steps}
}

// Refresh resolves a single niche.
func (f *Refresher) Refresh(ctx context.Context, niche string) StepResult {
	return f.refresh(ctx, niche)
}

func (f *Refresher) refresh(ctx context.Context, niche string) StepResult {
	if err := ctx.Err(); err != nil {
		return StepResult{Name: niche, Err: err}
	}

	res := f.resolver.ResolveDetailed(ctx, niche)
	step := StepResult{
		Name: niche,
		Summary: fmt.Sprintf("%d live (%d new), %d trends from %s",
			res.Live, res.Inserted, len(res.Trends), res.Source),
	}
	if len(res.Trends) == 0 {
		step.Err = fmt.Errorf("no trends available for %s (category %s)", niche, res.Category)
	}

	f.resolver.log.Info("refreshed trends",
		zap.String("niche", niche),
		zap.Int("live", res.Live),
		zap.Int("inserted", res.Inserted),
		zap.String("source", res.Source))
	return step
}
