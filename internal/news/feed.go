package news

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
)

// FeedSource reads headlines from one RSS/Atom feed per category.
type FeedSource struct {
	feeds  map[string]string
	parser *gofeed.Parser
}

// NewFeedSource creates a FeedSource from a category -> feed URL map. A
// category without its own feed falls back to the DefaultCategory feed.
func NewFeedSource(feeds map[string]string) *FeedSource {
	return &FeedSource{feeds: feeds, parser: gofeed.NewParser()}
}

func (f *FeedSource) Name() string { return SourceRSS }

// IsConfigured reports whether any feed is configured.
func (f *FeedSource) IsConfigured() bool {
	return len(f.feeds) > 0
}

// Headlines parses the category's feed and returns up to limit titles,
// newest first. Entries without a publish date sort last.
func (f *FeedSource) Headlines(ctx context.Context, category string, limit int) ([]string, error) {
	feedURL, ok := f.feeds[category]
	if !ok {
		feedURL, ok = f.feeds[DefaultCategory]
	}
	if !ok || feedURL == "" {
		return nil, fmt.Errorf("no feed configured for category %q", category)
	}

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	type entry struct {
		title string
		at    time.Time
	}
	var entries []entry
	for _, item := range feed.Items {
		title := cleanTitle(item.Title)
		if title == "" {
			continue
		}
		e := entry{title: title}
		if item.PublishedParsed != nil {
			e.at = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			e.at = *item.UpdatedParsed
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.After(entries[j].at)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.title
	}

	logging.Named("news").Debug("parsed feed",
		zap.String("provider", SourceRSS),
		zap.String("category", category),
		zap.Int("count", len(titles)))
	return titles, nil
}
