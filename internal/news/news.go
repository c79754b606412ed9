// Package news fetches current headlines for a news category from a remote
// source. Only headline titles are used downstream.
package news

import (
	"context"
	"strings"

	"github.com/pawelsloboda5/draft-spark-compose/internal/config"
)

// Source names, recorded alongside cached headlines.
const (
	SourceNewsAPI = "newsapi"
	SourceRSS     = "rss"
)

// DefaultCategory is used for niches with no explicit mapping.
const DefaultCategory = "general"

var nicheCategories = map[string]string{
	"AI":      "technology",
	"Fitness": "health",
	"Finance": "business",
	"Health":  "health",
	"Travel":  "general",
}

// CategoryFor maps a user niche to a news category. Unknown niches map to
// DefaultCategory.
func CategoryFor(niche string) string {
	if c, ok := nicheCategories[niche]; ok {
		return c
	}
	return DefaultCategory
}

// HeadlineSource returns up to limit headline titles for a category, most
// recent first.
type HeadlineSource interface {
	Headlines(ctx context.Context, category string, limit int) ([]string, error)
	Name() string
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NewSource builds the configured headline source.
func NewSource(cfg config.News) HeadlineSource {
	if strings.ToLower(cfg.Provider) == SourceRSS {
		return NewFeedSource(cfg.Feeds)
	}
	return NewNewsAPIClient(cfg.APIKeyEnv, cfg.BaseURL, cfg.Language)
}
