package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
)

const defaultNewsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIClient fetches top headlines from NewsAPI.
type NewsAPIClient struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
}

// NewNewsAPIClient creates a new NewsAPI client. The API key is read from apiKeyEnv.
func NewNewsAPIClient(apiKeyEnv, baseURL, language string) *NewsAPIClient {
	if baseURL == "" {
		baseURL = defaultNewsAPIBaseURL
	}
	if language == "" {
		language = "en"
	}
	return &NewsAPIClient{
		apiKey:   os.Getenv(apiKeyEnv),
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *NewsAPIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *NewsAPIClient) Name() string { return SourceNewsAPI }

// Headlines queries top-headlines for the category, newest first.
func (c *NewsAPIClient) Headlines(ctx context.Context, category string, limit int) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("NewsAPI key not configured")
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > 100 {
		limit = 100
	}

	params := url.Values{
		"category": {category},
		"pageSize": {strconv.Itoa(limit)},
		"sortBy":   {"publishedAt"},
		"language": {c.language},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/top-headlines?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NewsAPI error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("NewsAPI returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Status != "" && result.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI status %s: %s", result.Status, result.Message)
	}

	var titles []string
	for _, a := range result.Articles {
		title := cleanTitle(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		titles = append(titles, title)
		if len(titles) >= limit {
			break
		}
	}

	logging.Named("news").Debug("fetched headlines",
		zap.String("provider", SourceNewsAPI),
		zap.String("category", category),
		zap.Int("count", len(titles)))
	return titles, nil
}
