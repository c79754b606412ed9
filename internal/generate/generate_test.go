package generate

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/llm"
)

type stubProvider struct {
	generateFn func(ctx context.Context, req llm.Request) (string, error)
	requests   []llm.Request
}

func (p *stubProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	p.requests = append(p.requests, req)
	return p.generateFn(ctx, req)
}

func (p *stubProvider) IsConfigured() bool { return true }

type stubTrends struct {
	trends []string
	niches []string
}

func (s *stubTrends) Resolve(_ context.Context, niche string) []string {
	s.niches = append(s.niches, niche)
	return s.trends
}

type stubPosts struct {
	insertFn func(userID, content string) (*database.GeneratedPost, error)
}

func (s *stubPosts) InsertPost(_ context.Context, userID, content string) (*database.GeneratedPost, error) {
	return s.insertFn(userID, content)
}

func replyWith(text string) *stubProvider {
	return &stubProvider{generateFn: func(context.Context, llm.Request) (string, error) {
		return text, nil
	}}
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func defaultOpts() Options {
	return Options{MaxTokens: 120, Temperature: 0.8, Timeout: time.Second}
}

func TestGenerateFitnessMotivational(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "Fitness", "Motivational"))
	_, err := db.InsertSample(ctx, "user-a", "Every rep counts. Show up.")
	require.NoError(t, err)
	_, err = db.InsertSample(ctx, "user-a", "Discipline beats motivation.")
	require.NoError(t, err)

	trends := &stubTrends{trends: []string{"Marathon season opens", "New study on sleep", "Gyms report record January"}}
	provider := replyWith(`"` + strings.Repeat("Push harder today! ", 30) + `"`)
	g := NewGenerator(db, db, db, trends, provider, defaultOpts())

	post, err := g.Generate(ctx, Request{UserID: "user-a"})
	require.NoError(t, err)

	assert.LessOrEqual(t, utf8.RuneCountInString(post.Content), MaxPostLen)
	assert.False(t, post.Favorited)
	assert.Equal(t, "user-a", post.UserID)
	assert.Equal(t, []string{"Fitness"}, trends.niches)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, systemPrompt, req.System)
	assert.Equal(t, 120, req.MaxTokens)
	assert.Equal(t, 0.8, req.Temperature)
	for _, want := range []string{
		"Niche: Fitness", "Tone: Motivational",
		"Every rep counts. Show up.", "Discipline beats motivation.",
		"• Marathon season opens", "• New study on sleep", "• Gyms report record January",
	} {
		assert.Contains(t, req.Prompt, want)
	}

	posts, err := db.ListPosts(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestGenerateNoProfileWritesNothing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	trends := &stubTrends{}
	provider := replyWith("never")
	g := NewGenerator(db, db, db, trends, provider, defaultOpts())

	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.Empty(t, provider.requests)
	assert.Empty(t, trends.niches)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Posts)
	assert.Equal(t, 0, stats.Trends)
}

func TestGenerateModelFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "AI", "Casual"))

	calls := 0
	provider := &stubProvider{generateFn: func(context.Context, llm.Request) (string, error) {
		calls++
		return "", errors.New("OpenAI API returned 500")
	}}
	g := NewGenerator(db, db, db, &stubTrends{}, provider, defaultOpts())

	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 1, calls, "no retry")

	posts, _ := db.ListPosts(ctx, "user-a")
	assert.Empty(t, posts)
}

func TestGenerateEmptyModelOutput(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "AI", "Casual"))

	g := NewGenerator(db, db, db, &stubTrends{}, replyWith("  \n "), defaultOpts())
	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateModelTimeout(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "AI", "Casual"))

	provider := &stubProvider{generateFn: func(ctx context.Context, _ llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	opts := defaultOpts()
	opts.Timeout = 10 * time.Millisecond
	g := NewGenerator(db, db, db, &stubTrends{}, provider, opts)

	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateNilProvider(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "AI", "Casual"))

	g := NewGenerator(db, db, db, &stubTrends{}, nil, defaultOpts())
	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGeneratePersistFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "AI", "Casual"))

	posts := &stubPosts{insertFn: func(string, string) (*database.GeneratedPost, error) {
		return nil, errors.New("database is locked")
	}}
	g := NewGenerator(db, db, posts, &stubTrends{}, replyWith("A fine post"), defaultOpts())

	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	assert.ErrorIs(t, err, ErrPersist)
}

func TestGenerateOneOffSampleAndHeadline(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "Finance", "Formal"))
	_, err := db.InsertSample(ctx, "user-a", "stored sample")
	require.NoError(t, err)

	provider := replyWith("Rates are moving.")
	trends := &stubTrends{trends: []string{"Resolved one", "Resolved two"}}
	g := NewGenerator(db, db, db, trends, provider, defaultOpts())

	_, err = g.Generate(ctx, Request{
		UserID:     "user-a",
		SampleText: "one-off sample",
		Headline:   "Central bank holds rates",
	})
	require.NoError(t, err)

	prompt := provider.requests[0].Prompt
	assert.Contains(t, prompt, "• Central bank holds rates")
	assert.NotContains(t, prompt, "Resolved one")
	assert.Less(t, strings.Index(prompt, "one-off sample"), strings.Index(prompt, "stored sample"))

	samples, _ := db.ListSamples(ctx, "user-a", 0)
	assert.Len(t, samples, 1, "one-off sample must not be stored")
}

func TestGenerateUsesThreeNewestSamples(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertProfile(ctx, "user-a", "AI", "Humorous"))
	for _, s := range []string{"s1", "s2", "s3", "s4"} {
		_, err := db.InsertSample(ctx, "user-a", s)
		require.NoError(t, err)
	}

	provider := replyWith("ok")
	g := NewGenerator(db, db, db, &stubTrends{}, provider, defaultOpts())
	_, err := g.Generate(ctx, Request{UserID: "user-a"})
	require.NoError(t, err)

	prompt := provider.requests[0].Prompt
	assert.Contains(t, prompt, "s4\ns3\ns2")
	assert.NotContains(t, prompt, "s1")
}

func TestBuildPrompt(t *testing.T) {
	got := buildPrompt(promptInput{
		Niche:   "AI",
		Tone:    "Casual",
		Samples: []string{"a", "b"},
		Trends:  []string{"t1", "t2", "t3", "t4"},
	})
	want := "Niche: AI\nTone: Casual\nWriting style samples:\na\nb\n\n" +
		"Fresh trending topics:\n• t1\n• t2\n• t3\n\n" +
		"Write ONE short social post (≤280 chars) that combines the user's tone with ONE of the trending topics. Respond with only the post text."
	assert.Equal(t, want, got)
}

func TestBuildPromptNoTrends(t *testing.T) {
	got := buildPrompt(promptInput{Niche: "Travel", Tone: "Formal"})
	assert.NotContains(t, got, "trending topics")
	assert.Contains(t, got, "about the niche")
}
