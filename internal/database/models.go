package database

// Profile is a user's niche and tone preference. One per user.
type Profile struct {
	UserID    string `json:"user_id"`
	Niche     string `json:"niche"`
	Tone      string `json:"tone"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Sample is a user-supplied writing sample used as a style exemplar.
type Sample struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Trend is a cached headline observed for a niche.
type Trend struct {
	ID          int64  `json:"-"`
	Niche       string `json:"niche"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	CollectedAt string `json:"collected_at"`
}

// GeneratedPost is a post produced by the generation workflow.
type GeneratedPost struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	Favorited bool   `json:"favorited"`
}

// Stats contains aggregate database statistics.
type Stats struct {
	Profiles  int
	Samples   int
	Trends    int
	Posts     int
	Favorites int
}
