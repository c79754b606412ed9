package database

import (
	"context"
	"database/sql"
)

// GetProfile returns the profile for a user, or nil if none is set.
func (db *DB) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT user_id, niche, tone, created_at, updated_at FROM user_profiles WHERE user_id = ?`,
		userID,
	)
	var p Profile
	if err := row.Scan(&p.UserID, &p.Niche, &p.Tone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpsertProfile inserts or updates a user's niche and tone, keyed on user id.
func (db *DB) UpsertProfile(ctx context.Context, userID, niche, tone string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, niche, tone) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			niche = excluded.niche,
			tone = excluded.tone,
			updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')`,
		userID, niche, tone,
	)
	return err
}

// HasProfile reports whether a profile row exists for the user.
func (db *DB) HasProfile(ctx context.Context, userID string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
