package database

import (
	"context"
	"database/sql"
)

// InsertPost stores a newly generated post with favorited = false.
func (db *DB) InsertPost(ctx context.Context, userID, content string) (*GeneratedPost, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO generated_posts (user_id, content) VALUES (?, ?)`,
		userID, content,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetPost(ctx, userID, id)
}

// GetPost returns one of the user's posts, or ErrNotFound.
func (db *DB) GetPost(ctx context.Context, userID string, postID int64) (*GeneratedPost, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, content, created_at, favorited FROM generated_posts
		WHERE id = ? AND user_id = ?`, postID, userID,
	)
	var p GeneratedPost
	var fav int
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &fav); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Favorited = fav != 0
	return &p, nil
}

// ListPosts returns a user's posts, newest first.
func (db *DB) ListPosts(ctx context.Context, userID string) ([]GeneratedPost, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, content, created_at, favorited FROM generated_posts
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []GeneratedPost
	for rows.Next() {
		var p GeneratedPost
		var fav int
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &fav); err != nil {
			return nil, err
		}
		p.Favorited = fav != 0
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post. Deleting a post that is already gone (or that
// belongs to someone else) is a no-op.
func (db *DB) DeletePost(ctx context.Context, userID string, postID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM generated_posts WHERE id = ? AND user_id = ?`, postID, userID,
	)
	return err
}

// SetFavorited sets the favorited flag to value. Repeating the call is a no-op.
func (db *DB) SetFavorited(ctx context.Context, userID string, postID int64, value bool) error {
	fav := 0
	if value {
		fav = 1
	}
	_, err := db.conn.ExecContext(ctx,
		`UPDATE generated_posts SET favorited = ? WHERE id = ? AND user_id = ?`,
		fav, postID, userID,
	)
	return err
}
