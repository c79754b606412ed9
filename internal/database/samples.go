package database

import (
	"context"
	"database/sql"
)

// InsertSample stores a writing sample and returns the stored row.
func (db *DB) InsertSample(ctx context.Context, userID, content string) (*Sample, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_examples (user_id, content) VALUES (?, ?)`,
		userID, content,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, content, created_at FROM user_examples WHERE id = ?`, id,
	)
	var s Sample
	if err := row.Scan(&s.ID, &s.UserID, &s.Content, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSamples returns a user's samples, newest first. limit <= 0 means no limit.
func (db *DB) ListSamples(ctx context.Context, userID string, limit int) ([]Sample, error) {
	query := `SELECT id, user_id, content, created_at FROM user_examples
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSamples(rows)
}

// DeleteSample removes a sample owned by userID. Returns ErrNotFound when no
// row matches both the id and the owner.
func (db *DB) DeleteSample(ctx context.Context, userID string, sampleID int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_examples WHERE id = ? AND user_id = ?`, sampleID, userID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSamples(rows *sql.Rows) ([]Sample, error) {
	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.ID, &s.UserID, &s.Content, &s.CreatedAt); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
