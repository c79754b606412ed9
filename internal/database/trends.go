package database

import "context"

// UpsertTrend records a headline for a niche. The (niche, content) pair is
// unique; re-observing a cached headline leaves the existing row untouched.
// Returns true when a new row was written.
func (db *DB) UpsertTrend(ctx context.Context, niche, content, source string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO trending_posts (niche, content, source) VALUES (?, ?, ?)
		ON CONFLICT(niche, content) DO NOTHING`,
		niche, content, source,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecentTrends returns up to limit cached headlines for a niche, most
// recently collected first.
func (db *DB) RecentTrends(ctx context.Context, niche string, limit int) ([]Trend, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, niche, content, source, collected_at FROM trending_posts
		WHERE niche = ? ORDER BY collected_at DESC, id DESC LIMIT ?`,
		niche, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []Trend
	for rows.Next() {
		var t Trend
		if err := rows.Scan(&t.ID, &t.Niche, &t.Content, &t.Source, &t.CollectedAt); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}
