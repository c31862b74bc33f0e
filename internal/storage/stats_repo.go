package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatsRepo maintains denormalized tag statistics. It is the out-of-band
// recompute job; the search path never calls it.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// RecomputeTagCounts refreshes tags.post_count from post_tags and reports how
// far the previous snapshot had drifted.
func (r *StatsRepo) RecomputeTagCounts(ctx context.Context) (RecomputeStats, error) {
	start := time.Now()
	var stats RecomputeStats

	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.post_count,
			(SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = t.id)
		FROM tags t`,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to read tag counts: %w", err)
	}
	for rows.Next() {
		var id int64
		var name string
		var stored, actual int
		if err := rows.Scan(&id, &name, &stored, &actual); err != nil {
			_ = rows.Close()
			return stats, fmt.Errorf("failed to scan tag count: %w", err)
		}
		stats.TagsChecked++
		drift := actual - stored
		if drift < 0 {
			drift = -drift
		}
		stats.TotalDrift += drift
		if drift > stats.MaxDrift {
			stats.MaxDrift = drift
			stats.MaxDriftTag = name
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return stats, fmt.Errorf("row iteration error: %w", err)
	}
	_ = rows.Close()

	result, err := r.db.ExecContext(ctx,
		`UPDATE tags SET post_count = (SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = tags.id)
		WHERE post_count != (SELECT COUNT(*) FROM post_tags pt WHERE pt.tag_id = tags.id)`,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to update tag counts: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return stats, fmt.Errorf("failed to read updated row count: %w", err)
	}
	stats.TagsUpdated = int(updated)
	stats.Duration = time.Since(start)

	return stats, nil
}
