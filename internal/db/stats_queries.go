package db

import (
	"context"
	"fmt"
)

// ModerationStats is the read model for the stats command and endpoint.
type ModerationStats struct {
	SubmissionsByState map[string]int64 `json:"submissions_by_state"`
	TotalSubmissions   int64            `json:"total_submissions"`
	PendingFlags       int64            `json:"pending_flags"`
	PendingPairs       int64            `json:"pending_pairs"`
	MergesRecorded     int64            `json:"merges_recorded"`
	VisibleUpvotes     int64            `json:"visible_upvotes"`
}

// QueryModerationStats aggregates queue depths and submission counts.
// VisibleUpvotes excludes merged rows, so the total is conserved across merges.
func (p *Pool) QueryModerationStats(ctx context.Context) (*ModerationStats, error) {
	stats := &ModerationStats{
		SubmissionsByState: make(map[string]int64, 4),
	}

	const stateQuery = `
SELECT moderation_state::text, COUNT(*)::BIGINT
FROM pulse.submissions
GROUP BY moderation_state`

	rows, err := p.Query(ctx, stateQuery)
	if err != nil {
		return nil, fmt.Errorf("query submission state counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan submission state count: %w", err)
		}
		stats.SubmissionsByState[state] = count
		stats.TotalSubmissions += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission state counts: %w", err)
	}

	const countersQuery = `
SELECT
	(SELECT COUNT(*) FROM pulse.moderation_flags WHERE status = 'flagged'),
	(SELECT COUNT(*) FROM pulse.duplicate_pairs WHERE status = 'pending'),
	(SELECT COUNT(*) FROM pulse.merge_records),
	(SELECT COALESCE(SUM(upvotes), 0) FROM pulse.submissions WHERE moderation_state <> 'merged')`

	err = p.QueryRow(ctx, countersQuery).Scan(
		&stats.PendingFlags,
		&stats.PendingPairs,
		&stats.MergesRecorded,
		&stats.VisibleUpvotes,
	)
	if err != nil {
		return nil, fmt.Errorf("query moderation counters: %w", err)
	}

	return stats, nil
}
