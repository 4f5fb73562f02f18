package db

import (
	"context"
	"fmt"
	"time"
)

// NewDuplicatePair carries a candidate pair accepted by the scanner.
type NewDuplicatePair struct {
	BaseSubmissionID      int64
	CandidateSubmissionID int64
	Category              string
	Score                 float64
	OverlapKeywords       string
}

// PairSubmissionSummary is one side of a pending pair.
type PairSubmissionSummary struct {
	SubmissionID int64     `json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
	Department   string    `json:"department"`
	Category     string    `json:"category"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Upvotes      int       `json:"upvotes"`
	State        string    `json:"moderation_state"`
}

// PendingPair is a duplicate suggestion with both submissions denormalized.
type PendingPair struct {
	PairID          int64                 `json:"pair_id"`
	PairUUID        string                `json:"pair_uuid"`
	Category        string                `json:"category"`
	Score           float64               `json:"score"`
	OverlapKeywords string                `json:"overlap_keywords"`
	CreatedAt       time.Time             `json:"created_at"`
	Base            PairSubmissionSummary `json:"base"`
	Candidate       PairSubmissionSummary `json:"candidate"`
}

// InsertDuplicatePair enqueues a pending duplicate suggestion. The queue
// tolerates repeated inserts for the same combination.
func (p *Pool) InsertDuplicatePair(ctx context.Context, pair NewDuplicatePair) (int64, error) {
	const q = `
INSERT INTO pulse.duplicate_pairs (
	base_submission_id,
	candidate_submission_id,
	category,
	score,
	overlap_keywords,
	status,
	created_at
)
VALUES ($1, $2, $3, $4, $5, 'pending', now())
RETURNING pair_id`

	var pairID int64
	err := p.QueryRow(ctx, q,
		pair.BaseSubmissionID,
		pair.CandidateSubmissionID,
		pair.Category,
		pair.Score,
		pair.OverlapKeywords,
	).Scan(&pairID)
	if err != nil {
		return 0, fmt.Errorf("insert duplicate pair (%d, %d): %w", pair.BaseSubmissionID, pair.CandidateSubmissionID, err)
	}
	return pairID, nil
}

// ListPendingPairs returns unresolved duplicate suggestions, newest first.
func (p *Pool) ListPendingPairs(ctx context.Context) ([]PendingPair, error) {
	const q = `
SELECT
	dp.pair_id,
	dp.pair_uuid,
	dp.category,
	dp.score,
	dp.overlap_keywords,
	dp.created_at,
	b.submission_id,
	b.created_at,
	b.department,
	b.category,
	b.subject,
	b.body,
	b.upvotes,
	b.moderation_state::text,
	c.submission_id,
	c.created_at,
	c.department,
	c.category,
	c.subject,
	c.body,
	c.upvotes,
	c.moderation_state::text
FROM pulse.duplicate_pairs dp
JOIN pulse.submissions b ON b.submission_id = dp.base_submission_id
JOIN pulse.submissions c ON c.submission_id = dp.candidate_submission_id
WHERE dp.status = 'pending'
ORDER BY dp.created_at DESC`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list pending pairs: %w", err)
	}
	defer rows.Close()

	items := make([]PendingPair, 0, 16)
	for rows.Next() {
		var item PendingPair
		if err := rows.Scan(
			&item.PairID,
			&item.PairUUID,
			&item.Category,
			&item.Score,
			&item.OverlapKeywords,
			&item.CreatedAt,
			&item.Base.SubmissionID,
			&item.Base.CreatedAt,
			&item.Base.Department,
			&item.Base.Category,
			&item.Base.Subject,
			&item.Base.Body,
			&item.Base.Upvotes,
			&item.Base.State,
			&item.Candidate.SubmissionID,
			&item.Candidate.CreatedAt,
			&item.Candidate.Department,
			&item.Candidate.Category,
			&item.Candidate.Subject,
			&item.Candidate.Body,
			&item.Candidate.Upvotes,
			&item.Candidate.State,
		); err != nil {
			return nil, fmt.Errorf("scan pending pair row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending pair rows: %w", err)
	}
	return items, nil
}
