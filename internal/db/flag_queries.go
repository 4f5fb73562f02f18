package db

import (
	"context"
	"fmt"
	"time"
)

// FlaggedSubmission is a pending moderation queue entry with the submission
// summary denormalized for review UIs.
type FlaggedSubmission struct {
	FlagID       int64     `json:"flag_id"`
	FlagUUID     string    `json:"flag_uuid"`
	Reason       string    `json:"reason"`
	FlaggedAt    time.Time `json:"flagged_at"`
	SubmissionID int64     `json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
	Department   string    `json:"department"`
	Category     string    `json:"category"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Upvotes      int       `json:"upvotes"`
}

// InsertModerationFlagTx enqueues a flagged submission for manager review
// inside the caller's transaction.
func InsertModerationFlagTx(ctx context.Context, tx Tx, submissionID int64, reason string, createdAt time.Time) (int64, error) {
	const q = `
INSERT INTO pulse.moderation_flags (submission_id, reason, status, created_at)
VALUES ($1, $2, 'flagged', $3)
RETURNING flag_id`

	var flagID int64
	if err := tx.QueryRow(ctx, q, submissionID, reason, createdAt.UTC()).Scan(&flagID); err != nil {
		return 0, fmt.Errorf("insert moderation flag for submission %d: %w", submissionID, err)
	}
	return flagID, nil
}

// ListPendingFlags returns unresolved flags joined with their submissions,
// newest flag first.
func (p *Pool) ListPendingFlags(ctx context.Context) ([]FlaggedSubmission, error) {
	const q = `
SELECT
	mf.flag_id,
	mf.flag_uuid,
	mf.reason,
	mf.created_at,
	s.submission_id,
	s.created_at,
	s.department,
	s.category,
	s.subject,
	s.body,
	s.upvotes
FROM pulse.moderation_flags mf
JOIN pulse.submissions s ON s.submission_id = mf.submission_id
WHERE mf.status = 'flagged'
  AND s.moderation_state = 'flagged'
ORDER BY mf.created_at DESC`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list pending flags: %w", err)
	}
	defer rows.Close()

	items := make([]FlaggedSubmission, 0, 16)
	for rows.Next() {
		var item FlaggedSubmission
		if err := rows.Scan(
			&item.FlagID,
			&item.FlagUUID,
			&item.Reason,
			&item.FlaggedAt,
			&item.SubmissionID,
			&item.CreatedAt,
			&item.Department,
			&item.Category,
			&item.Subject,
			&item.Body,
			&item.Upvotes,
		); err != nil {
			return nil, fmt.Errorf("scan pending flag row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending flag rows: %w", err)
	}
	return items, nil
}
