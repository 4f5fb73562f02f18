package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workpulse.dev/pulse/internal/globaltime"
)

// SubmissionRecord is the read model for feedback submissions.
type SubmissionRecord struct {
	SubmissionID     int64      `json:"submission_id"`
	SubmissionUUID   string     `json:"submission_uuid"`
	CreatedAt        time.Time  `json:"created_at"`
	Department       string     `json:"department"`
	Category         string     `json:"category"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	Language         string     `json:"language"`
	Upvotes          int        `json:"upvotes"`
	ModerationState  string     `json:"moderation_state"`
	ModerationReason *string    `json:"moderation_reason,omitempty"`
	ModeratedBy      *string    `json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`
	WorkflowStatus   string     `json:"workflow_status"`
	ManagerResponse  *string    `json:"manager_response,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// NewSubmission carries the fields for an intake insert.
type NewSubmission struct {
	Department       string
	Category         string
	Subject          string
	Body             string
	Language         string
	ModerationState  string
	ModerationReason *string
	CreatedAt        time.Time
}

// CandidateQuery bounds the duplicate-candidate window.
type CandidateQuery struct {
	SubmissionID int64
	Department   string
	Category     string
	WindowDays   int
	Limit        int
}

const submissionColumns = `
	submission_id,
	submission_uuid,
	created_at,
	department,
	category,
	subject,
	body,
	language,
	upvotes,
	moderation_state::text,
	moderation_reason,
	moderated_by,
	moderated_at,
	workflow_status,
	manager_response,
	updated_at`

func scanSubmission(row interface{ Scan(dest ...any) error }) (SubmissionRecord, error) {
	var rec SubmissionRecord
	err := row.Scan(
		&rec.SubmissionID,
		&rec.SubmissionUUID,
		&rec.CreatedAt,
		&rec.Department,
		&rec.Category,
		&rec.Subject,
		&rec.Body,
		&rec.Language,
		&rec.Upvotes,
		&rec.ModerationState,
		&rec.ModerationReason,
		&rec.ModeratedBy,
		&rec.ModeratedAt,
		&rec.WorkflowStatus,
		&rec.ManagerResponse,
		&rec.UpdatedAt,
	)
	return rec, err
}

// InsertSubmissionTx stores a screened submission inside the caller's
// transaction and returns the full record. Intake runs it in the same
// transaction as the moderation-flag insert so the two can never diverge.
func InsertSubmissionTx(ctx context.Context, tx Tx, sub NewSubmission) (SubmissionRecord, error) {
	q := `
INSERT INTO pulse.submissions (
	created_at,
	department,
	category,
	subject,
	body,
	language,
	upvotes,
	moderation_state,
	moderation_reason,
	workflow_status
)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7::pulse.moderation_state, $8, 'Open')
RETURNING` + submissionColumns

	createdAt := sub.CreatedAt.UTC()
	if sub.CreatedAt.IsZero() {
		createdAt = globaltime.UTC()
	}

	rec, err := scanSubmission(tx.QueryRow(ctx, q,
		createdAt,
		strings.TrimSpace(sub.Department),
		strings.TrimSpace(sub.Category),
		strings.TrimSpace(sub.Subject),
		strings.TrimSpace(sub.Body),
		sub.Language,
		sub.ModerationState,
		sub.ModerationReason,
	))
	if err != nil {
		return SubmissionRecord{}, fmt.Errorf("insert submission: %w", err)
	}
	return rec, nil
}

// GetSubmission returns one submission or ErrNoRows.
func (p *Pool) GetSubmission(ctx context.Context, submissionID int64) (SubmissionRecord, error) {
	q := `
SELECT` + submissionColumns + `
FROM pulse.submissions
WHERE submission_id = $1`

	rec, err := scanSubmission(p.QueryRow(ctx, q, submissionID))
	if err != nil {
		if IsNoRows(err) {
			return SubmissionRecord{}, ErrNoRows
		}
		return SubmissionRecord{}, fmt.Errorf("get submission %d: %w", submissionID, err)
	}
	return rec, nil
}

// FindDuplicateCandidates selects the bounded historical window the duplicate
// scanner compares against: same category, approved or flagged, inside the
// trailing window, newest first. An empty department skips the department
// filter entirely, matching the deployed OR-with-null policy.
func (p *Pool) FindDuplicateCandidates(ctx context.Context, query CandidateQuery) ([]SubmissionRecord, error) {
	if query.Limit <= 0 {
		return nil, fmt.Errorf("candidate limit must be > 0")
	}
	if query.WindowDays <= 0 {
		return nil, fmt.Errorf("candidate window must be > 0 days")
	}

	q := `
SELECT` + submissionColumns + `
FROM pulse.submissions
WHERE submission_id <> $1
  AND category = $2
  AND ($3 = '' OR department = $3)
  AND moderation_state IN ('approved', 'flagged')
  AND created_at >= $4
ORDER BY created_at DESC
LIMIT $5`

	cutoff := globaltime.UTC().AddDate(0, 0, -query.WindowDays)
	rows, err := p.Query(ctx, q,
		query.SubmissionID,
		strings.TrimSpace(query.Category),
		strings.TrimSpace(query.Department),
		cutoff,
		query.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find duplicate candidates: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// ListRecentEligible returns the newest approved/flagged submissions, used by
// the manual rescan entry point.
func (p *Pool) ListRecentEligible(ctx context.Context, limit int) ([]SubmissionRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	q := `
SELECT` + submissionColumns + `
FROM pulse.submissions
WHERE moderation_state IN ('approved', 'flagged')
ORDER BY created_at DESC
LIMIT $1`

	rows, err := p.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent eligible submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// ListApprovedSubmissions is the employee browse view: approved only, which
// excludes merged, rejected and still-flagged rows.
func (p *Pool) ListApprovedSubmissions(ctx context.Context) ([]SubmissionRecord, error) {
	q := `
SELECT` + submissionColumns + `
FROM pulse.submissions
WHERE moderation_state = 'approved'
ORDER BY created_at DESC`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list approved submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// ListAllSubmissions is the manager view across every moderation state.
func (p *Pool) ListAllSubmissions(ctx context.Context) ([]SubmissionRecord, error) {
	q := `
SELECT` + submissionColumns + `
FROM pulse.submissions
ORDER BY created_at DESC`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// UpvoteSubmission atomically increments the counter and returns the new value.
func (p *Pool) UpvoteSubmission(ctx context.Context, submissionID int64) (int, error) {
	const q = `
UPDATE pulse.submissions
SET upvotes = upvotes + 1
WHERE submission_id = $1
RETURNING upvotes`

	var upvotes int
	if err := p.QueryRow(ctx, q, submissionID).Scan(&upvotes); err != nil {
		if IsNoRows(err) {
			return 0, ErrNoRows
		}
		return 0, fmt.Errorf("upvote submission %d: %w", submissionID, err)
	}
	return upvotes, nil
}

// UpdateWorkflow sets the manager-facing workflow status and response.
func (p *Pool) UpdateWorkflow(ctx context.Context, submissionID int64, status string, response *string, now time.Time) (SubmissionRecord, error) {
	q := `
UPDATE pulse.submissions
SET workflow_status = $2,
	manager_response = $3,
	updated_at = $4
WHERE submission_id = $1
RETURNING` + submissionColumns

	rec, err := scanSubmission(p.QueryRow(ctx, q, submissionID, status, response, now.UTC()))
	if err != nil {
		if IsNoRows(err) {
			return SubmissionRecord{}, ErrNoRows
		}
		return SubmissionRecord{}, fmt.Errorf("update workflow for submission %d: %w", submissionID, err)
	}
	return rec, nil
}

func collectSubmissions(rows *Rows) ([]SubmissionRecord, error) {
	records := make([]SubmissionRecord, 0, 16)
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return records, nil
}
