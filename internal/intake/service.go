package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/globaltime"
	"workpulse.dev/pulse/internal/langdetect"
	"workpulse.dev/pulse/internal/moderation"
)

// Service screens and stores new feedback submissions. Duplicate scanning is
// not part of intake; callers hand the stored submission to a ScanDispatcher
// (or run a scan synchronously) so a scan failure can never fail the intake.
type Service struct {
	pool       *db.Pool
	logger     zerolog.Logger
	moderation *moderation.Service
}

// Request is one validated intake payload.
type Request struct {
	Department string
	Category   string
	Subject    string
	Body       string
}

// Result reports the stored submission and the screening verdict.
type Result struct {
	Submission db.SubmissionRecord     `json:"submission"`
	Screen     moderation.ScreenResult `json:"screen"`
	FlagID     *int64                  `json:"flag_id,omitempty"`
}

func NewService(pool *db.Pool, logger zerolog.Logger, mod *moderation.Service) *Service {
	return &Service{
		pool:       pool,
		logger:     logger,
		moderation: mod,
	}
}

// SubmitOne screens the text and stores the submission. When screening flags
// it, the submission row and its moderation-queue entry are written in the
// same transaction so their states cannot diverge.
func (s *Service) SubmitOne(ctx context.Context, req Request) (Result, error) {
	if s == nil || s.pool == nil || s.moderation == nil {
		return Result{}, fmt.Errorf("intake service is not initialized")
	}

	department := strings.TrimSpace(req.Department)
	category := strings.TrimSpace(req.Category)
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if department == "" || category == "" || subject == "" || body == "" {
		return Result{}, fmt.Errorf("%w: department, category, subject and body are required", moderation.ErrInvalidInput)
	}

	verdict := s.moderation.Screener().Screen(subject, body)
	state := db.ModerationApproved
	var reason *string
	if verdict.Toxic {
		state = db.ModerationFlagged
		r := verdict.Reason
		reason = &r
	}

	language := langdetect.DetectSubmissionLanguage(subject, body)
	now := globaltime.UTC()

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return Result{}, fmt.Errorf("begin intake tx: %w", err)
	}

	submission, err := db.InsertSubmissionTx(ctx, tx, db.NewSubmission{
		Department:       department,
		Category:         category,
		Subject:          subject,
		Body:             body,
		Language:         language,
		ModerationState:  state,
		ModerationReason: reason,
		CreatedAt:        now,
	})
	if err != nil {
		_ = tx.Rollback(ctx)
		return Result{}, err
	}

	var flagID *int64
	if verdict.Toxic {
		id, err := db.InsertModerationFlagTx(ctx, tx, submission.SubmissionID, verdict.Reason, now)
		if err != nil {
			_ = tx.Rollback(ctx)
			return Result{}, err
		}
		flagID = &id
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return Result{}, fmt.Errorf("commit intake tx: %w", err)
	}

	event := s.logger.Info().
		Int64("submission_id", submission.SubmissionID).
		Str("category", category).
		Str("language", language).
		Bool("flagged", verdict.Toxic)
	if flagID != nil {
		event = event.Int64("flag_id", *flagID)
	}
	event.Msg("submission ingested")

	return Result{
		Submission: submission,
		Screen:     verdict,
		FlagID:     flagID,
	}, nil
}
