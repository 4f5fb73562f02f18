package moderation

import (
	"context"
	"fmt"
	"strings"

	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/globaltime"
)

// Resolution reports the outcome of a queue decision. NoOp is success for an
// entry some other reviewer already resolved.
type Resolution struct {
	NoOp bool `json:"noop"`
}

// ListFlagged returns pending moderation flags with submission summaries.
func (s *Service) ListFlagged(ctx context.Context) ([]db.FlaggedSubmission, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("moderation service is not initialized")
	}
	return s.pool.ListPendingFlags(ctx)
}

// ListPairs returns pending duplicate suggestions with both sides denormalized.
func (s *Service) ListPairs(ctx context.Context) ([]db.PendingPair, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("moderation service is not initialized")
	}
	return s.pool.ListPendingPairs(ctx)
}

// ResolveFlag applies a reviewer decision to a pending flag. Approval clears
// the stored reason; rejection keeps it. The flag row and the submission row
// move together in one transaction so their states never diverge. Resolving
// an already-resolved flag is a successful no-op.
func (s *Service) ResolveFlag(ctx context.Context, flagID int64, decision, actor string) (Resolution, error) {
	if s == nil || s.pool == nil {
		return Resolution{}, fmt.Errorf("moderation service is not initialized")
	}
	if flagID <= 0 {
		return Resolution{}, fmt.Errorf("%w: flag id must be positive", ErrInvalidInput)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Resolution{}, fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != db.FlagStatusApproved && decision != db.FlagStatusRejected {
		return Resolution{}, fmt.Errorf("%w: decision must be approved or rejected", ErrInvalidInput)
	}

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return Resolution{}, fmt.Errorf("begin flag resolution tx: %w", err)
	}

	resolution, err := resolveFlagTx(ctx, tx, flagID, decision, actor)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Resolution{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return Resolution{}, fmt.Errorf("commit flag resolution tx: %w", err)
	}

	s.logger.Info().
		Int64("flag_id", flagID).
		Str("decision", decision).
		Str("actor", actor).
		Bool("noop", resolution.NoOp).
		Msg("moderation flag resolved")
	return resolution, nil
}

func resolveFlagTx(ctx context.Context, tx db.Tx, flagID int64, decision, actor string) (Resolution, error) {
	const claimQuery = `
SELECT submission_id, status::text
FROM pulse.moderation_flags
WHERE flag_id = $1
FOR UPDATE`

	var submissionID int64
	var status string
	if err := tx.QueryRow(ctx, claimQuery, flagID).Scan(&submissionID, &status); err != nil {
		if db.IsNoRows(err) {
			return Resolution{}, fmt.Errorf("%w: flag %d", ErrNotFound, flagID)
		}
		return Resolution{}, fmt.Errorf("claim flag %d: %w", flagID, err)
	}

	if status != db.FlagStatusFlagged {
		return Resolution{NoOp: true}, nil
	}

	now := globaltime.UTC()

	const resolveQuery = `
UPDATE pulse.moderation_flags
SET status = $2::pulse.flag_status, reviewed_by = $3, reviewed_at = $4
WHERE flag_id = $1`

	if _, err := tx.Exec(ctx, resolveQuery, flagID, decision, actor, now); err != nil {
		return Resolution{}, fmt.Errorf("resolve flag %d: %w", flagID, err)
	}

	// The state guard keeps merged submissions terminal: a stale flag for a
	// row that already left the flagged state closes without touching it.
	var submissionQuery string
	if decision == db.FlagStatusApproved {
		submissionQuery = `
UPDATE pulse.submissions
SET moderation_state = 'approved', moderation_reason = NULL, moderated_by = $2, moderated_at = $3
WHERE submission_id = $1 AND moderation_state = 'flagged'`
	} else {
		submissionQuery = `
UPDATE pulse.submissions
SET moderation_state = 'rejected', moderated_by = $2, moderated_at = $3
WHERE submission_id = $1 AND moderation_state = 'flagged'`
	}

	tag, err := tx.Exec(ctx, submissionQuery, submissionID, actor, now)
	if err != nil {
		return Resolution{}, fmt.Errorf("update submission %d moderation state: %w", submissionID, err)
	}
	if tag.RowsAffected() == 0 {
		return Resolution{NoOp: true}, nil
	}

	return Resolution{}, nil
}

// IgnorePair dismisses a pending duplicate suggestion without touching either
// submission. Concurrent reviewers may race; the status guard makes the
// second resolution a no-op.
func (s *Service) IgnorePair(ctx context.Context, pairID int64, actor string) (Resolution, error) {
	if s == nil || s.pool == nil {
		return Resolution{}, fmt.Errorf("moderation service is not initialized")
	}
	if pairID <= 0 {
		return Resolution{}, fmt.Errorf("%w: pair id must be positive", ErrInvalidInput)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Resolution{}, fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	const q = `
UPDATE pulse.duplicate_pairs
SET status = 'ignored', reviewed_by = $2, reviewed_at = $3
WHERE pair_id = $1 AND status = 'pending'`

	tag, err := s.pool.Exec(ctx, q, pairID, actor, globaltime.UTC())
	if err != nil {
		return Resolution{}, fmt.Errorf("ignore pair %d: %w", pairID, err)
	}
	if tag.RowsAffected() > 0 {
		s.logger.Info().Int64("pair_id", pairID).Str("actor", actor).Msg("duplicate pair ignored")
		return Resolution{}, nil
	}

	const existsQuery = `SELECT 1 FROM pulse.duplicate_pairs WHERE pair_id = $1`

	var one int
	if err := s.pool.QueryRow(ctx, existsQuery, pairID).Scan(&one); err != nil {
		if db.IsNoRows(err) {
			return Resolution{}, fmt.Errorf("%w: pair %d", ErrNotFound, pairID)
		}
		return Resolution{}, fmt.Errorf("check pair %d: %w", pairID, err)
	}
	return Resolution{NoOp: true}, nil
}
