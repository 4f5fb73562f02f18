package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/globaltime"
)

// MergeRequest names the caller's master and duplicate. The engine may swap
// the roles when the nominal duplicate is actually the older record.
type MergeRequest struct {
	MasterID    int64
	DuplicateID int64
	PairID      *int64
	Actor       string
}

// MergeResult reports the consolidated record after a committed merge.
type MergeResult struct {
	FinalMasterID   int64 `json:"final_master_id"`
	MergedID        int64 `json:"merged_id"`
	CombinedUpvotes int   `json:"combined_upvotes"`
	Swapped         bool  `json:"swapped"`
}

type lockedSubmission struct {
	SubmissionID int64
	CreatedAt    time.Time
	Upvotes      int
	State        string
}

func validateMergeRequest(req MergeRequest) error {
	if req.MasterID <= 0 || req.DuplicateID <= 0 {
		return fmt.Errorf("%w: submission ids must be positive", ErrInvalidInput)
	}
	if req.MasterID == req.DuplicateID {
		return fmt.Errorf("%w: cannot merge a submission into itself", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Actor) == "" {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}
	return nil
}

// chooseMaster enforces the older-record-wins rule: the earlier-created
// submission is canonical regardless of which id the caller nominated, so
// merge outcomes are commutative. Equal timestamps keep the caller's roles.
func chooseMaster(master, duplicate lockedSubmission) (lockedSubmission, lockedSubmission, bool) {
	if duplicate.CreatedAt.Before(master.CreatedAt) {
		return duplicate, master, true
	}
	return master, duplicate, false
}

// Merge consolidates a duplicate pair into one canonical submission. The
// whole operation runs in a single transaction with both submission rows
// locked, so two merges sharing a submission serialize and upvotes are never
// double-counted. Any failure rolls back every write.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	if s == nil || s.pool == nil {
		return MergeResult{}, fmt.Errorf("moderation service is not initialized")
	}
	if err := validateMergeRequest(req); err != nil {
		return MergeResult{}, err
	}
	actor := strings.TrimSpace(req.Actor)

	tx, err := s.pool.BeginTx(ctx, db.TxOptions{})
	if err != nil {
		return MergeResult{}, fmt.Errorf("begin merge tx: %w", err)
	}

	result, err := s.mergeTx(ctx, tx, req, actor)
	if err != nil {
		_ = tx.Rollback(ctx)
		return MergeResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return MergeResult{}, fmt.Errorf("commit merge tx: %w", err)
	}

	s.logger.Info().
		Int64("master_submission_id", result.FinalMasterID).
		Int64("merged_submission_id", result.MergedID).
		Int("combined_upvotes", result.CombinedUpvotes).
		Bool("swapped", result.Swapped).
		Str("actor", actor).
		Msg("submissions merged")
	return result, nil
}

func (s *Service) mergeTx(ctx context.Context, tx db.Tx, req MergeRequest, actor string) (MergeResult, error) {
	master, duplicate, err := lockSubmissionPairTx(ctx, tx, req.MasterID, req.DuplicateID)
	if err != nil {
		return MergeResult{}, err
	}

	if master.State == db.ModerationMerged || duplicate.State == db.ModerationMerged {
		return MergeResult{}, fmt.Errorf("%w: submission already merged", ErrInvalidInput)
	}

	master, duplicate, swapped := chooseMaster(master, duplicate)

	combined := master.Upvotes + duplicate.Upvotes
	now := globaltime.UTC()

	const updateMasterQuery = `
UPDATE pulse.submissions
SET upvotes = $2
WHERE submission_id = $1`

	if _, err := tx.Exec(ctx, updateMasterQuery, master.SubmissionID, combined); err != nil {
		return MergeResult{}, fmt.Errorf("update master upvotes: %w", err)
	}

	const absorbQuery = `
UPDATE pulse.submissions
SET moderation_state = 'merged',
	moderation_reason = $2,
	moderated_by = $3,
	moderated_at = $4
WHERE submission_id = $1`

	reason := fmt.Sprintf("Merged into submission #%d", master.SubmissionID)
	if _, err := tx.Exec(ctx, absorbQuery, duplicate.SubmissionID, reason, actor, now); err != nil {
		return MergeResult{}, fmt.Errorf("mark submission %d merged: %w", duplicate.SubmissionID, err)
	}

	// Open flags on the absorbed row are moot once it is merged; close them
	// here so the review queue never holds an entry for a merged submission.
	const closeFlagsQuery = `
UPDATE pulse.moderation_flags
SET status = 'rejected', reviewed_by = $2, reviewed_at = $3
WHERE submission_id = $1 AND status = 'flagged'`

	if _, err := tx.Exec(ctx, closeFlagsQuery, duplicate.SubmissionID, actor, now); err != nil {
		return MergeResult{}, fmt.Errorf("close flags for merged submission %d: %w", duplicate.SubmissionID, err)
	}

	const auditQuery = `
INSERT INTO pulse.merge_records (
	master_submission_id,
	merged_submission_id,
	actor,
	merged_at,
	master_upvotes_before,
	merged_upvotes_before,
	combined_upvotes,
	master_created_at,
	merged_created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(ctx, auditQuery,
		master.SubmissionID,
		duplicate.SubmissionID,
		actor,
		now,
		master.Upvotes,
		duplicate.Upvotes,
		combined,
		master.CreatedAt.UTC(),
		duplicate.CreatedAt.UTC(),
	)
	if err != nil {
		return MergeResult{}, fmt.Errorf("append merge record: %w", err)
	}

	if err := resolvePairTx(ctx, tx, req.PairID, master.SubmissionID, duplicate.SubmissionID, actor, now); err != nil {
		return MergeResult{}, err
	}

	return MergeResult{
		FinalMasterID:   master.SubmissionID,
		MergedID:        duplicate.SubmissionID,
		CombinedUpvotes: combined,
		Swapped:         swapped,
	}, nil
}

// lockSubmissionPairTx row-locks both submissions, in ascending id order so
// two concurrent merges of the same pair cannot deadlock. Returns the rows
// keyed back to the caller's nominal roles.
func lockSubmissionPairTx(ctx context.Context, tx db.Tx, masterID, duplicateID int64) (lockedSubmission, lockedSubmission, error) {
	const q = `
SELECT submission_id, created_at, upvotes, moderation_state::text
FROM pulse.submissions
WHERE submission_id IN ($1, $2)
ORDER BY submission_id
FOR UPDATE`

	rows, err := tx.Query(ctx, q, masterID, duplicateID)
	if err != nil {
		return lockedSubmission{}, lockedSubmission{}, fmt.Errorf("lock submissions: %w", err)
	}
	defer rows.Close()

	locked := make(map[int64]lockedSubmission, 2)
	for rows.Next() {
		var sub lockedSubmission
		if err := rows.Scan(&sub.SubmissionID, &sub.CreatedAt, &sub.Upvotes, &sub.State); err != nil {
			return lockedSubmission{}, lockedSubmission{}, fmt.Errorf("scan locked submission: %w", err)
		}
		locked[sub.SubmissionID] = sub
	}
	if err := rows.Err(); err != nil {
		return lockedSubmission{}, lockedSubmission{}, fmt.Errorf("iterate locked submissions: %w", err)
	}

	master, ok := locked[masterID]
	if !ok {
		return lockedSubmission{}, lockedSubmission{}, fmt.Errorf("%w: submission %d", ErrNotFound, masterID)
	}
	duplicate, ok := locked[duplicateID]
	if !ok {
		return lockedSubmission{}, lockedSubmission{}, fmt.Errorf("%w: submission %d", ErrNotFound, duplicateID)
	}
	return master, duplicate, nil
}

// resolvePairTx closes the originating queue entry. With an explicit pair id
// only that row is resolved; otherwise every pending pair matching the
// unordered combination is, covering merges initiated outside the queue.
// Zero affected rows is fine either way.
func resolvePairTx(ctx context.Context, tx db.Tx, pairID *int64, masterID, duplicateID int64, actor string, now time.Time) error {
	if pairID != nil {
		const q = `
UPDATE pulse.duplicate_pairs
SET status = 'merged', reviewed_by = $2, reviewed_at = $3
WHERE pair_id = $1 AND status = 'pending'`

		if _, err := tx.Exec(ctx, q, *pairID, actor, now); err != nil {
			return fmt.Errorf("resolve pair %d: %w", *pairID, err)
		}
		return nil
	}

	const q = `
UPDATE pulse.duplicate_pairs
SET status = 'merged', reviewed_by = $3, reviewed_at = $4
WHERE status = 'pending'
  AND (
	(base_submission_id = $1 AND candidate_submission_id = $2)
	OR (base_submission_id = $2 AND candidate_submission_id = $1)
  )`

	if _, err := tx.Exec(ctx, q, masterID, duplicateID, actor, now); err != nil {
		return fmt.Errorf("resolve pairs for submissions (%d, %d): %w", masterID, duplicateID, err)
	}
	return nil
}
