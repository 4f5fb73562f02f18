package moderation

import (
	"context"
	"fmt"
	"strings"

	"workpulse.dev/pulse/internal/db"
)

// RescanResult reports a manual rescan run.
type RescanResult struct {
	Scanned    int `json:"scanned"`
	PairsAdded int `json:"pairs_added"`
}

// ScanSubmission compares one submission against the bounded historical
// window and enqueues every candidate pair that passes the similarity gate.
// It only writes queue entries; the submission itself is never mutated.
// Callers on the intake path treat a failure here as best-effort: logged,
// never propagated to the submitter.
func (s *Service) ScanSubmission(ctx context.Context, sub db.SubmissionRecord) (int, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("moderation service is not initialized")
	}

	keywords := s.extractor.Extract(sub.Subject, sub.Body)
	if len(keywords) == 0 {
		s.logger.Debug().
			Int64("submission_id", sub.SubmissionID).
			Msg("no keywords extracted, skipping duplicate scan")
		return 0, nil
	}

	candidates, err := s.pool.FindDuplicateCandidates(ctx, db.CandidateQuery{
		SubmissionID: sub.SubmissionID,
		Department:   sub.Department,
		Category:     sub.Category,
		WindowDays:   s.opts.WindowDays,
		Limit:        s.opts.CandidateLimit,
	})
	if err != nil {
		return 0, fmt.Errorf("scan submission %d: %w", sub.SubmissionID, err)
	}

	added := 0
	for _, candidate := range candidates {
		candidateKeywords := s.extractor.Extract(candidate.Subject, candidate.Body)
		sim := Jaccard(keywords, candidateKeywords)
		if !PairAccepted(len(sim.Overlap), sim.Score) {
			continue
		}

		overlap := sim.Overlap
		if len(overlap) > maxStoredOverlapKeywords {
			overlap = overlap[:maxStoredOverlapKeywords]
		}

		pairID, err := s.pool.InsertDuplicatePair(ctx, db.NewDuplicatePair{
			BaseSubmissionID:      sub.SubmissionID,
			CandidateSubmissionID: candidate.SubmissionID,
			Category:              sub.Category,
			Score:                 sim.Score,
			OverlapKeywords:       strings.Join(overlap, ","),
		})
		if err != nil {
			return added, fmt.Errorf("scan submission %d: %w", sub.SubmissionID, err)
		}

		s.logger.Info().
			Int64("pair_id", pairID).
			Int64("base_submission_id", sub.SubmissionID).
			Int64("candidate_submission_id", candidate.SubmissionID).
			Float64("score", sim.Score).
			Int("overlap", len(sim.Overlap)).
			Msg("duplicate pair enqueued")
		added++
	}

	return added, nil
}

// Rescan re-runs candidate generation over the most recent eligible
// submissions. Re-accepted pairs add fresh queue entries; existing pending
// pairs are left untouched, so the operation is safe to repeat.
func (s *Service) Rescan(ctx context.Context, limit int) (RescanResult, error) {
	if s == nil || s.pool == nil {
		return RescanResult{}, fmt.Errorf("moderation service is not initialized")
	}
	if limit < 1 || limit > MaxRescanLimit {
		return RescanResult{}, fmt.Errorf("%w: rescan limit must be between 1 and %d", ErrInvalidInput, MaxRescanLimit)
	}

	submissions, err := s.pool.ListRecentEligible(ctx, limit)
	if err != nil {
		return RescanResult{}, fmt.Errorf("rescan: %w", err)
	}

	var result RescanResult
	for _, sub := range submissions {
		added, err := s.ScanSubmission(ctx, sub)
		if err != nil {
			s.logger.Error().Err(err).
				Int64("submission_id", sub.SubmissionID).
				Msg("rescan: submission scan failed")
			continue
		}
		result.Scanned++
		result.PairsAdded += added
	}

	return result, nil
}
