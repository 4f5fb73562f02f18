package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"workpulse.dev/pulse/internal/db"
)

func TestValidateMergeRequest(t *testing.T) {
	t.Parallel()

	if err := validateMergeRequest(MergeRequest{MasterID: 1, DuplicateID: 2, Actor: "dana"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	cases := []struct {
		name string
		req  MergeRequest
	}{
		{"equal ids", MergeRequest{MasterID: 7, DuplicateID: 7, Actor: "dana"}},
		{"zero master", MergeRequest{MasterID: 0, DuplicateID: 2, Actor: "dana"}},
		{"negative duplicate", MergeRequest{MasterID: 1, DuplicateID: -4, Actor: "dana"}},
		{"blank actor", MergeRequest{MasterID: 1, DuplicateID: 2, Actor: "  "}},
	}
	for _, tc := range cases {
		err := validateMergeRequest(tc.req)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestChooseMaster_OlderRecordWins(t *testing.T) {
	t.Parallel()

	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	older := lockedSubmission{SubmissionID: 10, CreatedAt: jan1, Upvotes: 5}
	newer := lockedSubmission{SubmissionID: 20, CreatedAt: jan5, Upvotes: 3}

	// Caller's designation already correct: no swap.
	master, dup, swapped := chooseMaster(older, newer)
	if swapped || master.SubmissionID != 10 || dup.SubmissionID != 20 {
		t.Fatalf("unexpected roles: master=%d dup=%d swapped=%v", master.SubmissionID, dup.SubmissionID, swapped)
	}

	// Caller nominated the newer record as master: roles swap silently.
	master, dup, swapped = chooseMaster(newer, older)
	if !swapped || master.SubmissionID != 10 || dup.SubmissionID != 20 {
		t.Fatalf("expected swap to older record: master=%d dup=%d swapped=%v", master.SubmissionID, dup.SubmissionID, swapped)
	}

	// Both orientations agree on the final master and the combined total.
	if master.Upvotes+dup.Upvotes != 8 {
		t.Fatalf("expected combined upvotes 8, got %d", master.Upvotes+dup.Upvotes)
	}
}

func TestChooseMaster_EqualTimestampsKeepCallerRoles(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := lockedSubmission{SubmissionID: 1, CreatedAt: at}
	b := lockedSubmission{SubmissionID: 2, CreatedAt: at}

	master, dup, swapped := chooseMaster(a, b)
	if swapped || master.SubmissionID != 1 || dup.SubmissionID != 2 {
		t.Fatalf("expected caller roles kept on timestamp tie")
	}
}

func lockedPairRows(master, duplicate lockedSubmission) *db.Rows {
	return db.NewRows(&fakeRows{rows: [][]any{
		{master.SubmissionID, master.CreatedAt, master.Upvotes, master.State},
		{duplicate.SubmissionID, duplicate.CreatedAt, duplicate.Upvotes, duplicate.State},
	}})
}

func TestMergeTxRejectsMergedParticipant(t *testing.T) {
	t.Parallel()

	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tx := &fakeTx{rowSets: []*db.Rows{lockedPairRows(
		lockedSubmission{SubmissionID: 1, CreatedAt: jan1, Upvotes: 3, State: db.ModerationApproved},
		lockedSubmission{SubmissionID: 2, CreatedAt: jan5, Upvotes: 5, State: db.ModerationMerged},
	)}}

	svc := &Service{}
	_, err := svc.mergeTx(context.Background(), tx, MergeRequest{MasterID: 1, DuplicateID: 2}, "dana")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(tx.execs) != 0 {
		t.Fatalf("expected no writes for a rejected merge, got %d", len(tx.execs))
	}
}

func TestMergeTxClosesFlagsOnAbsorbedSubmission(t *testing.T) {
	t.Parallel()

	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tx := &fakeTx{rowSets: []*db.Rows{lockedPairRows(
		lockedSubmission{SubmissionID: 1, CreatedAt: jan1, Upvotes: 3, State: db.ModerationApproved},
		lockedSubmission{SubmissionID: 2, CreatedAt: jan5, Upvotes: 5, State: db.ModerationApproved},
	)}}

	svc := &Service{}
	res, err := svc.mergeTx(context.Background(), tx, MergeRequest{MasterID: 1, DuplicateID: 2}, "dana")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if res.FinalMasterID != 1 || res.MergedID != 2 || res.CombinedUpvotes != 8 || res.Swapped {
		t.Fatalf("unexpected result: %+v", res)
	}

	// The absorbed row's open flags close in the same transaction so the
	// review queue cannot surface a merged submission.
	call, ok := tx.execMatching("pulse.moderation_flags")
	if !ok {
		t.Fatal("expected an update against pulse.moderation_flags")
	}
	if !strings.Contains(call.query, "status = 'rejected'") || !strings.Contains(call.query, "status = 'flagged'") {
		t.Fatalf("flag close must reject only open flags: %s", call.query)
	}
	if call.args[0] != int64(2) {
		t.Fatalf("flag close must target the absorbed submission, got %v", call.args[0])
	}
}
