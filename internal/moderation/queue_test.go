package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"workpulse.dev/pulse/internal/db"
)

// fakeScanner copies a fixed value list into Scan destinations.
type fakeScanner struct {
	values []any
	err    error
}

func (s *fakeScanner) Scan(dest ...any) error {
	if s.err != nil {
		return s.err
	}
	if len(dest) != len(s.values) {
		return fmt.Errorf("scan expected %d destinations, got %d", len(s.values), len(dest))
	}
	for i, value := range s.values {
		if err := assignScanValue(dest[i], value); err != nil {
			return err
		}
	}
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return (&fakeScanner{values: r.rows[r.idx-1]}).Scan(dest...)
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

func assignScanValue(dest, value any) error {
	switch d := dest.(type) {
	case *int64:
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", value)
		}
		*d = v
	case *int:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("expected int, got %T", value)
		}
		*d = v
	case *string:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		*d = v
	case *float64:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", value)
		}
		*d = v
	case *time.Time:
		v, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", value)
		}
		*d = v
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}

type execCall struct {
	query string
	args  []any
}

// fakeTx scripts a transaction: queued rows answer QueryRow/Query in order,
// queued tags answer Exec in order (defaulting to one affected row), and
// every statement is recorded for assertions.
type fakeTx struct {
	rows     []*db.Row
	rowSets  []*db.Rows
	execTags []db.CommandTag

	rowQueries []string
	setQueries []string
	execs      []execCall
}

func (t *fakeTx) QueryRow(_ context.Context, query string, _ ...any) *db.Row {
	t.rowQueries = append(t.rowQueries, query)
	if len(t.rows) == 0 {
		return db.NewRow(nil)
	}
	row := t.rows[0]
	t.rows = t.rows[1:]
	return row
}

func (t *fakeTx) Query(_ context.Context, query string, _ ...any) (*db.Rows, error) {
	t.setQueries = append(t.setQueries, query)
	if len(t.rowSets) == 0 {
		return db.NewRows(&fakeRows{}), nil
	}
	rows := t.rowSets[0]
	t.rowSets = t.rowSets[1:]
	return rows, nil
}

func (t *fakeTx) Exec(_ context.Context, query string, args ...any) (db.CommandTag, error) {
	t.execs = append(t.execs, execCall{query: query, args: args})
	if len(t.execTags) == 0 {
		return db.NewCommandTag(1), nil
	}
	tag := t.execTags[0]
	t.execTags = t.execTags[1:]
	return tag, nil
}

func (t *fakeTx) Commit(context.Context) error   { return nil }
func (t *fakeTx) Rollback(context.Context) error { return nil }

func (t *fakeTx) execMatching(substr string) (execCall, bool) {
	for _, call := range t.execs {
		if strings.Contains(call.query, substr) {
			return call, true
		}
	}
	return execCall{}, false
}

func TestResolveFlagAlreadyResolvedIsNoOp(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{
		rows: []*db.Row{db.NewRow(&fakeScanner{values: []any{int64(7), db.FlagStatusApproved}})},
	}

	res, err := resolveFlagTx(context.Background(), tx, 12, db.FlagStatusApproved, "dana")
	if err != nil {
		t.Fatalf("resolve flag: %v", err)
	}
	if !res.NoOp {
		t.Fatal("expected a no-op for an already resolved flag")
	}
	if len(tx.execs) != 0 {
		t.Fatalf("expected no writes, got %d", len(tx.execs))
	}
}

func TestResolveFlagUnknownFlagNotFound(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}

	_, err := resolveFlagTx(context.Background(), tx, 999, db.FlagStatusRejected, "dana")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveFlagLeavesMergedSubmissionUntouched(t *testing.T) {
	t.Parallel()

	// The flag is still open but its submission has been merged since the
	// flag was raised. The submission update must not match, and the
	// resolution reports a no-op instead of rewriting a terminal state.
	tx := &fakeTx{
		rows:     []*db.Row{db.NewRow(&fakeScanner{values: []any{int64(7), db.FlagStatusFlagged}})},
		execTags: []db.CommandTag{db.NewCommandTag(1), db.NewCommandTag(0)},
	}

	res, err := resolveFlagTx(context.Background(), tx, 12, db.FlagStatusRejected, "dana")
	if err != nil {
		t.Fatalf("resolve flag: %v", err)
	}
	if !res.NoOp {
		t.Fatal("expected a no-op when the submission already left the flagged state")
	}
	if len(tx.execs) != 2 {
		t.Fatalf("expected flag and submission updates, got %d execs", len(tx.execs))
	}
	if !strings.Contains(tx.execs[1].query, "moderation_state = 'flagged'") {
		t.Fatalf("submission update missing state guard: %s", tx.execs[1].query)
	}
}

func TestResolveFlagApprovalClearsReason(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{
		rows: []*db.Row{db.NewRow(&fakeScanner{values: []any{int64(7), db.FlagStatusFlagged}})},
	}

	res, err := resolveFlagTx(context.Background(), tx, 12, db.FlagStatusApproved, "dana")
	if err != nil {
		t.Fatalf("resolve flag: %v", err)
	}
	if res.NoOp {
		t.Fatal("expected a real resolution")
	}
	if !strings.Contains(tx.execs[1].query, "moderation_reason = NULL") {
		t.Fatalf("approval must clear the reason: %s", tx.execs[1].query)
	}
	if !strings.Contains(tx.execs[1].query, "moderation_state = 'approved'") {
		t.Fatalf("approval must approve the submission: %s", tx.execs[1].query)
	}
}
