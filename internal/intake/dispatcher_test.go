package intake

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/db"
)

func TestNewScanDispatcherDefaultsQueueSize(t *testing.T) {
	t.Parallel()

	d := NewScanDispatcher(nil, zerolog.Nop(), 0)
	if cap(d.jobs) != defaultScanQueueSize {
		t.Fatalf("unexpected default queue size: got %d want %d", cap(d.jobs), defaultScanQueueSize)
	}

	d = NewScanDispatcher(nil, zerolog.Nop(), 5)
	if cap(d.jobs) != 5 {
		t.Fatalf("unexpected queue size: got %d want 5", cap(d.jobs))
	}
}

func TestEnqueueNeverBlocksOnFullQueue(t *testing.T) {
	t.Parallel()

	d := NewScanDispatcher(nil, zerolog.Nop(), 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Enqueue(db.SubmissionRecord{SubmissionID: 1})
		d.Enqueue(db.SubmissionRecord{SubmissionID: 2})
		d.Enqueue(db.SubmissionRecord{SubmissionID: 3})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Enqueue blocked on a full queue")
	}

	if got := len(d.jobs); got != 1 {
		t.Fatalf("expected overflow jobs dropped, queue holds %d", got)
	}
}

func TestStopWaitsForWorkerExit(t *testing.T) {
	t.Parallel()

	d := NewScanDispatcher(nil, zerolog.Nop(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Stop()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not observe worker exit")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	t.Parallel()

	d := NewScanDispatcher(nil, zerolog.Nop(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	d.Start(ctx)
	cancel()
	d.Stop()
}
