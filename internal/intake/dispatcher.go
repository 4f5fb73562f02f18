package intake

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/moderation"
)

const (
	defaultScanQueueSize = 64
	scanJobTimeout       = 30 * time.Second
)

// ScanDispatcher runs duplicate scans off the request path. Enqueue never
// blocks and never reports failure to the submitter; a full queue or a failed
// scan is logged and left to the manual rescan command to pick up.
type ScanDispatcher struct {
	jobs    chan db.SubmissionRecord
	service *moderation.Service
	logger  zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func NewScanDispatcher(service *moderation.Service, logger zerolog.Logger, queueSize int) *ScanDispatcher {
	if queueSize <= 0 {
		queueSize = defaultScanQueueSize
	}
	return &ScanDispatcher{
		jobs:    make(chan db.SubmissionRecord, queueSize),
		service: service,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. It drains queued jobs until ctx is
// cancelled, then finishes the job in flight and exits.
func (d *ScanDispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go d.run(ctx)
	})
}

// Enqueue hands a stored submission to the scan worker. Dropping on overflow
// is deliberate: scanning is best-effort and must not delay intake.
func (d *ScanDispatcher) Enqueue(sub db.SubmissionRecord) {
	select {
	case d.jobs <- sub:
	default:
		d.logger.Warn().
			Int64("submission_id", sub.SubmissionID).
			Msg("scan queue full, dropping duplicate scan job")
	}
}

// Stop waits for the worker to exit after Start's context is cancelled.
func (d *ScanDispatcher) Stop() {
	d.stopOnce.Do(func() {
		<-d.done
	})
}

func (d *ScanDispatcher) run(ctx context.Context) {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-d.jobs:
			d.scan(sub)
		}
	}
}

func (d *ScanDispatcher) scan(sub db.SubmissionRecord) {
	// The scan runs on its own deadline, detached from the originating
	// request: an aborted submitter must not cancel queue writes midway.
	ctx, cancel := context.WithTimeout(context.Background(), scanJobTimeout)
	defer cancel()

	added, err := d.service.ScanSubmission(ctx, sub)
	if err != nil {
		d.logger.Error().Err(err).
			Int64("submission_id", sub.SubmissionID).
			Msg("background duplicate scan failed")
		return
	}
	if added > 0 {
		d.logger.Info().
			Int64("submission_id", sub.SubmissionID).
			Int("pairs_added", added).
			Msg("background duplicate scan finished")
	}
}
