// Package usage appends access records to the usage log. Recording is
// best-effort telemetry by contract: a full queue or a failed insert is
// logged and dropped, and the granted content is never blocked or reversed.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"colorspot-server/internal/domain"
	"colorspot-server/internal/infra"
)

// Recorder decouples the request path from the database write with a
// buffered queue drained by a single background writer.
type Recorder struct {
	repo   domain.UsageRepository
	logger infra.Logger
	queue  chan domain.UsageRecord

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRecorder starts the background writer. queueSize bounds how many
// pending records may be buffered before new ones are dropped.
func NewRecorder(repo domain.UsageRepository, queueSize int, logger infra.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan domain.UsageRecord, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues a usage event for the given user and test. It never blocks:
// when the queue is full the event is dropped with a warning.
func (r *Recorder) Record(userID string, test domain.ReagentTest, freeSlot bool) {
	rec := domain.UsageRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		TestID:         test.Slug,
		TestName:       test.Name.En,
		IsFreeTestUsed: freeSlot,
		CreatedAt:      time.Now().UTC(),
	}

	select {
	case r.queue <- rec:
	default:
		r.logger.Warn().Str("test", test.Slug).Msg("usage: queue full, record dropped")
	}
}

// Close drains the queue and stops the writer. Safe to call more than once.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for {
		select {
		case rec := <-r.queue:
			r.write(rec)
		case <-r.stop:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case rec := <-r.queue:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec domain.UsageRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.Insert(ctx, &rec); err != nil {
		r.logger.Error().Err(err).Str("test", rec.TestID).Msg("usage: insert failed")
	}
}
