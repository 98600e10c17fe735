package wifiscand

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// A scanJob is a request waiting for a worker. The result is
// delivered on done, which is buffered so workers never block on a
// caller that has gone away.
type scanJob struct {
	ctx  context.Context
	done chan ScanResult
}

/* ScanPool
 *
 * ScanPool runs scans on a fixed number of worker goroutines so the
 * delay inside each scan never ties up the caller's goroutine beyond
 * waiting on its own future. Every Submit gets its own independent
 * scan, there is no coalescing of overlapping requests.
 *
 * Finished results are also offered to the Changes channel (if set)
 * without blocking, for the websocket relay.
 */
type ScanPool struct {
	scanner *Scanner
	workers int
	jobs    chan scanJob
	Changes chan Change
	log     logrus.FieldLogger

	mu      sync.RWMutex
	running bool
	last    *ScanResult
	quit    chan struct{}
	wg      sync.WaitGroup
}

func NewScanPool(scanner *Scanner, workers int, logger logrus.FieldLogger) *ScanPool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ScanPool{
		scanner: scanner,
		workers: workers,
		jobs:    make(chan scanJob),
		Changes: make(chan Change, 10),
		log:     logger.WithField("component", "pool"),
		quit:    make(chan struct{}),
	}
}

func (t *ScanPool) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		t.mu.Lock()
		t.running = true
		t.mu.Unlock()

		for range t.workers {
			t.wg.Add(1)
			go t.worker()
		}
		t.log.WithField("workers", t.workers).Debug("Scan workers started")

		// flag to Conductor we are running
		started <- true
		<-stop

		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		close(t.quit)
		t.wg.Wait()
		stopped <- true
	}()
	return nil
}

func (t *ScanPool) worker() {
	defer t.wg.Done()
	for {
		select {
		case <-t.quit:
			return
		case j := <-t.jobs:
			r := t.scanner.Scan(j.ctx)
			// record first so LastResult is current once the caller wakes
			t.record(r)
			j.done <- r
		}
	}
}

// Submit queues a scan and returns a future for its result. The
// future always yields exactly one result: if the pool is stopped or
// ctx ends before a worker picks the job up, it yields a cancelled
// result instead.
func (t *ScanPool) Submit(ctx context.Context) <-chan ScanResult {
	done := make(chan ScanResult, 1)

	t.mu.RLock()
	running := t.running
	t.mu.RUnlock()
	if !running {
		done <- cancelledResult(ErrPoolStopped)
		return done
	}

	select {
	case t.jobs <- scanJob{ctx: ctx, done: done}:
	case <-ctx.Done():
		done <- cancelledResult(ctx.Err())
	case <-t.quit:
		done <- cancelledResult(ErrPoolStopped)
	}
	return done
}

// ScanNow submits a scan and waits for it.
func (t *ScanPool) ScanNow(ctx context.Context) ScanResult {
	return <-t.Submit(ctx)
}

// LastResult is the most recently completed scan, if any.
func (t *ScanPool) LastResult() (ScanResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return ScanResult{}, false
	}
	return *t.last, true
}

func (t *ScanPool) History() *HistoryStore {
	return t.scanner.History()
}

func (t *ScanPool) record(r ScanResult) {
	t.mu.Lock()
	t.last = &r
	t.mu.Unlock()

	if t.Changes == nil {
		return
	}
	select {
	case t.Changes <- NewScanChange(r):
	default:
		t.log.Debug("Changes channel full, dropping scan update")
	}
}

func cancelledResult(err error) ScanResult {
	return ScanResult{
		ID:       uuid.NewString(),
		Outcome:  OutcomeCancelled,
		Networks: []NetworkObservation{},
		Started:  time.Now(),
		Err:      err,
	}
}
