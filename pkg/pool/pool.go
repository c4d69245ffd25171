// Package pool implements a bounded worker-goroutine pool: a FIFO job
// queue drained by a fixed number of long-lived goroutines that
// self-heal after a panic.
//
// It is the leaf of the runtime's dependency graph alongside the error
// taxonomy and the atomic counter: the executor, and everything built on
// it, is a thin layer over two of these pools (one for polling futures,
// one for blocking offload).
package pool

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/entropyrt/corert/internal/atomiccounter"
	"github.com/entropyrt/corert/internal/corelog"
	"github.com/entropyrt/corert/internal/metrics"
	"github.com/entropyrt/corert/pkg/errs"
)

// Job is a unit of work run to completion by a worker goroutine.
type Job func()

// Pool owns a bounded queue and the worker goroutines draining it.
//
// A panicking job kills exactly one worker; the dying worker starts its
// replacement on the way out, and surviving workers (and the next call to
// Schedule/TrySchedule) also notice any shortfall and respawn.
// If every worker has died, Schedule spins with a 10ms backoff until at
// least one respawn succeeds (in practice immediate, since starting a Go
// goroutine cannot fail the way spawning an OS thread can).
type Pool struct {
	name     string
	size     int
	queue    chan Job
	nextNum  atomiccounter.Counter
	live     atomic.Int64
	log      *corelog.Logger
	metrics  *metrics.Pool
	joinDone chan struct{}
}

// New creates a pool named name with size worker goroutines, all started
// before New returns. name must be non-empty and size must be >= 1.
func New(name string, size int) (*Pool, error) {
	if name == "" {
		return nil, errs.ErrEmptyPoolName
	}
	if size < 1 {
		return nil, errs.ErrInvalidPoolSize
	}

	p := &Pool{
		name:     name,
		size:     size,
		queue:    make(chan Job, size*200),
		log:      corelog.GetGlobalLogger().WithComponent("pool").WithField("pool", name),
		metrics:  metrics.NewPool(nil, name),
		joinDone: make(chan struct{}),
	}
	p.startMissingWorkers()
	return p, nil
}

// Size returns the pool's configured worker count.
func (p *Pool) Size() int { return p.size }

// LiveCount returns the number of currently live worker goroutines. This
// is an explicit counter incremented on spawn and decremented on exit,
// not a reference count.
func (p *Pool) LiveCount() int64 { return p.live.Load() }

// startMissingWorkers tops the live worker count back up to size. Starting
// a goroutine cannot fail, so this never returns an error; the method
// still exists (rather than being inlined) because every retry point in
// Schedule/TrySchedule/the worker loop calls it.
func (p *Pool) startMissingWorkers() {
	for {
		n := p.live.Load()
		if n >= int64(p.size) {
			return
		}
		if !p.live.CompareAndSwap(n, n+1) {
			continue
		}
		id := p.nextNum.Next()
		p.metrics.LiveWorkers.Inc()
		go p.work(id)
	}
}

func (p *Pool) work(id int64) {
	name := fmt.Sprintf("%s-%d", p.name, id)
	log := p.log.WithField("worker", name)

	defer func() {
		r := recover()
		if r != nil {
			p.metrics.PanicsCaught.Inc()
			log.Errorf("worker panicked, job lost: %v", r)
		}
		p.live.Add(-1)
		p.metrics.LiveWorkers.Dec()
		if r != nil {
			p.startMissingWorkers()
		}
	}()

	for {
		timer := time.NewTimer(500 * time.Millisecond)
		select {
		case job, ok := <-p.queue:
			timer.Stop()
			if !ok {
				return
			}
			p.startMissingWorkers()
			p.runJob(job)
			p.metrics.JobsCompleted.Inc()
		case <-timer.C:
			p.startMissingWorkers()
		}
	}
}

func (p *Pool) runJob(job Job) {
	job()
}

// Schedule blocks the caller until job can be pushed onto the queue. On a
// full queue it retries with a 10ms backoff, attempting to replenish dead
// workers before each retry.
func (p *Pool) Schedule(job Job) {
	for {
		p.startMissingWorkers()
		select {
		case p.queue <- job:
			p.metrics.JobsScheduled.Inc()
			p.metrics.QueueDepth.Set(float64(len(p.queue)))
			return
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// TrySchedule makes a single attempt to push job onto the queue, failing
// with errs.ErrQueueFull if it is momentarily full. On success it also
// tries to replenish dead workers.
func (p *Pool) TrySchedule(job Job) error {
	select {
	case p.queue <- job:
		p.metrics.JobsScheduled.Inc()
		p.metrics.QueueDepth.Set(float64(len(p.queue)))
	default:
		return errs.ErrQueueFull
	}
	p.startMissingWorkers()
	return nil
}

// Join closes the queue (after which Schedule/TrySchedule must not be
// called — the pool is consumed) and waits for every worker to drain the
// remaining jobs and exit, or for timeout to elapse. A zero timeout waits
// forever.
func (p *Pool) Join(timeout time.Duration) error {
	close(p.queue)

	done := make(chan struct{})
	go func() {
		for p.live.Load() > 0 {
			time.Sleep(10 * time.Millisecond)
		}
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return nil
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("pool %q: timed out waiting for workers to stop", p.name)
	}
}

func (p *Pool) String() string {
	return fmt.Sprintf("Pool{name=%q, size=%d, live=%d}", p.name, p.size, p.LiveCount())
}
