// Package executor drives spawned tasks to completion on a pool of
// futures-polling workers, and offloads blocking work to a second pool,
// gating admission to it with a weighted semaphore so a burst of blocking
// requests can't queue arbitrarily far ahead of the pool's own bounded
// queue. Spawn, BlockOn, and ScheduleBlocking are the package's entry
// points.
package executor

import (
	"context"
	"sync/atomic"
	"weak"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/entropyrt/corert/pkg/pool"
	"github.com/entropyrt/corert/pkg/syncx"
	"github.com/entropyrt/corert/pkg/task"
)

// Executor drives spawned tasks to completion on an async pool, and
// offloads blocking work to a separate blocking pool.
type Executor struct {
	asyncPool    *pool.Pool
	blockingPool *pool.Pool
	blockingSem  *semaphore.Weighted
}

// New creates an Executor with asyncWorkers goroutines polling futures
// and blockingWorkers goroutines running ScheduleBlocking closures.
func New(asyncWorkers, blockingWorkers int) (*Executor, error) {
	asyncPool, err := pool.New("corert-async", asyncWorkers)
	if err != nil {
		return nil, err
	}
	blockingPool, err := pool.New("corert-blocking", blockingWorkers)
	if err != nil {
		return nil, err
	}
	return &Executor{
		asyncPool:    asyncPool,
		blockingPool: blockingPool,
		blockingSem:  semaphore.NewWeighted(int64(blockingWorkers)),
	}, nil
}

// cellState tracks a taskCell through its lifecycle. Transitions are
// driven entirely by CompareAndSwap so at most one goroutine is ever
// inside cell.fut at a time, and a wake arriving while a poll is already
// in flight is deferred rather than dispatched as a second, concurrent
// poll.
type cellState int32

const (
	// cellIdle: no poll job queued, no poll in flight.
	cellIdle cellState = iota
	// cellScheduled: a poll job has been pushed onto the async pool but
	// has not yet started running.
	cellScheduled
	// cellPolling: a poll is currently executing cell.fut.
	cellPolling
	// cellRepoll: a wake arrived while cellPolling; the in-flight poll
	// must loop and poll again before giving up the cell.
	cellRepoll
	// cellDone: the future has returned Ready; the cell is inert.
	cellDone
)

// taskCell holds at most one in-flight future, guarded by state rather
// than a lock: only the goroutine that wins the transition into
// cellPolling may call fut.
type taskCell struct {
	fut   task.Future[task.Unit]
	state atomic.Int32
}

// taskWaker reschedules a poll of its task on the owning executor's async
// pool. It holds only a weak reference to the executor: if the executor
// has already been garbage collected, Wake is a no-op rather than keeping
// it alive.
type taskWaker struct {
	weakExec weak.Pointer[Executor]
	cell     *taskCell
}

func (w *taskWaker) Wake() {
	cell := w.cell
	for {
		switch cellState(cell.state.Load()) {
		case cellIdle:
			if !cell.state.CompareAndSwap(int32(cellIdle), int32(cellScheduled)) {
				continue
			}
			exec := w.weakExec.Value()
			if exec == nil {
				return
			}
			weakExec := w.weakExec
			exec.asyncPool.Schedule(func() { pollTask(weakExec, cell) })
			return
		case cellPolling:
			if cell.state.CompareAndSwap(int32(cellPolling), int32(cellRepoll)) {
				return
			}
		default:
			// cellScheduled: a poll job is already queued.
			// cellRepoll: a repoll is already pending.
			// cellDone: nothing left to wake.
			return
		}
	}
}

// pollTask runs exactly one goroutine's worth of polling for cell: it
// claims the cell (cellScheduled -> cellPolling), polls fut, and if a
// wake arrives mid-poll (cellPolling -> cellRepoll) it loops and polls
// again immediately instead of leaving the cell for a second scheduled
// job to pick up concurrently.
func pollTask(weakExec weak.Pointer[Executor], cell *taskCell) {
	exec := weakExec.Value()
	if exec == nil {
		return
	}
	if !cell.state.CompareAndSwap(int32(cellScheduled), int32(cellPolling)) {
		return
	}
	w := &taskWaker{weakExec: weakExec, cell: cell}
	cx := task.NewContext(w, exec)
	for {
		p := cell.fut(cx)
		if p.IsReady() {
			cell.fut = nil
			cell.state.Store(int32(cellDone))
			return
		}
		if cell.state.CompareAndSwap(int32(cellPolling), int32(cellIdle)) {
			return
		}
		cell.state.Store(int32(cellPolling))
	}
}

// AsyncPool returns the pool polling spawned futures, for inspection
// (e.g. LiveCount/Size) by callers such as an admin daemon.
func (e *Executor) AsyncPool() *pool.Pool { return e.asyncPool }

// BlockingPool returns the pool running ScheduleBlocking closures, for
// inspection by callers such as an admin daemon.
func (e *Executor) BlockingPool() *pool.Pool { return e.blockingPool }

// Spawn schedules fut to run on the async pool to completion. Spawn
// implements task.Scheduler, so a running future can call
// cx.Scheduler().Spawn(...) to fire off sub-tasks.
func (e *Executor) Spawn(fut task.Future[task.Unit]) {
	cell := &taskCell{fut: fut}
	cell.state.Store(int32(cellScheduled))
	weakExec := weak.Make(e)
	e.asyncPool.Schedule(func() { pollTask(weakExec, cell) })
}

// blockOnWaker wakes the calling goroutine parked inside BlockOn.
type blockOnWaker struct {
	ch chan struct{}
}

func (w *blockOnWaker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// BlockOn polls fut on the calling goroutine until it completes, parking
// the goroutine between polls rather than spinning, and returns its
// output. The future may still spawn sub-tasks onto the executor's pools
// via the context it is polled with. A free function rather than a
// method: Go methods cannot introduce their own type parameters.
func BlockOn[T any](e *Executor, fut task.Future[T]) T {
	w := &blockOnWaker{ch: make(chan struct{}, 1)}
	cx := task.NewContext(w, e)
	for {
		p := fut(cx)
		if p.IsReady() {
			return p.Value()
		}
		<-w.ch
	}
}

// ScheduleBlocking enqueues fn on the blocking pool, gated by a weighted
// semaphore sized to the pool's worker count, and returns a receiver that
// yields fn's result exactly once. Acquiring the semaphore itself blocks
// the calling goroutine (mirroring a bounded admission queue in front of
// the pool's own bounded job queue); ctx lets a caller bound that wait.
func ScheduleBlocking[T any](ctx context.Context, e *Executor, fn func() T) (*syncx.Receiver[T], error) {
	if err := e.blockingSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	sender, receiver := syncx.OneShot[T]()
	e.blockingPool.Schedule(func() {
		defer e.blockingSem.Release(1)
		result := fn()
		_ = sender.Send(result)
	})
	return receiver, nil
}

// Join consumes the executor's pools, waiting for every outstanding
// worker in both to drain concurrently (see pool.Pool.Join for the
// per-pool timeout semantics; Join itself waits indefinitely).
func (e *Executor) Join() error {
	var g errgroup.Group
	g.Go(func() error { return e.asyncPool.Join(0) })
	g.Go(func() error { return e.blockingPool.Join(0) })
	return g.Wait()
}
