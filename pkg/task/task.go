// Package task defines the future/poll/waker vocabulary shared by every
// other package in the runtime: the timer, the synchronization
// primitives, the select combinator, and the executor itself all build on
// these three types without needing to depend on the executor's
// implementation, which breaks what would otherwise be an import cycle
// (executor -> task -> executor).
package task

// Unit is the output type of a task's root future — a future polled by the
// executor's ready queue never produces a meaningful value, only
// completion.
type Unit = struct{}

// Poll is the result of a single Future invocation: either Ready with a
// value, or Pending (the future has registered a waker with whatever it is
// waiting on and must be left alone until that waker fires).
type Poll[T any] struct {
	ready bool
	value T
}

// Ready constructs a completed Poll carrying v.
func Ready[T any](v T) Poll[T] { return Poll[T]{ready: true, value: v} }

// Pending constructs an incomplete Poll.
func Pending[T any]() Poll[T] {
	var zero T
	return Poll[T]{ready: false, value: zero}
}

// IsReady reports whether the poll completed.
func (p Poll[T]) IsReady() bool { return p.ready }

// Value returns the completed value. Calling Value on a pending Poll
// returns the zero value; callers must check IsReady first.
func (p Poll[T]) Value() T { return p.value }

// Future is a single step of cooperative work: given a Context carrying a
// waker, it returns Ready with the future's output, or Pending having
// arranged to be woken later. A Future is polled repeatedly by its owning
// task until it returns Ready exactly once.
type Future[T any] func(cx *Context) Poll[T]

// Waker is a cheaply-copyable handle that, when invoked, re-schedules the
// task it is bound to for another poll. Implementations must tolerate
// being invoked after the task has already completed or after the owning
// executor has been garbage collected — both are defined as no-ops.
type Waker interface {
	Wake()
}

// Scheduler is the minimal surface a Context exposes from the owning
// executor, so a future can spawn sub-tasks without importing the
// executor package directly (see doc comment above).
type Scheduler interface {
	Spawn(fut Future[Unit])
}

// Context is handed to a Future on every poll. It carries the waker the
// future must register with whatever resource it suspends on, and a
// reference to the scheduler driving this poll (the executor for both
// spawned tasks and BlockOn; nil when a future is polled by hand).
type Context struct {
	waker     Waker
	scheduler Scheduler
}

// NewContext builds a poll Context from a waker and the scheduler driving
// the poll (may be nil when the future is polled without an executor).
func NewContext(waker Waker, scheduler Scheduler) *Context {
	return &Context{waker: waker, scheduler: scheduler}
}

// Waker returns the waker this poll must register with any resource it
// suspends on.
func (c *Context) Waker() Waker { return c.waker }

// Scheduler returns the executor driving this poll, or nil if the future
// is being polled outside of one (e.g. by hand in a test).
func (c *Context) Scheduler() Scheduler { return c.scheduler }
