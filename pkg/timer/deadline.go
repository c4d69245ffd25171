package timer

import (
	"time"

	"github.com/entropyrt/corert/pkg/errs"
	"github.com/entropyrt/corert/pkg/task"
)

// Result carries an inner future's output alongside a possible deadline
// (or timer-not-started) error: a future has exactly one output type, so a
// timed-out inner future and a completed one are distinguished by Err
// rather than by a nested result type.
type Result[T any] struct {
	Value T
	Err   error
}

// WithDeadline polls inner until it completes or instant passes, whichever
// is first. If the deadline passes first, the result carries
// errs.ErrDeadlineExceeded and the zero value; inner is dropped (simply
// never polled again). If the timer goroutine was never started, the
// result carries errs.ErrTimerNotStarted.
func WithDeadline[T any](inner task.Future[T], instant time.Time) task.Future[Result[T]] {
	slot := &wakerSlot{}
	return func(cx *task.Context) task.Poll[Result[T]] {
		if instant.Before(time.Now()) {
			var zero T
			return task.Ready(Result[T]{Value: zero, Err: errs.ErrDeadlineExceeded})
		}

		if p := inner(cx); p.IsReady() {
			return task.Ready(Result[T]{Value: p.Value()})
		}

		old := slot.replace(cx.Waker())
		if old == nil {
			if err := scheduleWake(instant, slot); err != nil {
				var zero T
				return task.Ready(Result[T]{Value: zero, Err: err})
			}
		}
		return task.Pending[Result[T]]()
	}
}

// WithTimeout is WithDeadline(inner, time.Now().Add(duration)).
func WithTimeout[T any](inner task.Future[T], duration time.Duration) task.Future[Result[T]] {
	return WithDeadline(inner, time.Now().Add(duration))
}
