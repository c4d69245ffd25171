// Package errs collects the sentinel and wrapped error values surfaced by
// the runtime's subsystems, so callers can use errors.Is/errors.As instead
// of matching on message text.
package errs

import (
	"errors"
	"fmt"
)

// Construction errors: returned from pool.New, never recovered internally.
var (
	// ErrEmptyPoolName is returned when pool.New is called with an empty name.
	ErrEmptyPoolName = errors.New("pool: name must not be empty")

	// ErrInvalidPoolSize is returned when pool.New is called with size < 1.
	ErrInvalidPoolSize = errors.New("pool: size must be >= 1")
)

// SpawnError wraps the underlying failure to start a worker goroutine.
// Go goroutines essentially never fail to start, and no code path in this
// module returns it; the wrapper exists so the runtime's error taxonomy
// mirrors a host where thread creation is a fallible syscall.
// ScheduleBlocking's semaphore acquisition failures are returned as the
// context's own error, not wrapped in SpawnError.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("pool: failed to start worker: %v", e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Transient schedule errors.
var (
	// ErrNoThreads indicates every worker in a pool has died and an attempt
	// to respawn at least one of them also failed.
	ErrNoThreads = errors.New("pool: all workers died and respawn failed")

	// ErrQueueFull is returned by TrySchedule when the ready queue has no
	// spare capacity.
	ErrQueueFull = errors.New("pool: job queue is full")
)

// RespawnError indicates a single dead worker failed to respawn while at
// least one sibling worker remains alive; scheduling can still proceed.
type RespawnError struct {
	Err error
}

func (e *RespawnError) Error() string {
	return fmt.Sprintf("pool: failed to respawn a dead worker: %v", e.Err)
}

func (e *RespawnError) Unwrap() error { return e.Err }

// Infrastructure and completion errors.
var (
	// ErrTimerNotStarted is returned by the timer package's scheduleWake
	// when timer.StartTimerThread was never called. WithDeadline/WithTimeout
	// carry it in their Result's Err; SleepFor/SleepUntil, whose output has
	// no error, panic with it instead.
	ErrTimerNotStarted = errors.New("timer: StartTimerThread was never called")

	// ErrDeadlineExceeded is the completion error for WithDeadline/WithTimeout
	// when the deadline passes before the inner future becomes ready.
	ErrDeadlineExceeded = errors.New("timer: deadline exceeded")

	// ErrRecvDisconnected is returned by a channel Receiver when no sender
	// remains and the value queue is empty.
	ErrRecvDisconnected = errors.New("syncx: receive on a channel with no senders")

	// ErrTryRecvEmpty is returned by TryRecv when the value queue is empty
	// but senders are still alive.
	ErrTryRecvEmpty = errors.New("syncx: channel is empty")

	// ErrTryRecvDisconnected is returned by TryRecv when the value queue is
	// empty and no sender remains.
	ErrTryRecvDisconnected = errors.New("syncx: channel is empty and disconnected")
)

// SendError indicates a send (sync or async) failed because the receiver
// had already been dropped. It carries the value that could not be
// delivered so the caller can recover it.
type SendError[T any] struct {
	Value T
}

func (e *SendError[T]) Error() string {
	return "syncx: send on a channel with no receiver"
}

// TrySendError indicates a non-blocking send failed, either because the
// bounded queue was momentarily full or because the receiver is gone.
type TrySendError[T any] struct {
	Value        T
	Disconnected bool
}

func (e *TrySendError[T]) Error() string {
	if e.Disconnected {
		return "syncx: try-send on a channel with no receiver"
	}
	return "syncx: try-send on a full channel"
}

// Full reports whether the send failed due to a full (not disconnected)
// queue.
func (e *TrySendError[T]) Full() bool { return !e.Disconnected }
