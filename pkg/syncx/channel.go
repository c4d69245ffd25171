// Package syncx provides cooperative synchronization primitives for tasks
// running on the executor: a mutex that suspends instead of blocking a
// worker goroutine, and one-shot/bounded MPSC channels with both
// synchronous and asynchronous send/receive.
//
// Each channel's bounded queue is a plain buffered Go channel, which gives
// TrySend/TryRecv's non-blocking behavior and Send/Recv's blocking
// behavior for free; a small waker registry layered on top lets
// AsyncSend/AsyncRecv suspend a task instead of parking a goroutine.
package syncx

import (
	"sync"
	"sync/atomic"

	"github.com/entropyrt/corert/pkg/errs"
	"github.com/entropyrt/corert/pkg/task"
)

type chanInner[T any] struct {
	mu            sync.Mutex
	queue         chan T
	senderWakers  []task.Waker
	receiverWaker task.Waker

	senderCount    atomic.Int64
	receiverClosed atomic.Bool
	receiverDone   chan struct{}
}

func newChanInner[T any](bound int) *chanInner[T] {
	return &chanInner[T]{
		queue:        make(chan T, bound),
		receiverDone: make(chan struct{}),
	}
}

func (in *chanInner[T]) wakeReceiver() {
	in.mu.Lock()
	w := in.receiverWaker
	in.receiverWaker = nil
	in.mu.Unlock()
	if w != nil {
		w.Wake()
	}
}

func (in *chanInner[T]) wakeSenders() {
	in.mu.Lock()
	ws := in.senderWakers
	in.senderWakers = nil
	in.mu.Unlock()
	for _, w := range ws {
		w.Wake()
	}
}

// Sender is the cloneable write half of a bounded MPSC channel. It is a
// plain struct value safe to copy and share between goroutines; copies
// refer to the same underlying queue. Clone (not a bare struct copy)
// registers an additional live handle, and each handle's Close must be
// called exactly once when that handle is done sending.
type Sender[T any] struct {
	inner *chanInner[T]
}

// SyncChannel creates a bounded, multi-producer single-consumer channel
// with the given capacity.
func SyncChannel[T any](bound int) (Sender[T], *Receiver[T]) {
	in := newChanInner[T](bound)
	in.senderCount.Store(1)
	return Sender[T]{inner: in}, &Receiver[T]{inner: in}
}

// Clone returns an additional handle to the same channel, incrementing
// the live sender count. The original Sender and the clone must each have
// Close called exactly once.
func (s Sender[T]) Clone() Sender[T] {
	s.inner.senderCount.Add(1)
	return Sender[T]{inner: s.inner}
}

// Close releases this sender handle. When the last handle is closed, the
// queue is closed so the receiver observes disconnection once it has
// drained any buffered values.
func (s Sender[T]) Close() {
	if s.inner.senderCount.Add(-1) == 0 {
		close(s.inner.queue)
		s.inner.wakeReceiver()
	}
}

// Send blocks the calling goroutine until value is queued, or returns
// errs.SendError if the receiver is already gone. Disconnection is checked
// before attempting to queue value, so a disconnected Send always reports
// SendError, never a false success just because the queue had room.
func (s Sender[T]) Send(value T) error {
	if s.inner.receiverClosed.Load() {
		return &errs.SendError[T]{Value: value}
	}
	select {
	case s.inner.queue <- value:
		s.inner.wakeReceiver()
		return nil
	case <-s.inner.receiverDone:
		return &errs.SendError[T]{Value: value}
	}
}

// TrySend makes one non-blocking attempt to queue value.
func (s Sender[T]) TrySend(value T) error {
	if s.inner.receiverClosed.Load() {
		return &errs.TrySendError[T]{Value: value, Disconnected: true}
	}
	select {
	case s.inner.queue <- value:
		s.inner.wakeReceiver()
		return nil
	default:
		return &errs.TrySendError[T]{Value: value, Disconnected: false}
	}
}

// AsyncSend returns a future that completes once value is queued, or with
// errs.SendError[T] if the receiver has gone away. Disconnection is
// checked before attempting to queue value on every poll, so a
// disconnected AsyncSend always completes with SendError, never a false
// success just because the queue had room.
func (s Sender[T]) AsyncSend(value T) task.Future[error] {
	sent := false
	return func(cx *task.Context) task.Poll[error] {
		if sent {
			return task.Ready[error](nil)
		}
		if s.inner.receiverClosed.Load() {
			sent = true
			return task.Ready[error](&errs.SendError[T]{Value: value})
		}
		select {
		case s.inner.queue <- value:
			sent = true
			s.inner.wakeReceiver()
			return task.Ready[error](nil)
		default:
			s.inner.mu.Lock()
			s.inner.senderWakers = append(s.inner.senderWakers, cx.Waker())
			s.inner.mu.Unlock()
			// Re-check after registering: a pop or receiver Close that ran
			// before the waker was visible would otherwise never wake us.
			if s.inner.receiverClosed.Load() {
				sent = true
				return task.Ready[error](&errs.SendError[T]{Value: value})
			}
			select {
			case s.inner.queue <- value:
				sent = true
				s.inner.wakeReceiver()
				return task.Ready[error](nil)
			default:
				return task.Pending[error]()
			}
		}
	}
}

// Receiver is the single-consumer read half of a channel, shared by a
// one-shot or SyncChannel sender.
type Receiver[T any] struct {
	inner *chanInner[T]
}

// Recv blocks the calling goroutine for the next value, returning
// errs.ErrRecvDisconnected once the queue is drained and every sender has
// closed.
func (r *Receiver[T]) Recv() (T, error) {
	v, ok := <-r.inner.queue
	if !ok {
		var zero T
		return zero, errs.ErrRecvDisconnected
	}
	r.inner.wakeSenders()
	return v, nil
}

// TryRecv makes one non-blocking attempt to pop a value.
func (r *Receiver[T]) TryRecv() (T, error) {
	select {
	case v, ok := <-r.inner.queue:
		if !ok {
			var zero T
			return zero, errs.ErrTryRecvDisconnected
		}
		r.inner.wakeSenders()
		return v, nil
	default:
		var zero T
		return zero, errs.ErrTryRecvEmpty
	}
}

// AsyncRecv returns a future that completes with the next value, or with
// errs.ErrRecvDisconnected once no value and no sender remain.
func (r *Receiver[T]) AsyncRecv() task.Future[RecvResult[T]] {
	return func(cx *task.Context) task.Poll[RecvResult[T]] {
		select {
		case v, ok := <-r.inner.queue:
			if !ok {
				return task.Ready(RecvResult[T]{Err: errs.ErrRecvDisconnected})
			}
			r.inner.wakeSenders()
			return task.Ready(RecvResult[T]{Value: v})
		default:
			r.inner.mu.Lock()
			r.inner.receiverWaker = cx.Waker()
			r.inner.mu.Unlock()
			// Re-check after registering: a send or last-sender Close that
			// ran before the waker was visible would otherwise never wake us.
			select {
			case v, ok := <-r.inner.queue:
				if !ok {
					return task.Ready(RecvResult[T]{Err: errs.ErrRecvDisconnected})
				}
				r.inner.wakeSenders()
				return task.Ready(RecvResult[T]{Value: v})
			default:
				return task.Pending[RecvResult[T]]()
			}
		}
	}
}

// Close releases the receiver, unblocking any sender parked on Send and
// waking any sender parked on AsyncSend so it can observe disconnection.
func (r *Receiver[T]) Close() {
	if r.inner.receiverClosed.CompareAndSwap(false, true) {
		close(r.inner.receiverDone)
		r.inner.wakeSenders()
	}
}

// RecvResult is the output of AsyncRecv: a value, or an error describing
// why none is available.
type RecvResult[T any] struct {
	Value T
	Err   error
}

// OneSender is a single-use Sender: Send both delivers the value and
// closes this handle.
type OneSender[T any] struct {
	sender Sender[T]
}

// OneShot creates a single-value channel whose sender is consumed by
// sending.
func OneShot[T any]() (OneSender[T], *Receiver[T]) {
	s, r := SyncChannel[T](1)
	return OneSender[T]{sender: s}, r
}

// Send delivers value and consumes this sender.
func (s OneSender[T]) Send(value T) error {
	err := s.sender.Send(value)
	s.sender.Close()
	return err
}

// Close abandons this sender without sending, waking the receiver so it
// observes disconnection.
func (s OneSender[T]) Close() {
	s.sender.Close()
}
