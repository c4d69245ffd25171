package syncx

import (
	"fmt"
	"sync"

	"github.com/entropyrt/corert/pkg/task"
)

type mutexInner struct {
	mu      sync.Mutex
	locked  bool
	waiters []task.Waker
}

// Mutex guards a value of type T across cooperative tasks, suspending
// instead of blocking a worker goroutine while the value is held
// elsewhere. A sync.Mutex over the value is held for as long as a guard
// is live (Lock only ever TryLocks it), and a second short-term lock
// guards the locked flag and the FIFO of parked wakers.
type Mutex[T any] struct {
	inner *mutexInner
	value sync.Mutex
	v     T
}

// NewMutex constructs a Mutex holding value.
func NewMutex[T any](value T) *Mutex[T] {
	return &Mutex[T]{inner: &mutexInner{}, v: value}
}

// Lock returns a future that resolves to a MutexGuard once the mutex is
// acquired.
func (m *Mutex[T]) Lock() task.Future[*MutexGuard[T]] {
	return func(cx *task.Context) task.Poll[*MutexGuard[T]] {
		for {
			if m.value.TryLock() {
				m.inner.mu.Lock()
				if m.inner.locked {
					panic("syncx: mutex value lock and bookkeeping disagree")
				}
				m.inner.locked = true
				m.inner.mu.Unlock()
				return task.Ready(&MutexGuard[T]{mutex: m})
			}

			m.inner.mu.Lock()
			if !m.inner.locked {
				// The holder unlocked between our failed TryLock and
				// taking this lock; retry immediately.
				m.inner.mu.Unlock()
				continue
			}
			m.inner.waiters = append(m.inner.waiters, cx.Waker())
			m.inner.mu.Unlock()
			return task.Pending[*MutexGuard[T]]()
		}
	}
}

// MutexGuard grants exclusive access to a Mutex's value. Unlock (or
// Close, an alias) must be called exactly once; calling either a second
// time panics.
type MutexGuard[T any] struct {
	mutex    *Mutex[T]
	unlocked bool
}

// Get returns the protected value.
func (g *MutexGuard[T]) Get() T { return g.mutex.v }

// Set replaces the protected value.
func (g *MutexGuard[T]) Set(v T) { g.mutex.v = v }

// Unlock releases the mutex and wakes every task parked on Lock.
func (g *MutexGuard[T]) Unlock() {
	if g.unlocked {
		panic("syncx: MutexGuard unlocked twice")
	}
	g.unlocked = true

	g.mutex.inner.mu.Lock()
	waiters := g.mutex.inner.waiters
	g.mutex.inner.waiters = nil
	g.mutex.inner.locked = false
	g.mutex.inner.mu.Unlock()

	g.mutex.value.Unlock()

	for _, w := range waiters {
		w.Wake()
	}
}

// Close is an alias for Unlock, for symmetry with the channel types'
// Close methods.
func (g *MutexGuard[T]) Close() { g.Unlock() }

func (g *MutexGuard[T]) String() string {
	return fmt.Sprintf("MutexGuard{unlocked=%v}", g.unlocked)
}
