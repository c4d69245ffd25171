// Package timer provides a single process-wide goroutine that fires
// registered wakers no sooner than their scheduled instant, plus the
// sleep and deadline futures built on top of it. A min-heap of pending
// wakes (container/heap) is drained by one goroutine, fed by an
// unbuffered registration channel so a new registration always rendezvous
// with the loop rather than queuing behind it.
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/entropyrt/corert/internal/metrics"
	"github.com/entropyrt/corert/pkg/errs"
	"github.com/entropyrt/corert/pkg/task"
)

// wakerSlot is the shared, mutex-guarded "maybe a waker" cell a scheduled
// wake fires into. Taking the waker out (rather than merely reading it)
// ensures it is invoked at most once, and lets a future re-register by
// simply replacing the slot's contents without creating a new heap entry.
type wakerSlot struct {
	mu    sync.Mutex
	waker task.Waker
}

func (s *wakerSlot) replace(w task.Waker) (old task.Waker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old = s.waker
	s.waker = w
	return old
}

func (s *wakerSlot) take() task.Waker {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.waker
	s.waker = nil
	return w
}

// scheduledWake is one entry in the timer goroutine's min-heap.
type scheduledWake struct {
	instant time.Time
	slot    *wakerSlot
}

func (w *scheduledWake) fire() {
	if waker := w.slot.take(); waker != nil {
		waker.Wake()
	}
}

// wakeHeap is a container/heap.Interface ordering scheduledWake entries by
// instant, earliest first.
type wakeHeap []*scheduledWake

func (h wakeHeap) Len() int            { return len(h) }
func (h wakeHeap) Less(i, j int) bool  { return h[i].instant.Before(h[j].instant) }
func (h wakeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *wakeHeap) Push(x any)         { *h = append(*h, x.(*scheduledWake)) }
func (h *wakeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var (
	startOnce  sync.Once
	registerCh chan *scheduledWake
	timerMx    *metrics.Timer
)

// StartTimerThread starts the global timer goroutine if it is not already
// running. Must be called before scheduleWake (and therefore before
// SleepFor/SleepUntil/WithDeadline/WithTimeout) succeeds. Safe to call
// more than once or from more than one goroutine; only the first call has
// effect.
func StartTimerThread() {
	startOnce.Do(func() {
		registerCh = make(chan *scheduledWake)
		timerMx = metrics.NewTimer(nil)
		go timerLoop(registerCh)
	})
}

func timerLoop(in <-chan *scheduledWake) {
	h := wakeHeap{}
	heap.Init(&h)

	for {
		if len(h) == 0 {
			w := <-in
			heap.Push(&h, w)
			timerMx.HeapDepth.Set(float64(len(h)))
			continue
		}

		top := h[0]
		now := time.Now()
		if top.instant.Before(now) {
			heap.Pop(&h)
			timerMx.HeapDepth.Set(float64(len(h)))
			timerMx.FiredWakes.Inc()
			top.fire()
			continue
		}

		wait := top.instant.Sub(now)
		timer := time.NewTimer(wait)
		select {
		case w := <-in:
			timer.Stop()
			heap.Push(&h, w)
			timerMx.HeapDepth.Set(float64(len(h)))
		case <-timer.C:
		}
	}
}

// scheduleWake registers slot to be fired no sooner than instant. Returns
// errs.ErrTimerNotStarted if StartTimerThread was never called.
func scheduleWake(instant time.Time, slot *wakerSlot) error {
	if registerCh == nil {
		return errs.ErrTimerNotStarted
	}
	registerCh <- &scheduledWake{instant: instant, slot: slot}
	timerMx.ScheduledWakes.Inc()
	return nil
}
