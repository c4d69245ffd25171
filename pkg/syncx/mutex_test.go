package syncx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/entropyrt/corert/pkg/task"
)

type testWaker struct {
	ch chan struct{}
}

func newTestWaker() *testWaker { return &testWaker{ch: make(chan struct{}, 1)} }

func (w *testWaker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func pollToReady[T any](t *testing.T, fut task.Future[T]) T {
	t.Helper()
	w := newTestWaker()
	cx := task.NewContext(w, nil)
	for {
		p := fut(cx)
		if p.IsReady() {
			return p.Value()
		}
		select {
		case <-w.ch:
		case <-time.After(5 * time.Second):
			t.Fatal("future never became ready")
		}
	}
}

func TestMutexExclusion(t *testing.T) {
	m := NewMutex(0)

	const tasks = 100
	var wg sync.WaitGroup
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard := pollToReady(t, m.Lock())
			guard.Set(guard.Get() + 1)
			guard.Unlock()
		}()
	}
	wg.Wait()

	guard := pollToReady(t, m.Lock())
	assert.Equal(t, tasks, guard.Get())
	guard.Unlock()
}

func TestMutexDoubleUnlockPanics(t *testing.T) {
	m := NewMutex("x")
	guard := pollToReady(t, m.Lock())
	guard.Unlock()
	assert.Panics(t, func() { guard.Unlock() })
}
