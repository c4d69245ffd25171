package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropyrt/corert/pkg/task"
	"github.com/entropyrt/corert/pkg/timer"
)

func TestBlockOnImmediateReady(t *testing.T) {
	e, err := New(2, 2)
	require.NoError(t, err)

	got := BlockOn(e, func(cx *task.Context) task.Poll[int] {
		return task.Ready(99)
	})
	assert.Equal(t, 99, got)
}

func TestSpawnRunsFutureToCompletion(t *testing.T) {
	timer.StartTimerThread()
	e, err := New(2, 2)
	require.NoError(t, err)

	done := make(chan struct{})
	polls := 0
	e.Spawn(func(cx *task.Context) task.Poll[task.Unit] {
		polls++
		if polls < 3 {
			cx.Waker().Wake()
			return task.Pending[task.Unit]()
		}
		close(done)
		return task.Ready(task.Unit{})
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("spawned future never completed")
	}
}

func TestScheduleBlockingDeliversResult(t *testing.T) {
	e, err := New(2, 2)
	require.NoError(t, err)

	receiver, err := ScheduleBlocking(context.Background(), e, func() int {
		return 7 * 6
	})
	require.NoError(t, err)

	v, err := receiver.Recv()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

// TestSpawnSelfWakeNeverPollsConcurrently drives a future that
// self-wakes many times in a row from inside its own poll, across many
// async workers, and checks the unsynchronized counter it bumps on every
// poll never shows a lost update — which would indicate two goroutines
// were inside the future's poll at once.
func TestSpawnSelfWakeNeverPollsConcurrently(t *testing.T) {
	timer.StartTimerThread()
	e, err := New(8, 2)
	require.NoError(t, err)

	const iterations = 500
	done := make(chan struct{})
	polls := 0
	e.Spawn(func(cx *task.Context) task.Poll[task.Unit] {
		polls++
		if polls < iterations {
			cx.Waker().Wake()
			return task.Pending[task.Unit]()
		}
		close(done)
		return task.Ready(task.Unit{})
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("spawned future never completed")
	}
	assert.Equal(t, iterations, polls)
}

func TestSpawnSubTaskViaContextScheduler(t *testing.T) {
	e, err := New(2, 2)
	require.NoError(t, err)

	outer := make(chan struct{})
	inner := make(chan struct{})

	e.Spawn(func(cx *task.Context) task.Poll[task.Unit] {
		cx.Scheduler().Spawn(func(innerCx *task.Context) task.Poll[task.Unit] {
			close(inner)
			return task.Ready(task.Unit{})
		})
		close(outer)
		return task.Ready(task.Unit{})
	})

	for _, ch := range []chan struct{}{outer, inner} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("outer/inner task did not complete")
		}
	}
}
