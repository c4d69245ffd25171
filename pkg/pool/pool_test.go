package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropyrt/corert/pkg/errs"
)

func TestNewValidatesArguments(t *testing.T) {
	_, err := New("", 4)
	assert.ErrorIs(t, err, errs.ErrEmptyPoolName)

	_, err = New("p", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidPoolSize)

	p, err := New("p", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Size())
	assert.Eventually(t, func() bool { return p.LiveCount() == 2 }, time.Second, time.Millisecond)
}

func TestScheduleRunsJobs(t *testing.T) {
	p, err := New("run", 3)
	require.NoError(t, err)

	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Schedule(func() {
			defer wg.Done()
			n.Add(1)
		})
	}
	wg.Wait()
	assert.Equal(t, int64(50), n.Load())
}

func TestTryScheduleFailsWhenFull(t *testing.T) {
	p, err := New("try", 1)
	require.NoError(t, err)

	block := make(chan struct{})
	done := make(chan struct{})
	require.NoError(t, p.TrySchedule(func() {
		<-block
		close(done)
	}))

	// Drive the queue to capacity so a further TrySchedule observes it full.
	var filled bool
	for i := 0; i < p.Size()*200+1; i++ {
		if err := p.TrySchedule(func() {}); err != nil {
			assert.ErrorIs(t, err, errs.ErrQueueFull)
			filled = true
			break
		}
	}
	assert.True(t, filled, "expected the bounded queue to eventually report full")

	close(block)
	<-done
}

func TestWorkerPanicIsRecoveredAndRespawned(t *testing.T) {
	p, err := New("panicky", 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return p.LiveCount() == 1 }, time.Second, time.Millisecond)

	p.Schedule(func() { panic("boom") })

	var ran atomic.Bool
	done := make(chan struct{})
	p.Schedule(func() {
		ran.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not respawn after a worker panic")
	}
	assert.True(t, ran.Load())
	assert.Eventually(t, func() bool { return p.LiveCount() == 1 }, time.Second, time.Millisecond)
}

func TestJoinWaitsForDrain(t *testing.T) {
	p, err := New("join", 2)
	require.NoError(t, err)

	var completed atomic.Int64
	for i := 0; i < 10; i++ {
		p.Schedule(func() {
			time.Sleep(5 * time.Millisecond)
			completed.Add(1)
		})
	}

	require.NoError(t, p.Join(2*time.Second))
	assert.Equal(t, int64(10), completed.Load())
	assert.Equal(t, int64(0), p.LiveCount())
}

func TestJoinTimesOut(t *testing.T) {
	p, err := New("stuck", 1)
	require.NoError(t, err)

	block := make(chan struct{})
	p.Schedule(func() { <-block })

	err = p.Join(20 * time.Millisecond)
	assert.Error(t, err)
	close(block)
}

func TestString(t *testing.T) {
	p, err := New("named", 2)
	require.NoError(t, err)
	assert.Contains(t, p.String(), `name="named"`)
}
