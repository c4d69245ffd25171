package timer

import (
	"time"

	"github.com/entropyrt/corert/pkg/task"
)

// SleepUntil returns a future that completes once instant has passed.
func SleepUntil(instant time.Time) task.Future[task.Unit] {
	slot := &wakerSlot{}
	return func(cx *task.Context) task.Poll[task.Unit] {
		if instant.Before(time.Now()) {
			return task.Ready(task.Unit{})
		}

		old := slot.replace(cx.Waker())
		if old == nil {
			// Only the poll that first finds the slot empty registers a
			// heap entry; later re-polls just swap in the latest waker.
			if err := scheduleWake(instant, slot); err != nil {
				panic(err)
			}
		}
		return task.Pending[task.Unit]()
	}
}

// SleepFor returns a future that completes once duration has elapsed from
// the moment SleepFor is called, not from the moment it is first polled.
func SleepFor(duration time.Duration) task.Future[task.Unit] {
	return SleepUntil(time.Now().Add(duration))
}
