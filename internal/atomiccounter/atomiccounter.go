// Package atomiccounter provides a thread-safe monotonically increasing
// counter, used to mint worker names and other process-unique sequence
// numbers without contending on a mutex.
package atomiccounter

import "sync/atomic"

// Counter is a thread-safe counter. The zero value starts at 0.
type Counter struct {
	next atomic.Int64
}

// Next returns the current value and increments the counter.
func (c *Counter) Next() int64 {
	return c.next.Add(1) - 1
}
