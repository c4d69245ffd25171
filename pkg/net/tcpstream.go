package net

import (
	"context"
	"net"
	"time"

	"github.com/entropyrt/corert/pkg/executor"
	"github.com/entropyrt/corert/pkg/task"
	"github.com/entropyrt/corert/pkg/timer"
)

// pollDeadline is the short read/write deadline used to detect "no data
// available right now" without truly blocking the calling goroutine.
const pollDeadline = 2 * time.Millisecond

// retryDelay is how long a would-block result suspends the task for
// before the next attempt.
const retryDelay = 25 * time.Millisecond

// TCPStream wraps a net.TCPConn for cooperative, non-blocking use inside
// futures.
type TCPStream struct {
	conn *net.TCPConn
}

// NewTCPStream wraps an already-established net.TCPConn.
func NewTCPStream(conn *net.TCPConn) *TCPStream {
	setNonblocking(conn)
	return &TCPStream{conn: conn}
}

// Conn returns the underlying net.TCPConn.
func (s *TCPStream) Conn() *net.TCPConn { return s.conn }

// Close closes the underlying connection.
func (s *TCPStream) Close() error { return s.conn.Close() }

// DialResult is the outcome of Connect.
type DialResult struct {
	Stream *TCPStream
	Err    error
}

// Connect opens addr on the executor's blocking pool and returns a future
// that completes once the connection is established (or fails).
func Connect(e *executor.Executor, addr string) (task.Future[DialResult], error) {
	receiver, err := executor.ScheduleBlocking(context.Background(), e, func() DialResult {
		conn, dialErr := net.Dial("tcp", addr)
		if dialErr != nil {
			return DialResult{Err: dialErr}
		}
		return DialResult{Stream: NewTCPStream(conn.(*net.TCPConn))}
	})
	if err != nil {
		return nil, err
	}

	recvFut := receiver.AsyncRecv()
	return func(cx *task.Context) task.Poll[DialResult] {
		p := recvFut(cx)
		if !p.IsReady() {
			return task.Pending[DialResult]()
		}
		res := p.Value()
		if res.Err != nil {
			return task.Ready(DialResult{Err: res.Err})
		}
		return task.Ready(res.Value)
	}, nil
}

// ReadResult is the outcome of a Read.
type ReadResult struct {
	N   int
	Err error
}

// Read returns a future that completes once at least one byte has been
// read into buf, EOF is reached, or a non-timeout error occurs.
// Would-block (read deadline expiry) suspends for retryDelay.
func (s *TCPStream) Read(buf []byte) task.Future[ReadResult] {
	var sleeping task.Future[task.Unit]
	return func(cx *task.Context) task.Poll[ReadResult] {
		if sleeping != nil {
			if !sleeping(cx).IsReady() {
				return task.Pending[ReadResult]()
			}
			sleeping = nil
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(pollDeadline))
		n, err := s.conn.Read(buf)
		if err == nil {
			return task.Ready(ReadResult{N: n})
		}
		if isTimeout(err) {
			sleeping = timer.SleepFor(retryDelay)
			return task.Pending[ReadResult]()
		}
		return task.Ready(ReadResult{N: n, Err: err})
	}
}

// WriteResult is the outcome of a Write.
type WriteResult struct {
	N   int
	Err error
}

// Write returns a future that completes once at least one byte of buf has
// been written, or a non-timeout error occurs.
func (s *TCPStream) Write(buf []byte) task.Future[WriteResult] {
	var sleeping task.Future[task.Unit]
	return func(cx *task.Context) task.Poll[WriteResult] {
		if sleeping != nil {
			if !sleeping(cx).IsReady() {
				return task.Pending[WriteResult]()
			}
			sleeping = nil
		}

		_ = s.conn.SetWriteDeadline(time.Now().Add(pollDeadline))
		n, err := s.conn.Write(buf)
		if err == nil {
			return task.Ready(WriteResult{N: n})
		}
		if isTimeout(err) {
			if n > 0 {
				return task.Ready(WriteResult{N: n})
			}
			sleeping = timer.SleepFor(retryDelay)
			return task.Pending[WriteResult]()
		}
		return task.Ready(WriteResult{N: n, Err: err})
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return asNetError(err, &ne) && ne.Timeout()
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}
