package net

import (
	"net"
	"time"

	"github.com/entropyrt/corert/pkg/task"
	"github.com/entropyrt/corert/pkg/timer"
)

// TCPListener wraps a net.TCPListener for cooperative, non-blocking
// accept.
type TCPListener struct {
	listener *net.TCPListener
}

// Bind listens on addr and returns a cooperative listener.
func Bind(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	tcpLn := ln.(*net.TCPListener)
	setNonblocking(tcpLn)
	return &TCPListener{listener: tcpLn}, nil
}

// Close closes the listening socket.
func (l *TCPListener) Close() error { return l.listener.Close() }

// Addr returns the listener's bound address.
func (l *TCPListener) Addr() net.Addr { return l.listener.Addr() }

// AcceptResult is the outcome of Accept.
type AcceptResult struct {
	Stream *TCPStream
	Addr   net.Addr
	Err    error
}

// Accept returns a future that completes once a new connection arrives,
// suspending for retryDelay between would-block attempts.
func (l *TCPListener) Accept() task.Future[AcceptResult] {
	var sleeping task.Future[task.Unit]
	return func(cx *task.Context) task.Poll[AcceptResult] {
		if sleeping != nil {
			if !sleeping(cx).IsReady() {
				return task.Pending[AcceptResult]()
			}
			sleeping = nil
		}

		_ = l.listener.SetDeadline(time.Now().Add(pollDeadline))
		conn, err := l.listener.Accept()
		if err == nil {
			stream := NewTCPStream(conn.(*net.TCPConn))
			return task.Ready(AcceptResult{Stream: stream, Addr: conn.RemoteAddr()})
		}
		if isTimeout(err) {
			sleeping = timer.SleepFor(retryDelay)
			return task.Pending[AcceptResult]()
		}
		return task.Ready(AcceptResult{Err: err})
	}
}
