//go:build unix

package net

import (
	"net"

	"golang.org/x/sys/unix"
)

// setNonblocking flips the descriptor's O_NONBLOCK bit, best-effort.
// Errors are not fatal: the deadline-based retry loop in
// tcpstream.go/tcplistener.go is what actually provides cooperative
// would-block behavior.
func setNonblocking(conn syscallConner) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetNonblock(int(fd), true)
	})
}

type syscallConner interface {
	SyscallConn() (net.RawConn, error)
}
