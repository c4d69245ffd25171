// Package net provides cooperative, non-reactor asynchronous wrappers
// over net.Conn/net.Listener: TCPStream and TCPListener poll the
// standard library's blocking socket operations, treat a short-deadline
// timeout as "would block", and suspend for timer.SleepFor(25ms) instead
// of spinning, letting the worker move on to other tasks in between.
//
// Go's net.Conn has no portable way to surface a genuine EAGAIN to the
// caller (the runtime's own netpoller already owns that), so a short
// read/write deadline stands in for would-block detection: its expiry is
// the suspend signal. On Unix, nonblock_unix.go additionally flips the
// descriptor's O_NONBLOCK bit via golang.org/x/sys/unix for good measure,
// though the deadline loop is what actually drives the cooperative retry.
package net
