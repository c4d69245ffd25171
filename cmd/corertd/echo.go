package main

import (
	"errors"
	"io"

	"github.com/entropyrt/corert/internal/corelog"
	"github.com/entropyrt/corert/pkg/executor"
	corenet "github.com/entropyrt/corert/pkg/net"
	"github.com/entropyrt/corert/pkg/task"
)

// echoServer accepts connections on a listener and spawns one task per
// connection that reads a chunk and writes it back until the peer closes.
type echoServer struct {
	exec     *executor.Executor
	listener *corenet.TCPListener
	log      *corelog.Logger
}

func newEchoServer(e *executor.Executor, addr string) (*echoServer, error) {
	ln, err := corenet.Bind(addr)
	if err != nil {
		return nil, err
	}
	return &echoServer{
		exec:     e,
		listener: ln,
		log:      corelog.GetGlobalLogger().WithComponent("echo"),
	}, nil
}

func (s *echoServer) Addr() string { return s.listener.Addr().String() }

func (s *echoServer) start() {
	s.exec.Spawn(s.acceptLoop())
}

func (s *echoServer) stop() {
	_ = s.listener.Close()
}

// acceptLoop is itself a future: each poll accepts connections until none
// is ready (then suspends), spawning a handler task for each one.
func (s *echoServer) acceptLoop() task.Future[task.Unit] {
	acceptFut := s.listener.Accept()
	return func(cx *task.Context) task.Poll[task.Unit] {
		for {
			p := acceptFut(cx)
			if !p.IsReady() {
				return task.Pending[task.Unit]()
			}
			res := p.Value()
			if res.Err != nil {
				s.log.Infof("accept loop stopping: %v", res.Err)
				return task.Ready(task.Unit{})
			}
			cx.Scheduler().Spawn(handleConn(res.Stream, s.log))
			acceptFut = s.listener.Accept()
		}
	}
}

// handleConn reads into buf and echoes it back, repeating until the peer
// closes the connection or an error occurs.
func handleConn(stream *corenet.TCPStream, log *corelog.Logger) task.Future[task.Unit] {
	buf := make([]byte, 4096)
	readFut := stream.Read(buf)
	var writeFut task.Future[corenet.WriteResult]
	var pending []byte

	return func(cx *task.Context) task.Poll[task.Unit] {
		for {
			if writeFut != nil {
				wp := writeFut(cx)
				if !wp.IsReady() {
					return task.Pending[task.Unit]()
				}
				writeFut = nil
				wr := wp.Value()
				if wr.Err != nil {
					_ = stream.Close()
					return task.Ready(task.Unit{})
				}
				if wr.N < len(pending) {
					pending = pending[wr.N:]
					writeFut = stream.Write(pending)
					continue
				}
				readFut = stream.Read(buf)
				continue
			}

			rp := readFut(cx)
			if !rp.IsReady() {
				return task.Pending[task.Unit]()
			}
			rr := rp.Value()
			if rr.Err != nil {
				if !errors.Is(rr.Err, io.EOF) {
					log.Warnf("read error: %v", rr.Err)
				}
				_ = stream.Close()
				return task.Ready(task.Unit{})
			}
			if rr.N == 0 {
				_ = stream.Close()
				return task.Ready(task.Unit{})
			}
			pending = buf[:rr.N]
			writeFut = stream.Write(pending)
		}
	}
}
