package net

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entropyrt/corert/pkg/executor"
	"github.com/entropyrt/corert/pkg/timer"
)

func TestAcceptConnectReadWriteRoundTrip(t *testing.T) {
	timer.StartTimerThread()
	ln, err := Bind("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	e, err := executor.New(2, 2)
	require.NoError(t, err)
	defer e.Join()

	connectFut, err := Connect(e, ln.Addr().String())
	require.NoError(t, err)

	acceptCh := make(chan AcceptResult, 1)
	go func() { acceptCh <- executor.BlockOn(e, ln.Accept()) }()

	dialRes := executor.BlockOn(e, connectFut)
	require.NoError(t, dialRes.Err)
	require.NotNil(t, dialRes.Stream)
	defer dialRes.Stream.Close()

	acceptRes := <-acceptCh
	require.NoError(t, acceptRes.Err)
	require.NotNil(t, acceptRes.Stream)
	defer acceptRes.Stream.Close()

	payload := []byte("ping")
	writeRes := executor.BlockOn(e, dialRes.Stream.Write(payload))
	require.NoError(t, writeRes.Err)
	require.Equal(t, len(payload), writeRes.N)

	buf := make([]byte, 16)
	readRes := executor.BlockOn(e, acceptRes.Stream.Read(buf))
	require.NoError(t, readRes.Err)
	require.Equal(t, payload, buf[:readRes.N])
}

func TestAcceptOnClosedListenerReturnsError(t *testing.T) {
	timer.StartTimerThread()
	ln, err := Bind("127.0.0.1:0")
	require.NoError(t, err)

	e, err := executor.New(1, 1)
	require.NoError(t, err)
	defer e.Join()

	acceptCh := make(chan AcceptResult, 1)
	go func() { acceptCh <- executor.BlockOn(e, ln.Accept()) }()

	require.NoError(t, ln.Close())

	res := <-acceptCh
	require.Error(t, res.Err)
}
