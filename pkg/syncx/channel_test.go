package syncx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropyrt/corert/pkg/errs"
	"github.com/entropyrt/corert/pkg/task"
)

func TestOneShotSendRecv(t *testing.T) {
	sender, receiver := OneShot[int]()
	require.NoError(t, sender.Send(7))

	v, err := receiver.Recv()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestOneShotCloseWithoutSendDisconnects(t *testing.T) {
	sender, receiver := OneShot[string]()
	sender.Close()

	_, err := receiver.Recv()
	assert.ErrorIs(t, err, errs.ErrRecvDisconnected)
}

func TestSyncChannelFIFO(t *testing.T) {
	sender, receiver := SyncChannel[int](4)
	for i := 0; i < 4; i++ {
		require.NoError(t, sender.TrySend(i))
	}
	sender.Close()

	for i := 0; i < 4; i++ {
		v, err := receiver.TryRecv()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	_, err := receiver.TryRecv()
	assert.ErrorIs(t, err, errs.ErrTryRecvDisconnected)
}

func TestSyncChannelTrySendFullThenDisconnected(t *testing.T) {
	sender, receiver := SyncChannel[int](1)
	require.NoError(t, sender.TrySend(1))

	err := sender.TrySend(2)
	var full *errs.TrySendError[int]
	require.ErrorAs(t, err, &full)
	assert.False(t, full.Disconnected)

	receiver.Close()
	err = sender.TrySend(3)
	require.ErrorAs(t, err, &full)
	assert.True(t, full.Disconnected)
}

func TestSyncChannelCloneSharesQueue(t *testing.T) {
	sender, receiver := SyncChannel[int](2)
	clone := sender.Clone()

	require.NoError(t, sender.Send(1))
	require.NoError(t, clone.Send(2))

	sender.Close()
	v, err := receiver.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Sender closed but clone is still live: the queue must not be closed
	// yet, so the second value is still retrievable.
	v, err = receiver.TryRecv()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	clone.Close()
	_, err = receiver.TryRecv()
	assert.ErrorIs(t, err, errs.ErrTryRecvDisconnected)
}

func TestSendAfterReceiverCloseAlwaysDisconnectsEvenWithRoom(t *testing.T) {
	sender, receiver := SyncChannel[int](4)
	receiver.Close()

	for i := 0; i < 10; i++ {
		err := sender.Send(i)
		var sendErr *errs.SendError[int]
		require.ErrorAs(t, err, &sendErr)
	}
}

func TestAsyncSendAfterReceiverCloseAlwaysDisconnectsEvenWithRoom(t *testing.T) {
	sender, receiver := SyncChannel[int](4)
	receiver.Close()

	w := newTestWaker()
	cx := task.NewContext(w, nil)

	for i := 0; i < 10; i++ {
		p := sender.AsyncSend(i)(cx)
		require.True(t, p.IsReady())
		var sendErr *errs.SendError[int]
		require.ErrorAs(t, p.Value(), &sendErr)
	}
}

func TestAsyncSendRecv(t *testing.T) {
	sender, receiver := SyncChannel[int](1)

	w := newTestWaker()
	cx := task.NewContext(w, nil)

	sendFut := sender.AsyncSend(42)
	p := sendFut(cx)
	require.True(t, p.IsReady())
	require.NoError(t, p.Value())

	recvFut := receiver.AsyncRecv()
	rp := recvFut(cx)
	require.True(t, rp.IsReady())
	res := rp.Value()
	require.NoError(t, res.Err)
	assert.Equal(t, 42, res.Value)
}
