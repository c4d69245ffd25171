package selectx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entropyrt/corert/pkg/task"
)

func readyFuture[T any](v T) task.Future[T] {
	return func(cx *task.Context) task.Poll[T] { return task.Ready(v) }
}

func pendingFuture[T any]() task.Future[T] {
	return func(cx *task.Context) task.Poll[T] { return task.Pending[T]() }
}

func TestSelectABFirstPositionWinsOnSimultaneousReady(t *testing.T) {
	fut := SelectAB(readyFuture("a"), readyFuture(7))
	p := fut(task.NewContext(nil, nil))

	assert.True(t, p.IsReady())
	got := p.Value()
	assert.True(t, got.IsA())
	assert.Equal(t, "a", got.A())
}

func TestSelectABSecondReadyWhenFirstPending(t *testing.T) {
	fut := SelectAB(pendingFuture[string](), readyFuture(42))
	p := fut(task.NewContext(nil, nil))

	assert.True(t, p.IsReady())
	got := p.Value()
	assert.True(t, got.IsB())
	assert.Equal(t, 42, got.B())
}

func TestSelectABCDEAllPendingStaysPending(t *testing.T) {
	fut := SelectABCDE(
		pendingFuture[int](),
		pendingFuture[int](),
		pendingFuture[int](),
		pendingFuture[int](),
		pendingFuture[int](),
	)
	p := fut(task.NewContext(nil, nil))
	assert.False(t, p.IsReady())
}

func TestSelectABCThirdWins(t *testing.T) {
	fut := SelectABC(pendingFuture[int](), pendingFuture[string](), readyFuture(true))
	p := fut(task.NewContext(nil, nil))

	assert.True(t, p.IsReady())
	got := p.Value()
	assert.True(t, got.IsC())
	assert.True(t, got.C())
}
