package broadcast

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringcast/errors"
)

func newQueue(t *testing.T, capacity int, opts ...Option[int]) *Ring[int] {
	t.Helper()
	return newTestRing[int](t, capacity, append([]Option[int]{WithMode[int](ModeQueue)}, opts...)...)
}

func TestModeMismatch(t *testing.T) {
	b := newTestRing[int](t, 2)

	_, err := b.Pop()
	assert.True(t, stderrors.Is(err, errors.ErrWrongMode))
	_, err = b.Take(context.Background())
	assert.True(t, stderrors.Is(err, errors.ErrWrongMode))
	err = b.Reset()
	assert.True(t, stderrors.Is(err, errors.ErrWrongMode))
	assert.True(t, errors.IsInvalid(err))

	q := newQueue(t, 2)
	_, err = q.Register()
	assert.True(t, stderrors.Is(err, errors.ErrWrongMode))
	assert.Equal(t, ModeQueue, q.Mode())
}

func TestQueueFIFO(t *testing.T) {
	q := newQueue(t, 3)

	for i := 1; i <= 3; i++ {
		require.True(t, q.TryPut(i))
	}
	assert.True(t, q.Full())

	for i := 1; i <= 3; i++ {
		res, err := q.Pop()
		require.NoError(t, err)
		require.True(t, res.Ok())
		assert.Equal(t, i, res.Value)
		assert.Equal(t, uint64(i-1), res.Seq)
	}

	res, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, res.Status)
	assert.True(t, q.Empty())
	assert.Equal(t, int64(3), q.Stats().Pops())
}

func TestQueueOverflowPolicies(t *testing.T) {
	tests := []struct {
		name    string
		policy  OverflowPolicy
		dropped []int
		kept    []int
	}{
		{"drop oldest", DropOldest, []int{1, 2}, []int{3, 4, 5}},
		{"drop newest", DropNewest, []int{4, 5}, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			var dropped []int
			q := newQueue(t, 3,
				WithOverflowPolicy[int](tt.policy),
				WithDropCallback[int](func(item int) {
					mu.Lock()
					dropped = append(dropped, item)
					mu.Unlock()
				}),
			)

			for i := 1; i <= 5; i++ {
				require.True(t, q.TryPut(i))
			}
			assert.Equal(t, 3, q.Size())
			assert.Equal(t, tt.dropped, dropped)
			assert.Equal(t, int64(len(tt.dropped)), q.Stats().Drops())

			for _, want := range tt.kept {
				res, err := q.Pop()
				require.NoError(t, err)
				assert.Equal(t, want, res.Value)
			}
		})
	}
}

func TestQueueReset(t *testing.T) {
	q := newQueue(t, 4)
	for i := 0; i < 3; i++ {
		require.True(t, q.TryPut(i))
	}

	require.NoError(t, q.Reset())
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Size())

	res, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, res.Status)

	require.True(t, q.TryPut(9))
	res, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 9, res.Value)
}

func TestQueueTakeWaits(t *testing.T) {
	q := newQueue(t, 2)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = q.Put(context.Background(), 42)
	}()

	res, err := q.Take(context.Background())
	require.NoError(t, err)
	require.True(t, res.Ok())
	assert.Equal(t, 42, res.Value)
}

func TestQueueTakeCancelled(t *testing.T) {
	q := newQueue(t, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
}

func TestQueueClosedDrains(t *testing.T) {
	q := newQueue(t, 2)
	require.True(t, q.TryPut(1))
	require.NoError(t, q.Close())

	res, err := q.Take(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value)

	res, err = q.Take(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, res.Status)

	res, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, res.Status)
}

func TestParseModeAndPolicy(t *testing.T) {
	m, ok := ParseMode("queue")
	assert.True(t, ok)
	assert.Equal(t, ModeQueue, m)
	m, ok = ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, ModeBroadcast, m)
	_, ok = ParseMode("fanout")
	assert.False(t, ok)

	p, ok := ParseOverflowPolicy("drop_newest")
	assert.True(t, ok)
	assert.Equal(t, DropNewest, p)
	assert.Equal(t, "drop_newest", p.String())
	_, ok = ParseOverflowPolicy("block")
	assert.False(t, ok)
}
