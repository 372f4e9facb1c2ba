package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunN(t *testing.T) {
	var sum atomic.Int64
	err := RunN(context.Background(), 4, 100, func(_, i int) error {
		sum.Add(int64(i))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum.Load())
}

func TestRunN_Error(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int64

	err := RunN(context.Background(), 2, 1000, func(_, i int) error {
		calls.Add(1)
		if i == 7 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int64(1000), "error stops further claims")
}

// Worker ids must stay within [0, workers) and every point must be visited
// exactly once, or per-worker scratch indexing breaks.
func TestRunN_WorkerIDs(t *testing.T) {
	const workers = 3
	const n = 200

	var visits [n]atomic.Int32
	err := RunN(context.Background(), workers, n, func(w, i int) error {
		if w < 0 || w >= workers {
			return errors.New("worker id out of range")
		}
		visits[i].Add(1)
		return nil
	})
	require.NoError(t, err)

	for i := range visits {
		assert.Equal(t, int32(1), visits[i].Load(), "point %d", i)
	}
}

func TestRunN_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	err := RunN(ctx, 2, 100, func(_, i int) error {
		calls.Add(1)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestRunN_MoreWorkersThanPoints(t *testing.T) {
	var calls atomic.Int64
	err := RunN(context.Background(), 16, 2, func(_, i int) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestRunN_Empty(t *testing.T) {
	err := RunN(context.Background(), 4, 0, func(_, i int) error {
		t.Fatal("fn must not be called for n == 0")
		return nil
	})
	require.NoError(t, err)
}
