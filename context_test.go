package logkit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDFrom(t *testing.T) {
	t.Run("default when unset", func(t *testing.T) {
		assert.Equal(t, DefaultRequestID, RequestIDFrom(context.Background()))
	})

	t.Run("default on nil context", func(t *testing.T) {
		assert.Equal(t, DefaultRequestID, RequestIDFrom(nil))
	})

	t.Run("set and read", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-42")
		assert.Equal(t, "req-42", RequestIDFrom(ctx))
	})

	t.Run("nested set restores prior on unwind", func(t *testing.T) {
		outer := WithRequestID(context.Background(), "outer")
		inner := WithRequestID(outer, "inner")

		assert.Equal(t, "inner", RequestIDFrom(inner))
		// The outer context is the restore token: it still carries the
		// prior value.
		assert.Equal(t, "outer", RequestIDFrom(outer))
	})
}

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	ctx, id := ContextWithNewRequestID(context.Background())
	assert.Equal(t, id, RequestIDFrom(ctx))
}

func TestFor_StampsRequestID(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	ctx := WithRequestID(context.Background(), "abc-123")
	svc.For(ctx).InfoWith().Msg("scoped")
	svc.InfoWith().Msg("unscoped")

	got := entries(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "abc-123", got[0][RequestIDField])
	assert.Equal(t, DefaultRequestID, got[1][RequestIDField])
}

// Concurrent chains must never observe each other's correlation ids.
func TestFor_ChainIsolation(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	ids := []string{"req-a", "req-b", "req-c", "req-d"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ctx := WithRequestID(context.Background(), id)
			log := svc.For(ctx)
			for i := 0; i < 20; i++ {
				log.InfoWith().Str("chain", id).Msg("work")
			}
		}(id)
	}
	wg.Wait()

	for _, e := range entries(t, &buf) {
		assert.Equal(t, e["chain"], e[RequestIDField])
	}
}

func TestFor_Uninitialized(t *testing.T) {
	svc := New(DefaultConfig("app"))
	log := svc.For(WithRequestID(context.Background(), "x"))
	log.InfoWith().Msg("should not panic")
	log.ExceptionWith().Msg("should not panic")
}
