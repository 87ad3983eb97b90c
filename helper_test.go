package logkit

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"trace", "trace", zerolog.TraceLevel, false},
		{"debug", "debug", zerolog.DebugLevel, false},
		{"info", "info", zerolog.InfoLevel, false},
		{"warn", "warn", zerolog.WarnLevel, false},
		{"warning alias", "warning", zerolog.WarnLevel, false},
		{"error", "error", zerolog.ErrorLevel, false},
		{"critical alias", "critical", zerolog.FatalLevel, false},
		{"exception alias", "exception", zerolog.ErrorLevel, false},
		{"mixed case", "INFO", zerolog.InfoLevel, false},
		{"invalid", "loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := parseLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestBuildErrorChain(t *testing.T) {
	t.Run("pkg errors wrap chain", func(t *testing.T) {
		root := errors.New("connection refused")
		mid := errors.Wrap(root, "failed to connect")
		outer := errors.Wrap(mid, "startup failed")

		chain, rootMsg := buildErrorChain(outer)
		assert.Equal(t, []string{
			"startup failed: failed to connect: connection refused",
			"failed to connect: connection refused",
			"connection refused",
		}, chain)
		assert.Equal(t, "connection refused", rootMsg)
	})

	t.Run("stdlib wrap chain", func(t *testing.T) {
		root := stderrs.New("disk full")
		outer := fmt.Errorf("flush failed: %w", root)

		chain, rootMsg := buildErrorChain(outer)
		assert.Equal(t, []string{"flush failed: disk full", "disk full"}, chain)
		assert.Equal(t, "disk full", rootMsg)
	})

	t.Run("nil error", func(t *testing.T) {
		chain, rootMsg := buildErrorChain(nil)
		assert.Empty(t, chain)
		assert.Empty(t, rootMsg)
	})

	t.Run("single error", func(t *testing.T) {
		chain, rootMsg := buildErrorChain(stderrs.New("lonely"))
		assert.Equal(t, []string{"lonely"}, chain)
		assert.Equal(t, "lonely", rootMsg)
	})
}

func TestJoinChain(t *testing.T) {
	assert.Equal(t, "", joinChain(nil))
	assert.Equal(t, "a -> b", joinChain([]string{"a", "b"}))
}

func TestEventErr_EmitsChainFields(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	root := errors.New("connection refused")
	outer := errors.Wrap(root, "startup failed")

	svc.ErrorWith().Err(outer).Msg("boom")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	e := got[0]

	assert.Equal(t, "startup failed: connection refused", e["error"])
	assert.Equal(t, "connection refused", e["error_root"])
	history, _ := e["error_history"].(string)
	assert.Contains(t, history, " -> ")

	chain, ok := e["error_chain"].([]any)
	require.True(t, ok)
	assert.Len(t, chain, 2)
}

func TestEventErr_SingleErrorSkipsChain(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	svc.ErrorWith().Err(stderrs.New("plain")).Msg("boom")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	_, hasChain := got[0]["error_chain"]
	assert.False(t, hasChain)
}

func TestLogEventBuilder(t *testing.T) {
	t.Run("nil service", func(t *testing.T) {
		var svc *Service
		event := logEventBuilder(svc, sevInfo)
		assert.NotNil(t, event)
		event.Msg("should not panic")
	})

	t.Run("uninitialized service", func(t *testing.T) {
		event := logEventBuilder(New(DefaultConfig("app")), sevInfo)
		assert.NotNil(t, event)
		event.Msg("should not panic")
	})

	t.Run("disabled level returns noop", func(t *testing.T) {
		var buf threadSafeBuffer
		svc := newCaptureService(&buf)
		defer svc.Close()

		lg := svc.logger.Load().Level(zerolog.ErrorLevel)
		svc.logger.Store(&lg)

		logEventBuilder(svc, sevDebug).Msg("filtered out")
		assert.Empty(t, buf.String())
		assert.Equal(t, int32(0), svc.ActiveOperations())
	})
}
