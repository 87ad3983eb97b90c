package logkit

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesOf(got []logEntry) []string {
	out := make([]string, 0, len(got))
	for _, e := range got {
		if m, ok := e["message"].(string); ok {
			out = append(out, m)
		}
	}
	return out
}

func findEntry(got []logEntry, message string) (logEntry, bool) {
	for _, e := range got {
		if e["message"] == message {
			return e, true
		}
	}
	return nil, false
}

func TestInstrument_Success(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	compute := Instrument(svc, "compute", func(ctx context.Context, args ...any) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "V", nil
	})

	res, err := compute(context.Background(), 1, "two")
	require.NoError(t, err)
	assert.Equal(t, "V", res)

	got := entries(t, &buf)
	require.Len(t, got, 4)
	assert.Equal(t, []string{
		svc.text(msgStartCall),
		svc.text(msgCalling),
		svc.text(msgReturned),
		svc.text(msgEndCall),
	}, messagesOf(got))

	calling := got[1]
	assert.Equal(t, "compute", calling["function"])
	args, ok := calling["args"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{float64(1), "two"}, args)

	returned := got[2]
	assert.Equal(t, "V", returned["result"])
	duration, ok := returned["duration"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^\d+\.\d{4}s$`, duration)
	secs, err := time.ParseDuration(duration)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, 30*time.Millisecond)
}

func TestInstrument_CarriesRequestID(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	noop := Instrument(svc, "noop", func(ctx context.Context, args ...any) (int, error) {
		return 7, nil
	})

	ctx := WithRequestID(context.Background(), "req-77")
	_, err := noop(ctx)
	require.NoError(t, err)

	for _, e := range entries(t, &buf) {
		assert.Equal(t, "req-77", e[RequestIDField])
	}
}

func TestInstrument_ErrorPropagatesByDefault(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	boom := errors.New("kaput")
	fail := Instrument(svc, "fail", func(ctx context.Context, args ...any) (string, error) {
		return "", boom
	}, WithFailureMessage("custom failure text"))

	_, err := fail(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	got := entries(t, &buf)
	failure, ok := findEntry(got, "custom failure text")
	require.True(t, ok, "failure record with the custom message must be emitted")
	assert.Equal(t, "error", failure["level"])
	assert.Equal(t, "fail", failure["function"])

	// The end marker still closes the sequence.
	_, ok = findEntry(got, svc.text(msgEndCall))
	assert.True(t, ok)
}

func TestInstrument_SuppressionSwallows(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	fail := Instrument(svc, "fail", func(ctx context.Context, args ...any) (string, error) {
		return "partial", errors.New("kaput")
	}, WithSuppression(), WithFailureMessage("swallowed"))

	// Non-obvious contract: the caller receives the zero value and no
	// error.
	res, err := fail(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "", res)

	_, ok := findEntry(entries(t, &buf), "swallowed")
	assert.True(t, ok)
}

func TestInstrument_PanicSuppressed(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	explode := Instrument(svc, "explode", func(ctx context.Context, args ...any) (int, error) {
		panic("blown fuse")
	}, WithSuppression())

	res, err := explode(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, res)

	got := entries(t, &buf)
	failure, ok := findEntry(got, svc.text(msgDefaultFailure))
	require.True(t, ok)
	assert.Contains(t, failure["error"], "blown fuse")
	assert.NotEmpty(t, failure["stack"])
}

func TestInstrument_PanicPropagatesByDefault(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	explode := Instrument(svc, "explode", func(ctx context.Context, args ...any) (int, error) {
		panic("blown fuse")
	})

	assert.PanicsWithValue(t, "blown fuse", func() {
		_, _ = explode(context.Background())
	})

	_, ok := findEntry(entries(t, &buf), svc.text(msgDefaultFailure))
	assert.True(t, ok)
}

func TestInstrumentAsync_Success(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	compute := InstrumentAsync(svc, "compute", func(ctx context.Context, args ...any) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "V", nil
	})

	start := time.Now()
	ch := compute(context.Background())
	res := <-ch
	require.NoError(t, res.Err)
	assert.Equal(t, "V", res.Value)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	// Same sequence as the sync wrapper, with async wording.
	assert.Equal(t, []string{
		svc.text(msgStartAsyncCall),
		svc.text(msgCalling),
		svc.text(msgReturned),
		svc.text(msgEndAsyncCall),
	}, messagesOf(entries(t, &buf)))
}

func TestInstrumentAsync_PanicBecomesError(t *testing.T) {
	var buf threadSafeBuffer
	svc := newCaptureService(&buf)
	defer svc.Close()

	explode := InstrumentAsync(svc, "explode", func(ctx context.Context, args ...any) (int, error) {
		panic("blown fuse")
	})

	res := <-explode(context.Background())
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "blown fuse")

	// Exactly one failure record, logged by the shared wrapper body.
	n := 0
	for _, e := range entries(t, &buf) {
		if e["message"] == svc.text(msgDefaultFailure) {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.0042s", formatDuration(1004200*time.Microsecond))
	assert.Equal(t, "0.0000s", formatDuration(0))
}
