package logkit

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
)

// InstrumentOption configures a wrapped function. Options are applied at
// wrap time, not per call.
type InstrumentOption func(*instrumentOptions)

type instrumentOptions struct {
	failureMsg string
	suppress   bool
}

// WithFailureMessage sets the custom message logged when the wrapped
// function fails.
func WithFailureMessage(msg string) InstrumentOption {
	return func(o *instrumentOptions) {
		o.failureMsg = msg
	}
}

// WithSuppression restores the legacy failure contract: the error (or
// panic) is logged and swallowed, and the caller receives the zero value
// with a nil error. Without it failures propagate unchanged.
func WithSuppression() InstrumentOption {
	return func(o *instrumentOptions) {
		o.suppress = true
	}
}

// Result carries the outcome of an asynchronously instrumented call.
type Result[T any] struct {
	Value T
	Err   error
}

// Instrument wraps fn so that every invocation logs a start marker, the
// arguments, the result with wall-clock duration, and an end marker.
// Failures (error returns and panics) are logged at exception severity
// with the configured failure message and, by default, propagate to the
// caller; WithSuppression swallows them instead.
func Instrument[T any](l *Service, name string, fn func(context.Context, ...any) (T, error), opts ...InstrumentOption) func(context.Context, ...any) (T, error) {
	o := buildOptions(opts)
	return func(ctx context.Context, args ...any) (T, error) {
		return instrumentedCall(l, name, o, false, ctx, args, fn)
	}
}

// InstrumentAsync wraps fn so each invocation runs on its own goroutine,
// delivering the outcome on the returned channel. The record sequence
// mirrors Instrument with async wording. Panics are recovered inside the
// worker goroutine and delivered as errors, since re-raising there would
// bypass the caller entirely.
func InstrumentAsync[T any](l *Service, name string, fn func(context.Context, ...any) (T, error), opts ...InstrumentOption) func(context.Context, ...any) <-chan Result[T] {
	o := buildOptions(opts)
	return func(ctx context.Context, args ...any) <-chan Result[T] {
		out := make(chan Result[T], 1)
		go func() {
			defer close(out)
			var res Result[T]
			func() {
				// instrumentedCall has already logged the failure before
				// re-raising; here the panic is only converted to an error
				// so the caller still receives an outcome.
				defer func() {
					if r := recover(); r != nil {
						res.Err = errors.Errorf("panic in %s: %v", name, r)
					}
				}()
				res.Value, res.Err = instrumentedCall(l, name, o, true, ctx, args, fn)
			}()
			out <- res
		}()
		return out
	}
}

func buildOptions(opts []InstrumentOption) instrumentOptions {
	var o instrumentOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// instrumentedCall is the shared wrapper body. Panics are logged here and
// either swallowed or re-raised depending on the suppression option.
func instrumentedCall[T any](l *Service, name string, o instrumentOptions, async bool, ctx context.Context, args []any, fn func(context.Context, ...any) (T, error)) (res T, err error) {
	log := l.For(ctx)

	startKey, endKey := msgStartCall, msgEndCall
	if async {
		startKey, endKey = msgStartAsyncCall, msgEndAsyncCall
	}

	log.InfoWith().Msg(l.text(startKey))
	log.InfoWith().
		Str("function", name).
		Interface("args", args).
		Msg(l.text(msgCalling))

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logFailure(l, ctx, name, o, errors.Errorf("panic: %v", r), debug.Stack(), async)
			log.InfoWith().Msg(l.text(endKey))
			if o.suppress {
				var zero T
				res, err = zero, nil
				return
			}
			panic(r)
		}
	}()

	res, err = fn(ctx, args...)
	if err != nil {
		logFailure(l, ctx, name, o, err, nil, async)
		log.InfoWith().Msg(l.text(endKey))
		if o.suppress {
			var zero T
			return zero, nil
		}
		return res, err
	}

	log.InfoWith().
		Str("function", name).
		Interface("result", res).
		Str("duration", formatDuration(time.Since(start))).
		Msg(l.text(msgReturned))
	log.InfoWith().Msg(l.text(endKey))
	return res, nil
}

// logFailure emits the exception record for a failed instrumented call.
func logFailure(l *Service, ctx context.Context, name string, o instrumentOptions, err error, stack []byte, async bool) {
	msg := o.failureMsg
	if msg == emptyString {
		msg = l.text(msgDefaultFailure)
	}

	event := l.For(ctx).ExceptionWith().
		Str("function", name).
		Bool("async", async).
		Err(errors.WithStack(err))
	if len(stack) > 0 {
		event = event.Bytes("stack", stack)
	}
	event.Msg(msg)
}

// formatDuration renders elapsed wall-clock time in seconds with four
// decimals, e.g. "1.0042s".
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.4fs", d.Seconds())
}
