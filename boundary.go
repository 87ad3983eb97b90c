package logkit

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
)

// CatchPanic is the process-level error boundary in deferred form:
//
//	defer svc.CatchPanic()
//
// Any panic reaching it is logged at exception severity with the full
// stack, then re-raised so normal termination proceeds. Interrupt signals
// are not panics and pass through the process untouched; see
// NotifyInterrupt.
func (s *Service) CatchPanic() {
	r := recover()
	if r == nil {
		return
	}
	s.ExceptionWith().
		Interface("panic", r).
		Bytes("stack", debug.Stack()).
		Msg(s.text(msgUnhandledPanic))
	panic(r)
}

// Boundary runs fn inside the error boundary. A panic raised by fn is
// logged with its stack and re-raised; an error return is passed through
// unchanged.
func (s *Service) Boundary(fn func() error) error {
	defer s.CatchPanic()
	return fn()
}

// NotifyInterrupt returns a context cancelled on SIGINT or SIGTERM. The
// signals themselves are relayed with their default disposition restored
// on a second delivery, so the process always remains stoppable.
func NotifyInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
