package logkit

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext provides a fluent interface for building a child logger with
// pre-populated fields.
type LogContext interface {
	Str(key, val string) LogContext
	Strs(key string, vals []string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Uint64(key string, val uint64) LogContext
	Float64(key string, val float64) LogContext
	Bool(key string, val bool) LogContext
	Time(key string, val time.Time) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	// Logger creates and returns the new child logger
	Logger() Logger
}

// LogEvent provides a fluent interface for structured logging with
// type-safe field methods. It wraps zerolog.Event; a nil inner event makes
// every method a safe no-op.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Stringer(key string, val interface{ String() string }) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Uint64(key string, val uint64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Bytes(key string, val []byte) LogEvent
	Interface(key string, val interface{}) LogEvent
	Dict(key string, dict func(LogEvent)) LogEvent
	// Stack enables stack capture for an attached error.
	Stack() LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

type logEvent struct {
	event *zerolog.Event
}

// trackedLogEvent decrements the service's active-operations counter when
// the event is finally emitted, so Close() can drain in-flight logs.
type trackedLogEvent struct {
	logEvent
	service *Service
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func newTrackedLogEvent(e *zerolog.Event, s *Service) LogEvent {
	if e == nil || s == nil {
		return &logEvent{event: nil}
	}
	return &trackedLogEvent{
		logEvent: logEvent{event: e},
		service:  s,
	}
}

// newTrackedContextLogEvent creates a tracked event for a child logger.
// Resource management is delegated to the parent service.
func newTrackedContextLogEvent(cl *contextLogger, sv severity) LogEvent {
	if cl == nil || cl.logger == nil || cl.parent == nil {
		return newLogEvent(nil)
	}

	cl.parent.activeOps.Add(1)
	cl.parent.wg.Add(1)

	cl.parent.mu.RLock()

	if !cl.parent.isInitialized.Load() || cl.logger.GetLevel() > sv.zerologLevel() {
		cl.parent.mu.RUnlock()
		cl.parent.activeOps.Add(-1)
		cl.parent.wg.Done()
		return newLogEvent(nil)
	}

	event := eventFor(cl.logger, sv)
	cl.parent.mu.RUnlock()

	return newTrackedLogEvent(event, cl.parent)
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Stringer(key string, val interface{ String() string }) LogEvent {
	if e.event != nil {
		e.event.Stringer(key, val)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Uint64(key string, val uint64) LogEvent {
	if e.event != nil {
		e.event.Uint64(key, val)
	}
	return e
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	if e.event != nil {
		e.event.Float64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

func (e *logEvent) Err(err error) LogEvent {
	if e.event != nil {
		e.event.Err(err)
		if err != nil {
			chain, root := buildErrorChain(err)
			if len(chain) > 1 {
				e.event.Strs("error_chain", chain)
				e.event.Str("error_root", root)
				e.event.Str("error_history", joinChain(chain))
			}
		}
	}
	return e
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event != nil {
		e.event.AnErr(key, err)
		if err != nil {
			chain, root := buildErrorChain(err)
			if len(chain) > 1 {
				e.event.Strs(key+"_chain", chain)
				e.event.Str(key+"_root", root)
				e.event.Str(key+"_history", joinChain(chain))
			}
		}
	}
	return e
}

func (e *logEvent) Bytes(key string, val []byte) LogEvent {
	if e.event != nil {
		e.event.Bytes(key, val)
	}
	return e
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

// Dict for nested objects
func (e *logEvent) Dict(key string, dict func(LogEvent)) LogEvent {
	if e.event != nil {
		dictEvent := zerolog.Dict()
		dict(newLogEvent(dictEvent))
		e.event.Dict(key, dictEvent)
	}
	return e
}

func (e *logEvent) Stack() LogEvent {
	if e.event != nil {
		e.event.Stack()
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	if e.event != nil {
		e.event.Send()
	}
}

// Terminal methods on trackedLogEvent release the in-flight counter.
func (e *trackedLogEvent) Msg(msg string) {
	defer func() {
		e.service.activeOps.Add(-1)
		e.service.wg.Done()
	}()
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *trackedLogEvent) Msgf(format string, v ...interface{}) {
	defer func() {
		e.service.activeOps.Add(-1)
		e.service.wg.Done()
	}()
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *trackedLogEvent) Send() {
	defer func() {
		e.service.activeOps.Add(-1)
		e.service.wg.Done()
	}()
	if e.event != nil {
		e.event.Send()
	}
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	service *Service
}

// contextLogger is a child logger created from a LogContext or from
// Service.For. It delegates resource management to the parent service.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Service
}

func (cl *contextLogger) TraceWith() LogEvent     { return cl.eventAt(sevTrace) }
func (cl *contextLogger) DebugWith() LogEvent     { return cl.eventAt(sevDebug) }
func (cl *contextLogger) InfoWith() LogEvent      { return cl.eventAt(sevInfo) }
func (cl *contextLogger) WarnWith() LogEvent      { return cl.eventAt(sevWarn) }
func (cl *contextLogger) ErrorWith() LogEvent     { return cl.eventAt(sevError) }
func (cl *contextLogger) CriticalWith() LogEvent  { return cl.eventAt(sevCritical) }
func (cl *contextLogger) ExceptionWith() LogEvent { return cl.eventAt(sevException) }

func (cl *contextLogger) eventAt(sv severity) LogEvent {
	if cl.logger == nil || cl.parent == nil || !cl.parent.isInitialized.Load() {
		return newLogEvent(nil)
	}
	return newTrackedContextLogEvent(cl, sv)
}

func (cl *contextLogger) With() LogContext {
	if cl.logger == nil || cl.parent == nil || !cl.parent.isInitialized.Load() {
		return &noopLogContext{}
	}

	cl.parent.mu.RLock()
	defer cl.parent.mu.RUnlock()

	if !cl.parent.isInitialized.Load() {
		return &noopLogContext{}
	}

	return &logContext{
		context: cl.logger.With(),
		service: cl.parent,
	}
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Strs(key string, vals []string) LogContext {
	c.context = c.context.Strs(key, vals)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Int64(key string, val int64) LogContext {
	c.context = c.context.Int64(key, val)
	return c
}

func (c *logContext) Uint64(key string, val uint64) LogContext {
	c.context = c.context.Uint64(key, val)
	return c
}

func (c *logContext) Float64(key string, val float64) LogContext {
	c.context = c.context.Float64(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Time(key string, val time.Time) LogContext {
	c.context = c.context.Time(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	return &contextLogger{
		logger: &logger,
		parent: c.service,
	}
}

// noopLogContext is returned when the service is not usable.
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext            { return n }
func (n *noopLogContext) Strs(key string, vals []string) LogContext { return n }
func (n *noopLogContext) Int(key string, val int) LogContext        { return n }
func (n *noopLogContext) Int64(key string, val int64) LogContext    { return n }
func (n *noopLogContext) Uint64(key string, val uint64) LogContext  { return n }
func (n *noopLogContext) Float64(key string, val float64) LogContext {
	return n
}
func (n *noopLogContext) Bool(key string, val bool) LogContext      { return n }
func (n *noopLogContext) Time(key string, val time.Time) LogContext { return n }
func (n *noopLogContext) Err(err error) LogContext                  { return n }
func (n *noopLogContext) Interface(key string, val interface{}) LogContext {
	return n
}
func (n *noopLogContext) Logger() Logger { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) TraceWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) DebugWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) InfoWith() LogEvent      { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent      { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) CriticalWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) ExceptionWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext        { return &noopLogContext{} }
