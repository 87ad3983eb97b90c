package logkit

// Logger is the fixed severity surface of the facade. The severity set is
// closed in practice, so an explicit interface replaces open-ended method
// forwarding to the underlying engine.
type Logger interface {
	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	// CriticalWith logs at the highest rank without terminating the
	// process.
	CriticalWith() LogEvent
	// ExceptionWith logs at error rank with a captured stack trace.
	ExceptionWith() LogEvent

	// With creates a child logger with pre-populated fields included in
	// all subsequent records.
	// Example: reqLogger := logger.With().Str("job_id", id).Logger()
	With() LogContext
}
