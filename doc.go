// Package logkit provides a thin, concurrency-safe application logging
// facade over rs/zerolog with multi-destination output and request
// correlation.
//
// Key features
//   - Structured logging through a fixed severity interface
//     (trace/debug/info/warn/error/critical/exception)
//   - Request-id propagation via context.Context; every record carries a
//     request_id field, defaulting to "unknown"
//   - Console sink, rotating/compressed main file sink and an error-only
//     file sink (rotation via lumberjack)
//   - Optional remote HTTP sink shipping error-and-above records from a
//     fixed worker pool; failures are demoted to local warnings and never
//     reach the caller
//   - Call instrumentation wrappers logging entry, arguments, result,
//     duration and failures of arbitrary functions
//   - Custom severity levels with name, rank, color and icon
//   - Built-in message strings in English and Chinese
//
// Typical usage
//
//	svc := logkit.New(logkit.DefaultConfig("myapp"))
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	ctx := logkit.WithRequestID(context.Background(), logkit.NewRequestID())
//	svc.For(ctx).InfoWith().Str("user_id", id).Msg("processed")
package logkit
