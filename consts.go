package logkit

const (
	// DefaultRequestID is attached to records emitted outside any
	// request-scoped chain.
	DefaultRequestID = "unknown"

	// RequestIDField is the record field carrying the correlation id.
	RequestIDField = "request_id"

	emptyString = ""

	errorFileSuffix = "_error"
	logFileExt      = ".log"
)

const (
	errMsgNilService    = "logger service is nil"
	errMsgConfigInvalid = "logging configuration is invalid"
	errMsgCreateDir     = "failed to create logs directory"
	errMsgBadRetention  = "invalid retention policy"
	errMsgBadLevel      = "setting logging level"
)
