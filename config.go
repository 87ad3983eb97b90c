package logkit

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Language selects the catalog used for the facade's built-in message
// strings.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// Config holds the construction parameters of a Service. Configuration
// happens once, at Initialize; it is not designed to be changed afterward.
type Config struct {
	// FileName is the log file prefix, e.g. "myapp" produces
	// logs/myapp.log and logs/myapp_error.log.
	FileName string `validate:"required"`
	// LogDir is created if absent. Failure to create it is fatal.
	LogDir string `validate:"required"`
	// Level is the minimum severity: trace, debug, info, warn, error.
	Level string `validate:"required"`
	// MaxSizeMB rotates a file once it exceeds this size.
	MaxSizeMB int `validate:"min=1"`
	// Retention is a duration string such as "9 days" governing how long
	// rotated files are kept.
	Retention string
	// MaxBackups limits the number of rotated files kept around. Zero
	// picks the default (10); -1 keeps every rotated file.
	MaxBackups int `validate:"min=-1"`
	// RemoteURL enables the remote sink when non-empty. Only records of
	// error severity and above are shipped.
	RemoteURL string `validate:"omitempty,url"`
	// MaxWorkers sizes the remote sink's worker pool.
	MaxWorkers int `validate:"min=1"`
	// RemoteTimeout bounds each remote POST. It applies inside the
	// background worker, never on the calling goroutine.
	RemoteTimeout time.Duration
	// Production disables the colorized console writer and the reflective
	// Dump diagnostics.
	Production bool
	// Language selects built-in message strings.
	Language Language `validate:"oneof=en zh"`

	ConsoleLogging bool
	FileLogging    bool

	// SkipFrameCount adjusts caller reporting for wrappers above the
	// facade. Zero picks the default (3); the facade itself consumes
	// frames, so a zero skip is never meaningful.
	SkipFrameCount int `validate:"min=0,max=10"`

	// ShutdownTimeoutMS bounds how long Close waits for in-flight events.
	ShutdownTimeoutMS      int `validate:"min=0"`
	ShutdownTimeoutWarning bool
}

// DefaultConfig returns a Config with the documented defaults applied for
// the given file name prefix.
func DefaultConfig(fileName string) Config {
	return Config{
		FileName:               fileName,
		LogDir:                 "logs",
		Level:                  "debug",
		MaxSizeMB:              36,
		Retention:              "9 days",
		MaxBackups:             10,
		MaxWorkers:             5,
		RemoteTimeout:          6 * time.Second,
		Language:               LanguageEnglish,
		ConsoleLogging:         true,
		FileLogging:            true,
		SkipFrameCount:         3,
		ShutdownTimeoutMS:      2000,
		ShutdownTimeoutWarning: true,
	}
}

// withDefaults fills zero-valued optional fields so that a sparse literal
// Config behaves like DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig(c.FileName)
	if c.LogDir == emptyString {
		c.LogDir = d.LogDir
	}
	if c.Level == emptyString {
		c.Level = d.Level
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = d.MaxSizeMB
	}
	if c.Retention == emptyString {
		c.Retention = d.Retention
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxWorkers == 0 {
		c.MaxWorkers = d.MaxWorkers
	}
	if c.RemoteTimeout == 0 {
		c.RemoteTimeout = d.RemoteTimeout
	}
	if c.Language == emptyString {
		c.Language = d.Language
	}
	if c.SkipFrameCount == 0 {
		c.SkipFrameCount = d.SkipFrameCount
	}
	if c.ShutdownTimeoutMS == 0 {
		c.ShutdownTimeoutMS = d.ShutdownTimeoutMS
	}
	if !c.ConsoleLogging && !c.FileLogging {
		c.ConsoleLogging = true
		c.FileLogging = true
	}
	return c
}

// parseRetention converts a retention policy string such as "9 days" or
// "48 hours" into whole days for the rotation backend. Hours are rounded
// up to the next day.
func parseRetention(s string) (int, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return 0, errors.Errorf("%s: %q", errMsgBadRetention, s)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, errors.Errorf("%s: %q", errMsgBadRetention, s)
	}
	switch fields[1] {
	case "day", "days":
		return n, nil
	case "week", "weeks":
		return n * 7, nil
	case "hour", "hours":
		return (n + 23) / 24, nil
	default:
		return 0, errors.Errorf("%s: %q", errMsgBadRetention, s)
	}
}
