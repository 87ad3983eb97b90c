package logkit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// newRollingFile builds a rotating, retained, compressed file sink.
func (s *Service) newRollingFile(name string, retentionDays int) *lumberjack.Logger {
	maxBackups := s.cfg.MaxBackups
	if maxBackups < 0 {
		// Keep-everything sentinel; lumberjack spells unlimited as zero.
		maxBackups = 0
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(s.cfg.LogDir, name),
		MaxSize:    s.cfg.MaxSizeMB,
		MaxAge:     retentionDays,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// buildWriters assembles the sinks in registration order: console, main
// rotating file, error-only file, remote. All file and console writers are
// failsafe: a broken sink must never surface an error to the logging call.
func (s *Service) buildWriters(retentionDays int) zerolog.LevelWriter {
	var writers []io.Writer

	if s.cfg.ConsoleLogging {
		writers = append(writers, s.consoleWriter())
	}
	if s.cfg.FileLogging {
		s.fileWriter = s.newRollingFile(s.cfg.FileName+logFileExt, retentionDays)
		writers = append(writers, failsafeWriter{s.fileWriter})

		s.errFileWriter = s.newRollingFile(s.cfg.FileName+errorFileSuffix+logFileExt, retentionDays)
		writers = append(writers, &minLevelWriter{
			w:   failsafeWriter{s.errFileWriter},
			min: zerolog.ErrorLevel,
		})
	}
	if s.remote != nil {
		writers = append(writers, s.remote)
	}

	return zerolog.MultiLevelWriter(writers...)
}

// consoleWriter returns the console sink: plain JSON in production,
// colorized human-readable output otherwise. Writes are serialized so
// concurrent goroutines do not interleave output.
func (s *Service) consoleWriter() io.Writer {
	if s.cfg.Production {
		return zerolog.SyncWriter(os.Stdout)
	}
	cw := zerolog.ConsoleWriter{
		Out:         os.Stdout,
		TimeFormat:  consoleTimeFormat,
		FormatLevel: s.formatConsoleLevel,
	}
	return zerolog.SyncWriter(cw)
}

// formatConsoleLevel renders the level label, applying the color and icon
// of registered levels. Custom levels arrive as their numeric rank and are
// resolved through the registry.
func (s *Service) formatConsoleLevel(i interface{}) string {
	name, _ := i.(string)
	if name == emptyString {
		return "???"
	}
	lvl, ok := s.levels.lookup(name)
	if !ok {
		if rank, err := strconv.Atoi(name); err == nil {
			lvl, ok = s.levels.lookupByRank(int8(rank))
		}
	}
	if !ok {
		return strings.ToUpper(fmt.Sprintf("%-8s", name))
	}
	label := strings.ToUpper(fmt.Sprintf("%-8s", lvl.Name))
	if lvl.Icon != emptyString {
		label = lvl.Icon + " " + label
	}
	return colorize(label, lvl.Color)
}

// minLevelWriter filters records below a minimum severity. Records emitted
// without a level are dropped.
type minLevelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (m *minLevelWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (m *minLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < m.min {
		return len(p), nil
	}
	return m.w.Write(p)
}

// failsafeWriter swallows write failures. A full disk or closed file must
// not crash the logging caller.
type failsafeWriter struct {
	w io.Writer
}

func (f failsafeWriter) Write(p []byte) (int, error) {
	if _, err := f.w.Write(p); err != nil {
		return len(p), nil
	}
	return len(p), nil
}
