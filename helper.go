package logkit

import (
	stderrs "errors"
	"strings"

	"github.com/rs/zerolog"
)

// parseLevel parses a minimum-severity string into a zerolog.Level. It
// accepts the facade's aliases on top of zerolog's own names.
func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel, nil
	case "critical":
		return zerolog.FatalLevel, nil
	case "exception":
		return zerolog.ErrorLevel, nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// causer is the pkg/errors cause contract.
type causer interface {
	Cause() error
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - root: the innermost error message
//
// The traversal prefers pkg/errors Cause() links and falls back to stdlib
// errors.Unwrap. It guards against excessive depth and repeated messages
// to avoid cycles.
func buildErrorChain(err error) (chain []string, root string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		// pkg/errors layers its stack and message wrappers with identical
		// messages; consecutive duplicates are skipped, non-consecutive
		// repeats indicate a cycle.
		msg := err.Error()
		if len(chain) == 0 || chain[len(chain)-1] != msg {
			if seen[msg] {
				break
			}
			seen[msg] = true
			chain = append(chain, msg)
		}

		if c, ok := err.(causer); ok {
			if next := c.Cause(); next != nil && next != err {
				err = next
				continue
			}
		}
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}

// eventFor creates a zerolog event at the given severity on the provided
// logger. Critical uses WithLevel so it never exits the process; exception
// carries a stack.
func eventFor(logger *zerolog.Logger, sv severity) *zerolog.Event {
	ev := logger.WithLevel(sv.zerologLevel())
	if sv == sevException {
		ev = ev.Stack()
	}
	return ev
}

// logEventBuilder creates a tracked log event for the given severity.
// The active-operations counter and wait group keep the logger alive for
// the duration of the logging operation so Close() can drain in-flight
// events. If the severity is disabled, a no-op LogEvent is returned.
func logEventBuilder(s *Service, sv severity) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}

	s.activeOps.Add(1)
	s.wg.Add(1)

	// Read lock prevents Close() from tearing down sinks mid-build.
	s.mu.RLock()

	if !s.isInitialized.Load() {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	logger := s.logger.Load()
	if logger == nil {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	if logger.GetLevel() > sv.zerologLevel() {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	event := eventFor(logger, sv)
	s.mu.RUnlock()

	return newTrackedLogEvent(event, s)
}
