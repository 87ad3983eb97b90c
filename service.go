package logkit

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/atomic"
)

var stackMarshalerOnce sync.Once

// Service is the logging facade. Configuration happens once at Initialize;
// the sink set and worker pool are owned by the instance and are not safe
// to mutate afterward.
type Service struct {
	cfg    *Config
	levels *levelRegistry
	remote *remoteSink

	// base carries no request_id; For() derives request-scoped children
	// from it. logger is base stamped with the default request_id.
	base   atomic.Pointer[zerolog.Logger]
	logger atomic.Pointer[zerolog.Logger]

	isInitialized atomic.Bool
	mu            sync.RWMutex
	wg            sync.WaitGroup
	activeOps     atomic.Int32

	fileWriter    io.WriteCloser
	errFileWriter io.WriteCloser
}

// New returns an unstarted Service for the given configuration.
func New(cfg Config) *Service {
	return &Service{cfg: &cfg}
}

// Initialize validates the configuration, creates the log directory,
// registers the sinks and starts the remote worker pool. Safe to call
// more than once; subsequent calls are no-ops.
func (s *Service) Initialize() error {
	if s == nil {
		return errors.New(errMsgNilService)
	}
	if s.isInitialized.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isInitialized.Load() {
		return nil
	}

	cfg := s.cfg.withDefaults()
	s.cfg = &cfg

	if err := validateConfig(s.cfg); err != nil {
		return err
	}

	level, err := parseLevel(s.cfg.Level)
	if err != nil {
		return errors.Wrap(err, errMsgBadLevel)
	}

	retentionDays, err := parseRetention(s.cfg.Retention)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.cfg.LogDir, 0o755); err != nil {
		return errors.Wrap(err, errMsgCreateDir)
	}

	stackMarshalerOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	})

	s.levels = newLevelRegistry()

	if s.cfg.RemoteURL != emptyString {
		s.remote = newRemoteSink(s.cfg.RemoteURL, s.cfg.MaxWorkers, s.cfg.RemoteTimeout, s.WarnWith, s.text)
	}

	mw := s.buildWriters(retentionDays)

	base := zerolog.New(mw).Level(level).With().
		Timestamp().
		CallerWithSkipFrameCount(s.cfg.SkipFrameCount).
		Logger()
	s.base.Store(&base)

	stamped := base.With().Str(RequestIDField, DefaultRequestID).Logger()
	s.logger.Store(&stamped)

	s.isInitialized.Store(true)
	return nil
}

// Close drains in-flight events (bounded by the shutdown timeout), stops
// the remote worker pool and closes the file sinks. Safe to call multiple
// times and on a nil or uninitialized service.
func (s *Service) Close() error {
	if s == nil || !s.isInitialized.Load() {
		return nil
	}

	// The remote pool is drained first, while the facade still accepts
	// events: delivery-failure warnings emitted by the workers must reach
	// the local sinks.
	if s.remote != nil {
		s.remote.Close()
	}

	s.mu.Lock()
	if !s.isInitialized.Load() {
		s.mu.Unlock()
		return nil
	}
	s.isInitialized.Store(false)
	s.mu.Unlock()

	s.drain()

	s.remote = nil
	if s.fileWriter != nil {
		_ = s.fileWriter.Close()
		s.fileWriter = nil
	}
	if s.errFileWriter != nil {
		_ = s.errFileWriter.Close()
		s.errFileWriter = nil
	}

	s.logger.Store(nil)
	s.base.Store(nil)
	return nil
}

// drain waits for in-flight events up to the configured timeout, emitting
// a warning when events are still pending.
func (s *Service) drain() {
	timeout := time.Duration(s.cfg.ShutdownTimeoutMS) * time.Millisecond

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		if s.cfg.ShutdownTimeoutWarning {
			if logger := s.logger.Load(); logger != nil {
				logger.Warn().
					Int32("active_operations", s.activeOps.Load()).
					Msg(s.text(msgShutdownTimeout))
			}
		}
	}
}

// ActiveOperations reports the number of in-flight logging operations.
func (s *Service) ActiveOperations() int32 {
	if s == nil {
		return 0
	}
	return s.activeOps.Load()
}

// Severity methods

func (s *Service) TraceWith() LogEvent     { return logEventBuilder(s, sevTrace) }
func (s *Service) DebugWith() LogEvent     { return logEventBuilder(s, sevDebug) }
func (s *Service) InfoWith() LogEvent      { return logEventBuilder(s, sevInfo) }
func (s *Service) WarnWith() LogEvent      { return logEventBuilder(s, sevWarn) }
func (s *Service) ErrorWith() LogEvent     { return logEventBuilder(s, sevError) }
func (s *Service) CriticalWith() LogEvent  { return logEventBuilder(s, sevCritical) }
func (s *Service) ExceptionWith() LogEvent { return logEventBuilder(s, sevException) }

// With returns a LogContext for creating a child logger with
// pre-populated fields.
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}
	logger := s.logger.Load()
	if logger == nil {
		return &noopLogContext{}
	}
	return &logContext{
		context: logger.With(),
		service: s,
	}
}

// For returns a logger scoped to the chain carried by ctx: every record it
// emits includes the chain's request id, or the default when none is set.
func (s *Service) For(ctx context.Context) Logger {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogger{}
	}
	base := s.base.Load()
	if base == nil {
		return &noopLogger{}
	}
	child := base.With().Str(RequestIDField, RequestIDFrom(ctx)).Logger()
	return &contextLogger{logger: &child, parent: s}
}

// AddCustomLevel registers a new severity with the given rank (on the
// engine's scale), console color and icon. Registering an existing name is
// a no-op recorded at debug severity; it never fails.
func (s *Service) AddCustomLevel(name string, rank int8, color, icon string) {
	if s == nil || !s.isInitialized.Load() || name == emptyString {
		return
	}
	if !s.levels.register(Level{Name: name, Rank: rank, Color: color, Icon: icon}) {
		s.DebugWith().Str("level", name).Msg(s.text(msgLevelExists))
		return
	}
	s.DebugWith().Str("level", name).Int("rank", int(rank)).Msg(s.text(msgLevelAdded))
}

// LevelWith returns an event at a registered level's rank, carrying the
// level's name and icon. Unknown names fall back to info with a debug
// note.
func (s *Service) LevelWith(name string) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}

	lvl, ok := s.levels.lookup(name)
	if !ok {
		s.DebugWith().Str("level", name).Msg(s.text(msgLevelUnknown))
		return logEventBuilder(s, sevInfo).Str("level_name", name)
	}

	event := s.rankedEvent(zerolog.Level(lvl.Rank))
	event.Str("level_name", lvl.Name)
	if lvl.Icon != emptyString {
		event.Str("icon", lvl.Icon)
	}
	return event
}

// rankedEvent builds a tracked event at an arbitrary engine rank, used for
// custom levels.
func (s *Service) rankedEvent(rank zerolog.Level) LogEvent {
	s.activeOps.Add(1)
	s.wg.Add(1)

	s.mu.RLock()

	if !s.isInitialized.Load() {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	logger := s.logger.Load()
	if logger == nil || logger.GetLevel() > rank {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	event := logger.WithLevel(rank)
	s.mu.RUnlock()

	return newTrackedLogEvent(event, s)
}
