package logkit

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// newDiscardService builds an initialized Service writing to io.Discard.
func newDiscardService() *Service {
	cfg := DefaultConfig("bench").withDefaults()
	cfg.ConsoleLogging = false
	s := New(cfg)
	s.cfg = &cfg
	s.levels = newLevelRegistry()

	base := zerolog.New(io.Discard).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	s.base.Store(&base)
	stamped := base.With().Str(RequestIDField, DefaultRequestID).Logger()
	s.logger.Store(&stamped)
	s.isInitialized.Store(true)
	return s
}

func BenchmarkInfoWith(b *testing.B) {
	svc := newDiscardService()
	defer svc.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.InfoWith().Str("key", "value").Int("n", i).Msg("benchmark message")
	}
}

func BenchmarkInfoWith_Parallel(b *testing.B) {
	svc := newDiscardService()
	defer svc.Close()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			svc.InfoWith().Str("key", "value").Msg("benchmark message")
		}
	})
}

func BenchmarkDisabledLevel(b *testing.B) {
	svc := newDiscardService()
	defer svc.Close()

	lg := svc.logger.Load().Level(zerolog.ErrorLevel)
	svc.logger.Store(&lg)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.DebugWith().Str("key", "value").Msg("filtered")
	}
}

func BenchmarkFor(b *testing.B) {
	svc := newDiscardService()
	defer svc.Close()

	ctx := WithRequestID(context.Background(), "bench-req")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.For(ctx).InfoWith().Msg("scoped message")
	}
}

func BenchmarkInstrument(b *testing.B) {
	svc := newDiscardService()
	defer svc.Close()

	fn := Instrument(svc, "bench", func(ctx context.Context, args ...any) (int, error) {
		return 1, nil
	})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fn(ctx)
	}
}
