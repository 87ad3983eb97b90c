package logkit

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// severity is the facade's closed set of built-in levels. Critical and
// exception share zerolog ranks with fatal and error but are emitted via
// WithLevel, so logging critical never terminates the process.
type severity int8

const (
	sevTrace severity = iota
	sevDebug
	sevInfo
	sevWarn
	sevError
	sevCritical
	sevException
)

func (sv severity) zerologLevel() zerolog.Level {
	switch sv {
	case sevTrace:
		return zerolog.TraceLevel
	case sevDebug:
		return zerolog.DebugLevel
	case sevInfo:
		return zerolog.InfoLevel
	case sevWarn:
		return zerolog.WarnLevel
	case sevError, sevException:
		return zerolog.ErrorLevel
	case sevCritical:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}

// Level describes a registered severity: display name, numeric rank on the
// zerolog scale, console color and icon.
type Level struct {
	Name  string
	Rank  int8
	Color string
	Icon  string
}

// levelRegistry holds built-in and custom levels. Registrations happen at
// configuration time and from AddCustomLevel; lookups happen on the
// console formatting path, hence the RWMutex.
type levelRegistry struct {
	mu     sync.RWMutex
	byName map[string]Level
	byRank map[int8]Level
}

func newLevelRegistry() *levelRegistry {
	r := &levelRegistry{
		byName: make(map[string]Level),
		byRank: make(map[int8]Level),
	}
	// Built-ins seed first, so rank lookups prefer them over custom levels
	// registered at the same rank.
	for _, l := range []Level{
		{Name: "trace", Rank: int8(zerolog.TraceLevel)},
		{Name: "debug", Rank: int8(zerolog.DebugLevel)},
		{Name: "info", Rank: int8(zerolog.InfoLevel)},
		{Name: "warn", Rank: int8(zerolog.WarnLevel)},
		{Name: "error", Rank: int8(zerolog.ErrorLevel)},
		{Name: "critical", Rank: int8(zerolog.FatalLevel)},
		{Name: "exception", Rank: int8(zerolog.ErrorLevel)},
	} {
		r.byName[l.Name] = l
		if _, ok := r.byRank[l.Rank]; !ok {
			r.byRank[l.Rank] = l
		}
	}
	return r
}

// register adds a level if absent and reports whether it was added. The
// first level registered at a rank owns that rank's console label.
func (r *levelRegistry) register(l Level) bool {
	key := strings.ToLower(l.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key]; ok {
		return false
	}
	r.byName[key] = l
	if _, ok := r.byRank[l.Rank]; !ok {
		r.byRank[l.Rank] = l
	}
	return true
}

func (r *levelRegistry) lookup(name string) (Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[strings.ToLower(name)]
	return l, ok
}

// lookupByRank resolves a level by numeric rank. Custom levels reach the
// console writer as their rank because the engine has no name for them.
func (r *levelRegistry) lookupByRank(rank int8) (Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byRank[rank]
	return l, ok
}

// ansiColors maps the color names accepted by AddCustomLevel to terminal
// escape sequences used by the console writer.
var ansiColors = map[string]string{
	"black":   "\x1b[30m",
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
}

const ansiReset = "\x1b[0m"

// colorize wraps s in the escape codes for a registered color name. An
// unknown color leaves s untouched.
func colorize(s, color string) string {
	esc, ok := ansiColors[strings.ToLower(color)]
	if !ok {
		return s
	}
	return esc + s + ansiReset
}
