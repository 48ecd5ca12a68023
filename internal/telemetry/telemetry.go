// Package telemetry is the Engine's one-way structured event sink.
//
// The core never reaches into a storage service to log; it calls Sink.Emit
// with a structured Event. Anything that persists those events (SQLite,
// stdout, a metrics pipe) is an adapter living outside this package's
// dependency direction — adapters depend on telemetry, telemetry never
// depends on them.
package telemetry

import (
	"log"
	"time"
)

// #region event
// Event is a single structured telemetry record.
type Event struct {
	Kind      string // e.g. "decision", "reward_applied", "ModelRestoreDegraded"
	UserID    string
	Fields    map[string]interface{}
	CreatedAt time.Time
}

// #endregion event

// #region sink
// Sink receives Events. Implementations must not block the caller for long;
// the core treats Emit as fire-and-forget.
type Sink interface {
	Emit(Event)
}

// #endregion sink

// #region stdlog-sink
// StdlogSink emits events via the standard library logger, one
// prefix-tagged line per event.
type StdlogSink struct {
	Prefix string
}

// NewStdlogSink creates a Sink that writes through log.Printf.
func NewStdlogSink(prefix string) *StdlogSink {
	return &StdlogSink{Prefix: prefix}
}

func (s *StdlogSink) Emit(e Event) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	log.Printf("%s kind=%s user=%s fields=%v", s.Prefix, e.Kind, e.UserID, e.Fields)
}

// #endregion stdlog-sink

// #region multi-sink
// MultiSink fans a single Emit out to several sinks, e.g. stdout plus a
// persistence adapter. A panic in one sink does not affect the others.
type MultiSink struct {
	Sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) Emit(e Event) {
	for _, s := range m.Sinks {
		func() {
			defer func() { recover() }()
			s.Emit(e)
		}()
	}
}

// #endregion multi-sink

// #region noop
// Noop discards every event. Useful as a default in tests.
type Noop struct{}

func (Noop) Emit(Event) {}

// #endregion noop
