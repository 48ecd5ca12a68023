package store

import (
	"encoding/json"
	"time"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

// #region telemetry-sink
// TelemetrySink persists telemetry events to the telemetry_log table. It
// depends on telemetry (for the Event/Sink types); telemetry never
// depends on store — the one-way direction the design notes require.
type TelemetrySink struct {
	store *Store
}

// NewTelemetrySink wraps a Store as a telemetry.Sink.
func NewTelemetrySink(s *Store) *TelemetrySink {
	return &TelemetrySink{store: s}
}

func (t *TelemetrySink) Emit(e telemetry.Event) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	fieldsJSON, err := json.Marshal(e.Fields)
	if err != nil {
		fieldsJSON = []byte("{}")
	}
	_, _ = t.store.db.Exec(
		`INSERT INTO telemetry_log (kind, user_id, fields_json, created_at_ms) VALUES (?, ?, ?, ?)`,
		e.Kind, e.UserID, string(fieldsJSON), e.CreatedAt.UnixMilli(),
	)
}

// #endregion telemetry-sink
