package replay

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixtureBasicSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "basic_session.json"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if len(f.Events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(f.Events))
	}
	if len(f.Expected) == 0 {
		t.Fatal("fixture should carry expectations")
	}

	ev := f.Events[0].ToRawEvent()
	if err := ev.Validate(); err != nil {
		t.Fatalf("fixture event should be valid: %v", err)
	}
	word := f.Events[0].ToWordMetadata()
	if word.ID != f.Events[0].WordID {
		t.Errorf("word id = %q, want %q", word.ID, f.Events[0].WordID)
	}
}

func TestLoadFixtureRejectsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"events":[{"session_id":"s1","ts_ms":100}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected an error for an event missing user_id")
	}
}

func TestLoadFixtureRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
