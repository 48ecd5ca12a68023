package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	cfg := Default()
	if cfg.Feature.Dimension != 22 {
		t.Errorf("feature.dimension = %d, want 22", cfg.Feature.Dimension)
	}
	if cfg.Reward.HorizonMs != 24*60*60*1000 {
		t.Errorf("reward.horizon_ms = %d, want 24h", cfg.Reward.HorizonMs)
	}
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	body := "[linucb]\nalpha = 2.5\n\n[lock]\ndefault_timeout_ms = 5000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LinUCB.Alpha != 2.5 {
		t.Errorf("alpha = %v, want 2.5 from file", cfg.LinUCB.Alpha)
	}
	if cfg.Lock.DefaultTimeoutMs != 5000 {
		t.Errorf("lock timeout = %d, want 5000 from file", cfg.Lock.DefaultTimeoutMs)
	}
	if cfg.LinUCB.Lambda != 0.1 {
		t.Errorf("lambda = %v, want default 0.1 untouched", cfg.LinUCB.Lambda)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Feature.Dimension != 22 {
		t.Errorf("expected defaults, got dimension %d", cfg.Feature.Dimension)
	}
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte("[store]\ndb_path = \"from-file.db\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENGINE_DB_PATH", "from-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.DBPath != "from-env.db" {
		t.Errorf("db path = %q, want env override", cfg.Store.DBPath)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.Mastery.Weights.SRS = 0.9
	if err := cfg.Validate(); err == nil {
		t.Fatal("weights not summing to 1 must be rejected")
	}
}
