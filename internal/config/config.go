// Package config loads the Engine's typed configuration from a TOML file,
// falling back to documented defaults for anything the file omits.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// #region feature
type FeatureConfig struct {
	Dimension int `toml:"dimension"`
}

// #endregion feature

// #region linucb
type LinUCBConfig struct {
	Alpha  float64 `toml:"alpha"`
	Lambda float64 `toml:"lambda"`
}

// #endregion linucb

// #region ensemble
type EnsembleConfig struct {
	RewardHistorySize  int     `toml:"reward_history_size"`
	LearningRate       float64 `toml:"learning_rate"`
	ColdStartThreshold int     `toml:"cold_start_threshold"`
}

// #endregion ensemble

// #region fatigue
type FatigueConfig struct {
	K            float64 `toml:"k"`
	SessionGapMs int64   `toml:"session_gap_ms"`
	LongBreakMs  int64   `toml:"long_break_ms"`
}

// #endregion fatigue

// #region attention
type AttentionConfig struct {
	Smoothing float64 `toml:"smoothing"`
}

// #endregion attention

// #region mastery
type MasteryWeights struct {
	SRS    float64 `toml:"srs"`
	ActR   float64 `toml:"actr"`
	Recent float64 `toml:"recent"`
}

type ActRConfig struct {
	Decay float64 `toml:"decay"`
	Tau   float64 `toml:"tau"`
	S     float64 `toml:"s"`
}

type MasteryConfig struct {
	Weights   MasteryWeights `toml:"weights"`
	Threshold float64        `toml:"threshold"`
	ActR      ActRConfig     `toml:"act_r"`
}

// #endregion mastery

// #region lock
type LockConfig struct {
	DefaultTimeoutMs int64 `toml:"default_timeout_ms"`
}

// #endregion lock

// #region reward
type RewardConfig struct {
	HorizonMs       int64 `toml:"horizon_ms"`
	MaxAttempts     int   `toml:"max_attempts"`
	SweepIntervalMs int64 `toml:"sweep_interval_ms"`
}

// #endregion reward

// #region store
type StoreConfig struct {
	DBPath    string `toml:"db_path"`
	CacheAddr string `toml:"cache_addr"` // optional; empty = no cache
}

// #endregion store

// #region config
// Config is the Engine's fully resolved, typed configuration.
type Config struct {
	Feature   FeatureConfig  `toml:"feature"`
	LinUCB    LinUCBConfig   `toml:"linucb"`
	Ensemble  EnsembleConfig `toml:"ensemble"`
	Fatigue   FatigueConfig  `toml:"fatigue"`
	Attention AttentionConfig `toml:"attention"`
	Mastery   MasteryConfig  `toml:"mastery"`
	Lock      LockConfig     `toml:"lock"`
	Reward    RewardConfig   `toml:"reward"`
	Store     StoreConfig    `toml:"store"`
}

// #endregion config

// #region defaults
// Default returns the documented defaults from the configuration reference.
func Default() Config {
	return Config{
		Feature: FeatureConfig{Dimension: 22},
		LinUCB:  LinUCBConfig{Alpha: 1.0, Lambda: 0.1},
		Ensemble: EnsembleConfig{
			RewardHistorySize:  200,
			LearningRate:       0.1,
			ColdStartThreshold: 20,
		},
		Fatigue: FatigueConfig{
			K:            0.01,
			SessionGapMs: 300_000,
			LongBreakMs:  3 * 60 * 60 * 1000, // 3h, configurable
		},
		Attention: AttentionConfig{Smoothing: 0.7},
		Mastery: MasteryConfig{
			Weights:   MasteryWeights{SRS: 0.3, ActR: 0.5, Recent: 0.2},
			Threshold: 0.7,
			ActR:      ActRConfig{Decay: 0.5, Tau: -0.5, S: 0.3},
		},
		Lock:   LockConfig{DefaultTimeoutMs: 30_000},
		Reward: RewardConfig{HorizonMs: 24 * 60 * 60 * 1000, MaxAttempts: 3, SweepIntervalMs: 60_000},
		Store:  StoreConfig{DBPath: "engine.db"},
	}
}

// #endregion defaults

// #region load
// Load reads a TOML file at path, overlaying its values onto Default().
// A missing file is not an error: defaults are returned as-is. The two
// store handles may also come from the environment (ENGINE_DB_PATH,
// ENGINE_CACHE_ADDR), which wins over the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}
	if v := os.Getenv("ENGINE_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("ENGINE_CACHE_ADDR"); v != "" {
		cfg.Store.CacheAddr = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// #endregion load

// #region validate
// Validate checks invariants that must hold for the engine to run safely.
func (c Config) Validate() error {
	if c.Feature.Dimension <= 0 {
		return fmt.Errorf("feature.dimension must be positive, got %d", c.Feature.Dimension)
	}
	sum := c.Mastery.Weights.SRS + c.Mastery.Weights.ActR + c.Mastery.Weights.Recent
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("mastery.weights must sum to 1, got %.4f", sum)
	}
	if c.Reward.MaxAttempts <= 0 {
		return fmt.Errorf("reward.max_attempts must be positive, got %d", c.Reward.MaxAttempts)
	}
	return nil
}

// #endregion validate
