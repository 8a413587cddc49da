package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type StakeTier struct {
	ID        string `json:"id"`
	BaseStake int64  `json:"base_stake"`
}

type GameConfig struct {
	DefaultTier string      `json:"default_tier"`
	Tiers       []StakeTier `json:"tiers"`
	// RoundAdvanceDelaySeconds is how long the round-over screen lingers
	// before the match advances into the next tax stage on its own.
	RoundAdvanceDelaySeconds int `json:"round_advance_delay_seconds"`
}

const defaultRoundAdvanceDelaySeconds = 15

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBaseStake returns the base stake for a given tier ID, or the default
// if not found.
func GetBaseStake(tierID string) int64 {
	if cfg == nil {
		return 100 // Safe default
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.BaseStake
		}
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.BaseStake
		}
	}

	return 100
}

// GetRoundAdvanceDelaySeconds returns the configured round-over delay.
func GetRoundAdvanceDelaySeconds() int {
	if cfg == nil || cfg.RoundAdvanceDelaySeconds <= 0 {
		return defaultRoundAdvanceDelaySeconds
	}
	return cfg.RoundAdvanceDelaySeconds
}
