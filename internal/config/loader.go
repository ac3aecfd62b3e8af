package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// load fills dst from the first config found.
// Search order: customPath -> ~/.topdown/<name>.yaml -> ./configs/<name>.yaml -> embedded default.
// Files are decoded over the defaults already in dst, so they may be partial.
func load(name, customPath string, dst any) error {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, dst); err != nil {
			return &Error{Field: customPath, Msg: err.Error()}
		}
		return nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(name + ".yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, dst); err != nil {
				return &Error{Field: userCfgPath, Msg: err.Error()}
			}
			return nil
		}
	}

	// Try local configs directory
	local := filepath.Join("configs", name+".yaml")
	if data, err := os.ReadFile(local); err == nil {
		if err := yaml.Unmarshal(data, dst); err != nil {
			return &Error{Field: local, Msg: err.Error()}
		}
		return nil
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(GetDefaultYAML(name), dst); err != nil {
		return fmt.Errorf("config: embedded %s defaults: %w", name, err)
	}
	return nil
}

// LoadEngine loads and validates the engine configuration.
func LoadEngine(customPath string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := load("engine", customPath, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadTopDown loads the top-down scene configuration.
func LoadTopDown(customPath string) (TopDownConfig, error) {
	cfg := DefaultTopDownConfig()
	if err := load("topdown", customPath, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// UserDir returns ~/.topdown, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".topdown")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, filename)
}

// ApplyTopDownPreset modifies the config based on a difficulty preset.
func ApplyTopDownPreset(cfg *TopDownConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust pacing based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Pickups.Lifetime += cfg.Pickups.Lifetime / 2
	case DifficultyHard:
		cfg.Pickups.Lifetime -= cfg.Pickups.Lifetime / 3
		cfg.Pickups.Max = max(1, cfg.Pickups.Max/2)
	}
}
