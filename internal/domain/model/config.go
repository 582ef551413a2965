package model

import (
	"encoding/json"
	"errors"
)

const DefaultCardName = "GaggiMate"

var ErrInvalidConfig = errors.New("invalid configuration")

// CardConfig is the persisted card configuration. It is replaced as a whole,
// never patched in place.
type CardConfig struct {
	DeviceID     string `json:"device_id,omitempty" yaml:"device_id,omitempty" mapstructure:"device_id"`
	Entity       string `json:"entity,omitempty" yaml:"entity,omitempty" mapstructure:"entity"`
	Name         string `json:"name" yaml:"name" mapstructure:"name"`
	ShowProfile  bool   `json:"show_profile" yaml:"show_profile" mapstructure:"show_profile"`
	ShowWeight   bool   `json:"show_weight" yaml:"show_weight" mapstructure:"show_weight"`
	ShowControls bool   `json:"show_controls" yaml:"show_controls" mapstructure:"show_controls"`
}

// StubConfig is the configuration a freshly added card starts with.
func StubConfig() CardConfig {
	return CardConfig{
		Name:         DefaultCardName,
		ShowProfile:  true,
		ShowWeight:   true,
		ShowControls: true,
	}
}

// ParseCardConfig decodes a JSON config. Keys missing from data keep their
// stub defaults.
func ParseCardConfig(data []byte) (CardConfig, error) {
	cfg := StubConfig()
	if len(data) == 0 || string(data) == "null" {
		return cfg, ErrInvalidConfig
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Configured reports whether the config names something to resolve from.
func (c CardConfig) Configured() bool {
	return c.DeviceID != "" || c.Entity != ""
}
