package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Settings are the editor's own knobs, not device state. Values come
// from an optional TOML file layered over the defaults.
type Settings struct {
	PortHint       string
	ReceiveTimeout time.Duration
	Retries        int
	Backoff        time.Duration
	LogLevel       string
}

func DefaultSettings() Settings {
	return Settings{
		PortHint:       "mpk mini plus",
		ReceiveTimeout: 2 * time.Second,
		Retries:        3,
		Backoff:        150 * time.Millisecond,
		LogLevel:       "info",
	}
}

type fileSettings struct {
	PortHint       string `toml:"port_hint"`
	ReceiveTimeout string `toml:"receive_timeout"`
	Retries        int    `toml:"retries"`
	Backoff        string `toml:"backoff"`
	LogLevel       string `toml:"log_level"`
}

// LoadSettings reads a settings file, keeping defaults for anything
// the file does not define.
func LoadSettings(path string) (Settings, error) {
	st := DefaultSettings()

	var raw fileSettings
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	if meta.IsDefined("port_hint") {
		hint := strings.TrimSpace(raw.PortHint)
		if hint != "" {
			st.PortHint = hint
		}
	}
	if meta.IsDefined("receive_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReceiveTimeout))
		if err != nil {
			return Settings{}, fmt.Errorf("parse receive_timeout: %w", err)
		}
		st.ReceiveTimeout = d
	}
	if meta.IsDefined("retries") {
		if raw.Retries < 1 {
			return Settings{}, fmt.Errorf("retries must be at least 1, got %d", raw.Retries)
		}
		st.Retries = raw.Retries
	}
	if meta.IsDefined("backoff") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Backoff))
		if err != nil {
			return Settings{}, fmt.Errorf("parse backoff: %w", err)
		}
		st.Backoff = d
	}
	if meta.IsDefined("log_level") {
		st.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return st, nil
}
