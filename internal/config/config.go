// Package config loads and saves user preferences. Session state is never
// stored here.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const appDir = "loopify"

// Config holds preferences shared by every front end.
type Config struct {
	SampleRate   int        `json:"sampleRate,omitempty"`
	ShareOrigin  string     `json:"shareOrigin,omitempty"`
	MIDIDevice   string     `json:"midiDevice,omitempty"` // preferred input name
	Volume       float64    `json:"volume"`
	EQ           [5]float32 `json:"eq"`
	ActivateWait Duration   `json:"activationTimeout,omitempty"`
	LogLevel     string     `json:"logLevel,omitempty"`
}

// Duration marshals as a Go duration string such as "5s".
type Duration struct{ time.Duration }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		SampleRate:   48000,
		ShareOrigin:  "https://loopify.app/",
		Volume:       1,
		EQ:           [5]float32{1, 1, 1, 1, 1},
		ActivateWait: Duration{5 * time.Second},
		LogLevel:     "info",
	}
}

// Dir returns the preferences directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDir), nil
}

// Path returns the full path to config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the preferences file, or returns defaults if there is none.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.ShareOrigin == "" {
		c.ShareOrigin = def.ShareOrigin
	}
	if c.Volume < 0 {
		c.Volume = 0
	}
	for i, g := range c.EQ {
		if g < 0 {
			c.EQ[i] = 0
		}
	}
	if c.ActivateWait.Duration <= 0 {
		c.ActivateWait = def.ActivateWait
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = def.LogLevel
	}
}

// Level returns the configured log level.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Save writes the preferences to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
