package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SampleRate != 48000 || cfg.Volume != 1 || cfg.ActivateWait.Duration != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.MIDIDevice = "Keystation 49"
	cfg.Volume = 0.5
	cfg.EQ[2] = 1.5
	cfg.ActivateWait = Duration{2 * time.Second}
	cfg.LogLevel = "debug"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("loaded %+v, want %+v", got, cfg)
	}
	if got.Level() != logrus.DebugLevel {
		t.Fatalf("Level = %v", got.Level())
	}
}

func TestLoadNormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"sampleRate":-1,"volume":-2,"eq":[1,-1,1,1,1],"activationTimeout":"0s","logLevel":"loud"}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SampleRate != 48000 || cfg.Volume != 0 || cfg.EQ[1] != 0 || cfg.LogLevel != "info" {
		t.Fatalf("not normalized: %+v", cfg)
	}
	if cfg.ActivateWait.Duration != 5*time.Second {
		t.Fatalf("activation timeout = %v", cfg.ActivateWait)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected an error")
	}
}
