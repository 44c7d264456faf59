package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.WorkDir != "." {
		t.Errorf("WorkDir = %q, want %q", c.WorkDir, ".")
	}
	if c.OutputDir != "outputs" {
		t.Errorf("OutputDir = %q, want %q", c.OutputDir, "outputs")
	}
	if c.LogDir != "logs" {
		t.Errorf("LogDir = %q, want %q", c.LogDir, "logs")
	}
	if c.Engine != "whispercpp" {
		t.Errorf("Engine = %q, want %q", c.Engine, "whispercpp")
	}
	if c.Model != "base" {
		t.Errorf("Model = %q, want %q", c.Model, "base")
	}
	if c.FetchRetries != 3 {
		t.Errorf("FetchRetries = %d, want 3", c.FetchRetries)
	}
	if c.FetchBackoff != 3*time.Second {
		t.Errorf("FetchBackoff = %v, want 3s", c.FetchBackoff)
	}
	if c.WindowSeconds != 5.0 {
		t.Errorf("WindowSeconds = %v, want 5", c.WindowSeconds)
	}
	if c.StaleAudioMaxAge != 24*time.Hour {
		t.Errorf("StaleAudioMaxAge = %v, want 24h", c.StaleAudioMaxAge)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	t.Setenv("YTONE_MODEL", "small")
	t.Setenv("YTONE_FETCH_RETRIES", "5")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Model != "small" {
		t.Errorf("Model = %q, want %q", c.Model, "small")
	}
	if c.FetchRetries != 5 {
		t.Errorf("FetchRetries = %d, want 5", c.FetchRetries)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	body := "model: medium\nfetch_backoff: 10s\nwindow_seconds: 4.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Model != "medium" {
		t.Errorf("Model = %q, want %q", c.Model, "medium")
	}
	if c.FetchBackoff != 10*time.Second {
		t.Errorf("FetchBackoff = %v, want 10s", c.FetchBackoff)
	}
	if c.WindowSeconds != 4.5 {
		t.Errorf("WindowSeconds = %v, want 4.5", c.WindowSeconds)
	}
	// Keys the file does not mention keep their defaults.
	if c.Engine != "whispercpp" {
		t.Errorf("Engine = %q, want %q", c.Engine, "whispercpp")
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestTuning(t *testing.T) {
	c := Config{
		WindowSeconds:    4,
		MinWindowSeconds: 0.5,
		PitchLowHz:       100,
		PitchMedHz:       150,
		PitchHighHz:      200,
		EnergyLow:        0.02,
		EnergyMed:        0.05,
		EnergyHigh:       0.09,
		EnergySilence:    0.005,
	}
	got := c.Tuning()
	if got.WindowSeconds != 4 || got.MinTailSeconds != 0.5 {
		t.Errorf("window config = %v/%v, want 4/0.5", got.WindowSeconds, got.MinTailSeconds)
	}
	if got.Thresholds.PitchMedHz != 150 {
		t.Errorf("PitchMedHz = %v, want 150", got.Thresholds.PitchMedHz)
	}
	if got.Thresholds.EnergySilence != 0.005 {
		t.Errorf("EnergySilence = %v, want 0.005", got.Thresholds.EnergySilence)
	}
}
