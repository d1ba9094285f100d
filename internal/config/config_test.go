package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Engine.Quality != 85 {
		t.Errorf("Engine.Quality = %d, want 85", cfg.Engine.Quality)
	}
	if cfg.Engine.MinOutputWidth != 800 || cfg.Engine.MinOutputHeight != 600 {
		t.Errorf("min output = %dx%d, want 800x600", cfg.Engine.MinOutputWidth, cfg.Engine.MinOutputHeight)
	}
	if cfg.Engine.MaxUpscaleFactor != 2.0 {
		t.Errorf("MaxUpscaleFactor = %v, want 2.0", cfg.Engine.MaxUpscaleFactor)
	}
	if cfg.Pipeline.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Pipeline.MaxRetries)
	}
	if cfg.Detector.Enabled {
		t.Error("detector enabled by default, want disabled")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"engine": {"quality": 70, "min_output_width": 800, "min_output_height": 600, "max_upscale_factor": 3.0, "format": "png"},
		"sheets": {"grid_layout": "3x3", "orientation": "landscape"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.Quality != 70 || cfg.Engine.Format != "png" {
		t.Errorf("engine = %+v, want quality 70 format png", cfg.Engine)
	}
	if cfg.Sheets.GridLayout != "3x3" || cfg.Sheets.Orientation != "landscape" {
		t.Errorf("sheets = %+v, want 3x3 landscape", cfg.Sheets)
	}
	// Fields missing from the file keep their defaults
	if cfg.Pipeline.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.Pipeline.MaxRetries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load() succeeded for a missing file, want error")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"engine": {"quality": 150}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted quality 150, want validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PIXELFORGE_QUALITY", "60")
	t.Setenv("PIXELFORGE_OLLAMA_MODEL", "llava:13b")
	t.Setenv("PIXELFORGE_MAX_RETRIES", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.Quality != 60 {
		t.Errorf("Quality = %d, want env override 60", cfg.Engine.Quality)
	}
	if cfg.Detector.Model != "llava:13b" {
		t.Errorf("Model = %q, want env override", cfg.Detector.Model)
	}
	if cfg.Pipeline.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want env override 5", cfg.Pipeline.MaxRetries)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.json")

	cfg := Default()
	cfg.Engine.Quality = 92
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Engine.Quality != 92 {
		t.Errorf("Quality = %d, want 92", loaded.Engine.Quality)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"quality too low", func(c *Config) { c.Engine.Quality = 0 }},
		{"zero min width", func(c *Config) { c.Engine.MinOutputWidth = 0 }},
		{"upscale below one", func(c *Config) { c.Engine.MaxUpscaleFactor = 0.5 }},
		{"zero retries", func(c *Config) { c.Pipeline.MaxRetries = 0 }},
		{"bad orientation", func(c *Config) { c.Sheets.Orientation = "sideways" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() passed, want error")
			}
		})
	}
}
