// Package config loads pipeline configuration from a JSON file with
// optional environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Engine   EngineConfig   `json:"engine"`
	Detector DetectorConfig `json:"detector"`
	Sheets   SheetConfig    `json:"sheets"`
	Pipeline PipelineConfig `json:"pipeline"`
	Output   OutputConfig   `json:"output"`
}

// EngineConfig configures the crop/convert engine.
type EngineConfig struct {
	Quality          int     `json:"quality"`
	MinOutputWidth   int     `json:"min_output_width"`
	MinOutputHeight  int     `json:"min_output_height"`
	MaxUpscaleFactor float64 `json:"max_upscale_factor"`
	Format           string  `json:"format"`
}

// DetectorConfig configures the subject detector backend.
type DetectorConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Model   string `json:"model"`
}

// SheetConfig configures default sheet composition.
type SheetConfig struct {
	GridLayout  string `json:"grid_layout"`
	Orientation string `json:"orientation"`
	GeneratePDF bool   `json:"generate_pdf"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	MaxRetries     int  `json:"max_retries"`
	CleanupOnError bool `json:"cleanup_on_error"`
}

// OutputConfig configures output locations.
type OutputConfig struct {
	Dir     string `json:"dir"`
	TempDir string `json:"temp_dir"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Quality:          85,
			MinOutputWidth:   800,
			MinOutputHeight:  600,
			MaxUpscaleFactor: 2.0,
			Format:           "jpg",
		},
		Detector: DetectorConfig{
			Enabled: false,
			URL:     "http://localhost:11434",
			Model:   "llama3.2-vision:11b",
		},
		Sheets: SheetConfig{
			GridLayout:  "2x2",
			Orientation: "portrait",
		},
		Pipeline: PipelineConfig{
			MaxRetries: 3,
		},
		Output: OutputConfig{
			Dir:     "./output",
			TempDir: os.TempDir(),
		},
	}
}

// Load builds the configuration: defaults, then an optional JSON file,
// then environment overrides. A .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides configuration fields from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("PIXELFORGE_OLLAMA_URL"); v != "" {
		c.Detector.URL = v
	}
	if v := os.Getenv("PIXELFORGE_OLLAMA_MODEL"); v != "" {
		c.Detector.Model = v
	}
	if v := os.Getenv("PIXELFORGE_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("PIXELFORGE_QUALITY"); v != "" {
		if q, err := strconv.Atoi(v); err == nil {
			c.Engine.Quality = q
		}
	}
	if v := os.Getenv("PIXELFORGE_MAX_RETRIES"); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			c.Pipeline.MaxRetries = r
		}
	}
}

// SaveToFile writes the configuration as indented JSON.
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.Quality < 1 || c.Engine.Quality > 100 {
		return fmt.Errorf("engine.quality must be between 1 and 100")
	}
	if c.Engine.MinOutputWidth < 1 || c.Engine.MinOutputHeight < 1 {
		return fmt.Errorf("engine.min_output dimensions must be positive")
	}
	if c.Engine.MaxUpscaleFactor < 1 {
		return fmt.Errorf("engine.max_upscale_factor must be at least 1")
	}
	if c.Pipeline.MaxRetries < 1 {
		return fmt.Errorf("pipeline.max_retries must be at least 1")
	}
	switch c.Sheets.Orientation {
	case "portrait", "landscape":
	default:
		return fmt.Errorf("sheets.orientation must be portrait or landscape")
	}
	return nil
}
