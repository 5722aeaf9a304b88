package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable camera, terrain, and pipeline settings.
type Config struct {
	// Camera
	FOVDeg   float64 `json:"fov_deg"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	PosX     float64 `json:"pos_x"`
	PosY     float64 `json:"pos_y"`
	PosZ     float64 `json:"pos_z"`
	YawDeg   float64 `json:"yaw_deg"`
	PitchDeg float64 `json:"pitch_deg"`

	// Terrain
	TerrainPath  string  `json:"terrain_path"`
	TerrainSize  int     `json:"terrain_size"`
	TerrainScale float64 `json:"terrain_scale_m"`
	TerrainRough float64 `json:"terrain_roughness"`
	TerrainSeed  *int64  `json:"terrain_seed"`

	// Range pipeline
	MaxErrorRatio float64 `json:"max_error_ratio"`
	MaxRange      float64 `json:"max_range_m"`
	DeviceIndex   int     `json:"device_index"`

	// Output
	OutputDir   string `json:"output_dir"`
	WebPQuality int    `json:"webp_quality"`
	Workers     int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir string
	Quality   int
	Workers   int
	Rows      int
	Cols      int
}

// Resolve fills in any empty fields with defaults. CLI flags take priority
// when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Rows > 0 {
		c.Rows = flags.Rows
	}
	if flags.Cols > 0 {
		c.Cols = flags.Cols
	}

	if c.FOVDeg <= 0 {
		c.FOVDeg = 90
	}
	if c.Rows <= 0 {
		c.Rows = 512
	}
	if c.Cols <= 0 {
		c.Cols = 512
	}
	if c.TerrainSize <= 0 {
		c.TerrainSize = 513
	}
	if c.TerrainScale <= 0 {
		c.TerrainScale = 30
	}
	if c.TerrainRough <= 0 {
		c.TerrainRough = 0.5
	}
	if c.MaxErrorRatio <= 0 {
		c.MaxErrorRatio = 0.2
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// ResolvedOutputPath joins the configured output directory with name.
func (c Config) ResolvedOutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}
