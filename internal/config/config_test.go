package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFillsDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	if cfg.FOVDeg != 90 {
		t.Errorf("FOVDeg = %v, want 90", cfg.FOVDeg)
	}
	if cfg.Rows != 512 || cfg.Cols != 512 {
		t.Errorf("Rows,Cols = %d,%d, want 512,512", cfg.Rows, cfg.Cols)
	}
	if cfg.TerrainSize != 513 {
		t.Errorf("TerrainSize = %d, want 513", cfg.TerrainSize)
	}
	if cfg.MaxErrorRatio != 0.2 {
		t.Errorf("MaxErrorRatio = %v, want 0.2", cfg.MaxErrorRatio)
	}
	if cfg.Workers <= 0 {
		t.Errorf("Workers = %d, want > 0", cfg.Workers)
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", cfg.OutputDir)
	}
}

func TestResolveFlagsOverrideDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{OutputDir: "/tmp/out", Rows: 64, Cols: 128, Workers: 4, Quality: 75})

	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q, want /tmp/out", cfg.OutputDir)
	}
	if cfg.Rows != 64 || cfg.Cols != 128 {
		t.Errorf("Rows,Cols = %d,%d, want 64,128", cfg.Rows, cfg.Cols)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.WebPQuality != 75 {
		t.Errorf("WebPQuality = %d, want 75", cfg.WebPQuality)
	}
}

func TestResolveDoesNotOverrideExplicitConfigValues(t *testing.T) {
	cfg := Config{FOVDeg: 60, Rows: 256, Cols: 256}
	cfg.Resolve(Flags{})

	if cfg.FOVDeg != 60 {
		t.Errorf("FOVDeg = %v, want 60 (should not be defaulted)", cfg.FOVDeg)
	}
	if cfg.Rows != 256 || cfg.Cols != 256 {
		t.Errorf("Rows,Cols = %d,%d, want 256,256", cfg.Rows, cfg.Cols)
	}
}

func TestLoadReadsJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"fov_deg": 75, "rows": 128, "cols": 128, "terrain_scale_m": 10}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FOVDeg != 75 {
		t.Errorf("FOVDeg = %v, want 75", cfg.FOVDeg)
	}
	if cfg.TerrainScale != 10 {
		t.Errorf("TerrainScale = %v, want 10", cfg.TerrainScale)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/config.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolvedOutputPath(t *testing.T) {
	cfg := Config{OutputDir: "/tmp/out"}
	if got := cfg.ResolvedOutputPath("preview.webp"); got != filepath.Join("/tmp/out", "preview.webp") {
		t.Errorf("ResolvedOutputPath = %q", got)
	}
	if got := cfg.ResolvedOutputPath("/abs/preview.webp"); got != "/abs/preview.webp" {
		t.Errorf("ResolvedOutputPath with absolute path = %q, want unchanged", got)
	}
}
