package flightpath

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/clarity-go/rangecam/internal/camera"
	"github.com/clarity-go/rangecam/internal/rangecalc"
	"github.com/clarity-go/rangecam/internal/terraingen"
)

func TestRunRendersEveryPose(t *testing.T) {
	tr, err := terraingen.Generate(17, 17, 5, terraingen.Options{Roughness: 0.5, Seed: seedPtr(1)})
	if err != nil {
		t.Fatalf("terraingen.Generate: %v", err)
	}

	dir := t.TempDir()
	cfg := Config{
		Terrain:   tr,
		FOVRad:    1.2,
		Rows:      8,
		Cols:      8,
		OutputDir: dir,
		RangeOpts: rangecalc.Options{},
		Workers:   2,
	}

	poses := []Pose{
		{Name: "a", Position: camera.Position{X: 40, Y: 40, Z: 200}, PitchRad: 1.5},
		{Name: "b", Position: camera.Position{X: 20, Y: 20, Z: 200}, PitchRad: 1.5},
		{Name: "c", Position: camera.Position{X: 60, Y: 60, Z: 200}, PitchRad: 1.5},
	}

	results := Run(cfg, poses)
	if len(results) != len(poses) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(poses))
	}

	for i, r := range results {
		if !r.Success {
			t.Fatalf("pose %d (%s) failed: %s", i, poses[i].Name, r.Error)
		}
		if _, err := os.Stat(filepath.Join(dir, r.Image)); err != nil {
			t.Fatalf("pose %d (%s): preview not written: %v", i, poses[i].Name, err)
		}
	}
}

func TestWriteManifestProducesValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	results := []Result{
		{Index: 0, Name: "a", Image: "a.webp", Success: true},
		{Index: 1, Name: "b", Error: "boom"},
	}

	if err := WriteManifest(path, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Image != "a.webp" {
		t.Fatalf("entries[0].Image = %q, want a.webp", entries[0].Image)
	}
	if entries[1].Error != "boom" {
		t.Fatalf("entries[1].Error = %q, want boom", entries[1].Error)
	}
}

func seedPtr(v int64) *int64 { return &v }
