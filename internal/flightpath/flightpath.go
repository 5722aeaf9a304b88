// Package flightpath batch-renders a sequence of camera poses against one
// terrain, using a worker pool over goroutines the way this codebase's
// lineage batches any per-item render job, and writing a JSON manifest
// describing what was produced.
package flightpath

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/camera"
	"github.com/clarity-go/rangecam/internal/previewio"
	"github.com/clarity-go/rangecam/internal/rangecalc"
	"github.com/clarity-go/rangecam/internal/terrain"
)

// Pose is one camera placement along the path.
type Pose struct {
	Name     string
	Position camera.Position
	YawRad   float64
	PitchRad float64
}

// Config holds the shared resources for a flightpath run.
type Config struct {
	Terrain     terrain.Terrain
	FOVRad      float64
	Rows, Cols  int
	OutputDir   string
	RangeOpts   rangecalc.Options
	Workers     int
}

// Result holds the outcome of rendering one pose.
type Result struct {
	Index   int
	Name    string
	Image   string
	Success bool
	Error   string
}

// Run renders every pose using a worker pool, writing one greyscale WebP
// preview per pose into cfg.OutputDir.
func Run(cfg Config, poses []Pose) []Result {
	total := len(poses)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f poses/sec\n", p, total, rate)
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	poseChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range poseChan {
				results[idx] = renderPose(cfg, idx, poses[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range poses {
		poseChan <- i
	}
	close(poseChan)

	wg.Wait()
	close(done)

	return results
}

func renderPose(cfg Config, idx int, pose Pose) Result {
	name := pose.Name
	if name == "" {
		name = fmt.Sprintf("pose_%04d", idx)
	}

	cam, err := camera.New(cfg.FOVRad, cfg.Rows, cfg.Cols)
	if err != nil {
		return Result{Index: idx, Name: name, Error: err.Error()}
	}
	cam.SetPosition(pose.Position)
	cam.SetYaw(pose.YawRad)
	cam.SetPitch(pose.PitchRad)

	out, err := buffer.New(cfg.Rows, cfg.Cols, 1)
	if err != nil {
		return Result{Index: idx, Name: name, Error: err.Error()}
	}

	calc := rangecalc.New(cfg.RangeOpts)
	if err := calc.Calculate(cam, cfg.Terrain, out); err != nil {
		return Result{Index: idx, Name: name, Error: err.Error()}
	}

	imageName := fmt.Sprintf("%s.webp", name)
	outPath := filepath.Join(cfg.OutputDir, imageName)
	img := previewio.GrayscaleFromDepth1(out)
	if err := previewio.WritePreviewWebP(outPath, img); err != nil {
		return Result{Index: idx, Name: name, Error: fmt.Sprintf("WebP encode: %v", err)}
	}

	return Result{Index: idx, Name: name, Image: imageName, Success: true}
}

// poseSpec is the on-disk JSON shape for a single pose: angles in degrees,
// matching the rest of this codebase's config idiom.
type poseSpec struct {
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	YawDeg   float64 `json:"yaw_deg"`
	PitchDeg float64 `json:"pitch_deg"`
}

// LoadPoses reads a JSON array of pose specifications from path.
func LoadPoses(path string) ([]Pose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flightpath: read %s: %w", path, err)
	}
	var specs []poseSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("flightpath: parse %s: %w", path, err)
	}
	poses := make([]Pose, len(specs))
	for i, s := range specs {
		poses[i] = Pose{
			Name:     s.Name,
			Position: camera.Position{X: s.X, Y: s.Y, Z: s.Z},
			YawRad:   s.YawDeg * math.Pi / 180,
			PitchRad: s.PitchDeg * math.Pi / 180,
		}
	}
	return poses, nil
}

// ManifestEntry describes one rendered pose in the output manifest.
type ManifestEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// WriteManifest writes a JSON summary of results to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{Index: r.Index, Name: r.Name, Image: r.Image, Error: r.Error}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
