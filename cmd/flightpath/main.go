package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/clarity-go/rangecam/internal/config"
	"github.com/clarity-go/rangecam/internal/flightpath"
	"github.com/clarity-go/rangecam/internal/previewio"
	"github.com/clarity-go/rangecam/internal/rangecalc"
	"github.com/clarity-go/rangecam/internal/terrain"
	"github.com/clarity-go/rangecam/internal/terraingen"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	posesFile := flag.String("poses", "", "Path to a JSON array of {name,x,y,z,yaw_deg,pitch_deg} poses")
	terrainPath := flag.String("terrain", "", "Path to a heightmap image (default: generate synthetic terrain)")
	rows := flag.Int("rows", 0, "Output rows (default: 512)")
	cols := flag.Int("cols", 0, "Output cols (default: 512)")
	fovDeg := flag.Float64("fov", 0, "Horizontal field of view in degrees (default: 90)")
	outputDir := flag.String("output", "", "Output directory (default: .)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")

	flag.Parse()

	if *posesFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -poses is required")
		os.Exit(1)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{OutputDir: *outputDir, Workers: *workers, Rows: *rows, Cols: *cols})

	if *fovDeg > 0 {
		cfg.FOVDeg = *fovDeg
	}
	if *terrainPath != "" {
		cfg.TerrainPath = *terrainPath
	}

	poses, err := flightpath.LoadPoses(*posesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading poses: %v\n", err)
		os.Exit(1)
	}
	if len(poses) == 0 {
		fmt.Println("No poses to render.")
		os.Exit(0)
	}

	var t terrain.Terrain
	if cfg.TerrainPath != "" {
		fmt.Printf("Loading terrain from %s\n", cfg.TerrainPath)
		buf, err := previewio.LoadHeightmap(cfg.TerrainPath, terraingen.MaxHeightM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading terrain: %v\n", err)
			os.Exit(1)
		}
		t, err = terrain.NewWithBuffer(buf, cfg.TerrainScale)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error wrapping terrain buffer: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("Generating synthetic terrain: %dx%d, scale %.1fm/cell\n", cfg.TerrainSize, cfg.TerrainSize, cfg.TerrainScale)
		t, err = terraingen.Generate(cfg.TerrainSize, cfg.TerrainSize, cfg.TerrainScale, terraingen.Options{
			Roughness: cfg.TerrainRough,
			Seed:      cfg.TerrainSeed,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating terrain: %v\n", err)
			os.Exit(1)
		}
	}

	os.MkdirAll(cfg.OutputDir, 0755)

	fmt.Println("Range camera flightpath batch")
	fmt.Printf("Poses: %d, Workers: %d\n", len(poses), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	flightCfg := flightpath.Config{
		Terrain:   t,
		FOVRad:    cfg.FOVDeg * math.Pi / 180,
		Rows:      cfg.Rows,
		Cols:      cfg.Cols,
		OutputDir: cfg.OutputDir,
		RangeOpts: rangecalc.Options{MaxErrorRatio: cfg.MaxErrorRatio, MaxRange: cfg.MaxRange},
		Workers:   cfg.Workers,
	}

	results := flightpath.Run(flightCfg, poses)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	success, failed := 0, 0
	var errs []flightpath.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", success, len(poses))

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errs) < limit {
			limit = len(errs)
		}
		for _, e := range errs[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := flightpath.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
