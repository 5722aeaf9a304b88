package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/clarity-go/rangecam/internal/buffer"
	"github.com/clarity-go/rangecam/internal/camera"
	"github.com/clarity-go/rangecam/internal/config"
	"github.com/clarity-go/rangecam/internal/previewio"
	"github.com/clarity-go/rangecam/internal/rangecalc"
	"github.com/clarity-go/rangecam/internal/terrain"
	"github.com/clarity-go/rangecam/internal/terraingen"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	fovDeg := flag.Float64("fov", 0, "Horizontal field of view in degrees (default: 90)")
	rows := flag.Int("rows", 0, "Output rows (default: 512)")
	cols := flag.Int("cols", 0, "Output cols (default: 512)")
	posX := flag.Float64("x", 0, "Camera world X position (metres)")
	posY := flag.Float64("y", 0, "Camera world Y position (metres)")
	posZ := flag.Float64("z", 0, "Camera world Z position (metres)")
	yawDeg := flag.Float64("yaw", 0, "Camera yaw in degrees")
	pitchDeg := flag.Float64("pitch", 0, "Camera pitch in degrees")
	terrainPath := flag.String("terrain", "", "Path to a heightmap image (default: generate synthetic terrain)")
	outputDir := flag.String("output", "", "Output directory (default: .)")
	preview := flag.String("preview", "range.webp", "Preview WebP filename, empty to skip")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")

	flag.Parse()

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
	if *posX != 0 {
		cfg.PosX = *posX
	}
	if *posY != 0 {
		cfg.PosY = *posY
	}
	if *posZ != 0 {
		cfg.PosZ = *posZ
	}
	if *yawDeg != 0 {
		cfg.YawDeg = *yawDeg
	}
	if *pitchDeg != 0 {
		cfg.PitchDeg = *pitchDeg
	}
	if *terrainPath != "" {
		cfg.TerrainPath = *terrainPath
	}

	cam, err := camera.New(cfg.FOVDeg*math.Pi/180, cfg.Rows, cfg.Cols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error constructing camera: %v\n", err)
		os.Exit(1)
	}
	cam.SetPosition(camera.Position{X: cfg.PosX, Y: cfg.PosY, Z: cfg.PosZ})
	cam.SetYaw(cfg.YawDeg * math.Pi / 180)
	cam.SetPitch(cfg.PitchDeg * math.Pi / 180)

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

	out, err := buildRangeBuffer(cfg.Rows, cfg.Cols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error allocating range buffer: %v\n", err)
		os.Exit(1)
	}

	calc := rangecalc.New(rangecalc.Options{MaxErrorRatio: cfg.MaxErrorRatio, MaxRange: cfg.MaxRange})

	fmt.Printf("Range camera: %dx%d, fov %.1f deg, pos (%.1f, %.1f, %.1f), yaw %.1f, pitch %.1f\n",
		cfg.Rows, cfg.Cols, cfg.FOVDeg, cfg.PosX, cfg.PosY, cfg.PosZ, cfg.YawDeg, cfg.PitchDeg)

	start := time.Now()
	if err := calc.Calculate(cam, t, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error computing range: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done in %.2fs\n", time.Since(start).Seconds())

	if *preview != "" {
		os.MkdirAll(cfg.OutputDir, 0755)
		path := cfg.ResolvedOutputPath(*preview)
		img := previewio.GrayscaleFromDepth1(out)
		if err := previewio.WritePreviewWebP(path, img); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: preview write failed: %v\n", err)
		} else {
			fmt.Printf("Preview: %s\n", path)
		}
	}
}

func buildRangeBuffer(rows, cols int) (buffer.Buffer, error) {
	return buffer.New(rows, cols, 1)
}
