package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/clarity-go/rangecam/internal/config"
	"github.com/clarity-go/rangecam/internal/previewio"
	"github.com/clarity-go/rangecam/internal/terraingen"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	size := flag.Int("size", 0, "Terrain size, must be 2^n+1 (default: 513)")
	scale := flag.Float64("scale", 0, "Metres per cell (default: 30)")
	roughness := flag.Float64("roughness", 0, "Diamond-square roughness in (0, 1] (default: 0.5)")
	seed := flag.Int64("seed", 0, "Deterministic seed (default: non-deterministic)")
	hasSeed := flag.Bool("seeded", false, "Use -seed instead of a random seed")
	outputDir := flag.String("output", "", "Output directory (default: .)")
	preview := flag.String("preview", "terrain.webp", "Preview WebP filename, empty to skip")

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
	cfg.Resolve(config.Flags{OutputDir: *outputDir})

	if *size > 0 {
		cfg.TerrainSize = *size
	}
	if *scale > 0 {
		cfg.TerrainScale = *scale
	}
	if *roughness > 0 {
		cfg.TerrainRough = *roughness
	}
	if *hasSeed {
		cfg.TerrainSeed = seed
	}

	fmt.Printf("Generating terrain: %dx%d, scale %.1fm/cell, roughness %.2f\n",
		cfg.TerrainSize, cfg.TerrainSize, cfg.TerrainScale, cfg.TerrainRough)

	start := time.Now()
	tr, err := terraingen.Generate(cfg.TerrainSize, cfg.TerrainSize, cfg.TerrainScale, terraingen.Options{
		Roughness: cfg.TerrainRough,
		Seed:      cfg.TerrainSeed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating terrain: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done in %.2fs\n", time.Since(start).Seconds())

	if *preview != "" {
		os.MkdirAll(cfg.OutputDir, 0755)
		path := cfg.ResolvedOutputPath(*preview)
		img := previewio.GrayscaleFromDepth1(tr.Data())
		if err := previewio.WritePreviewWebP(path, img); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: preview write failed: %v\n", err)
		} else {
			fmt.Printf("Preview: %s\n", path)
		}
	}
}
