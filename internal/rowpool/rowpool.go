// Package rowpool provides static row-tiled parallelism for the per-pixel
// loops in the range pipeline, mirroring the worker-pool/channel idiom used
// for per-item batch processing elsewhere in this codebase's lineage.
package rowpool

import (
	"runtime"
	"sync"
)

// Workers returns the default worker count: GOMAXPROCS, clamped to rows so a
// small buffer never oversubscribes more goroutines than it has rows.
func Workers(rows int) int {
	n := runtime.GOMAXPROCS(0)
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run splits [0, rows) into contiguous tiles and calls fn(rowStart, rowEnd)
// once per tile across workers goroutines, blocking until every tile
// completes. A workers value <= 1 runs fn once, inline, with no goroutines.
func Run(rows, workers int, fn func(rowStart, rowEnd int)) {
	if workers <= 1 || rows <= 1 {
		fn(0, rows)
		return
	}
	if workers > rows {
		workers = rows
	}

	tile := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < rows; start += tile {
		end := start + tile
		if end > rows {
			end = rows
		}
		wg.Add(1)
		go func(rowStart, rowEnd int) {
			defer wg.Done()
			fn(rowStart, rowEnd)
		}(start, end)
	}
	wg.Wait()
}
