package rowpool

import (
	"sync/atomic"
	"testing"
)

func TestRunCoversEveryRowExactlyOnce(t *testing.T) {
	const rows = 97
	var hits [rows]atomic.Int32

	Run(rows, Workers(rows), func(start, end int) {
		for r := start; r < end; r++ {
			hits[r].Add(1)
		}
	})

	for r := 0; r < rows; r++ {
		if got := hits[r].Load(); got != 1 {
			t.Fatalf("row %d hit %d times, want 1", r, got)
		}
	}
}

func TestRunSingleWorkerIsInline(t *testing.T) {
	var sawStart, sawEnd int
	Run(10, 1, func(start, end int) {
		sawStart, sawEnd = start, end
	})
	if sawStart != 0 || sawEnd != 10 {
		t.Fatalf("got (%d, %d), want (0, 10)", sawStart, sawEnd)
	}
}

func TestWorkersNeverExceedsRows(t *testing.T) {
	if w := Workers(2); w > 2 {
		t.Fatalf("Workers(2) = %d, want <= 2", w)
	}
}

func TestRunToleratesMoreWorkersThanRows(t *testing.T) {
	var total atomic.Int32
	Run(3, 8, func(start, end int) {
		total.Add(int32(end - start))
	})
	if total.Load() != 3 {
		t.Fatalf("total rows processed = %d, want 3", total.Load())
	}
}
