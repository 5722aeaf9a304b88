package terraingen

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RNG is a thin wrapper around math/rand/v2 for deterministic, seedable
// terrain synthesis. Mirrors the seeding idiom used for cellular-automaton
// simulation RNGs elsewhere in this codebase's lineage.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG from the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// NewRandomRNG creates an RNG seeded from a non-deterministic source.
func NewRandomRNG() *RNG {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		// crypto/rand failure is effectively unrecoverable on any real
		// platform; fall back to a fixed seed rather than panic.
		return NewRNG(1)
	}
	return NewRNG(int64(binary.LittleEndian.Uint64(buf[:])))
}

// Uniform returns a random float64 uniformly distributed in [lo, hi).
func (g *RNG) Uniform(lo, hi float64) float64 {
	return lo + g.r.Float64()*(hi-lo)
}
