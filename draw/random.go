package draw

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand/v2"
	"sync"
)

// RandomSource returns a uniformly distributed float in [0, 1).
type RandomSource func() float64

// MathRandSource draws from the math/rand/v2 global generator.
func MathRandSource() RandomSource {
	return mrand.Float64
}

// SeededSource returns a deterministic PCG-backed source, useful for simulations.
// The returned source is safe for concurrent use.
func SeededSource(seed uint64) RandomSource {
	var mu sync.Mutex
	r := mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return r.Float64()
	}
}

// CryptoSource draws from crypto/rand. It is the default for production engines.
func CryptoSource() RandomSource {
	return func() float64 {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic("draw: crypto/rand unavailable: " + err.Error())
		}
		// 53 random bits scaled into [0, 1)
		return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
	}
}

// FixedSource cycles through the given values. It panics if called with no values.
func FixedSource(values ...float64) RandomSource {
	if len(values) == 0 {
		panic("draw: FixedSource needs at least one value")
	}
	var mu sync.Mutex
	i := 0
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		v := values[i%len(values)]
		i++
		return v
	}
}

// clampUnit forces u into [0, 1).
func clampUnit(u float64) float64 {
	switch {
	case math.IsNaN(u) || u < 0:
		return 0
	case u >= 1:
		return math.Nextafter(1, 0)
	}
	return u
}
