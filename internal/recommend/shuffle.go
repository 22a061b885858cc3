package recommend

import (
	"math"
	"math/rand"
	"time"
)

// Rand yields uniform draws in [0, 1). Generators are allocated per request
// and never shared.
type Rand interface {
	Float64() float64
}

// mulberry32 is a tiny deterministic PRNG whose sequence matches the widely
// used JavaScript implementation, so seeds stay portable across clients.
type mulberry32 struct {
	state uint32
}

func (m *mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// NewRand returns the draw source for one request: a mulberry32 generator
// when a finite seed was supplied, otherwise a time-seeded generator.
func NewRand(seed *Seed) Rand {
	if seed.Valid() {
		return &mulberry32{state: seedToUint32(seed.value)}
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// seedToUint32 reduces a float64 seed with ToUint32 semantics: truncate
// toward zero, take modulo 2^32, wrap negatives. Matches how numeric seeds
// behave in JavaScript clients.
func seedToUint32(f float64) uint32 {
	m := math.Mod(math.Trunc(f), 4294967296.0)
	if m < 0 {
		m += 4294967296.0
	}
	return uint32(m)
}

// Shuffle permutes list in place with a Fisher-Yates walk, drawing from rng.
func Shuffle(list []Candidate, rng Rand) {
	for i := len(list) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		list[i], list[j] = list[j], list[i]
	}
}
