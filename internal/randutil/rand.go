// Package randutil is the single randomness boundary for the casino engines.
// Engines never call a package-level random function; they consume a Source
// so every round can be replayed from a seed or a fixed sequence.
package randutil

import (
	"math"
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Source supplies uniform floats in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the seed so equal seeds replay equal rounds.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Locked wraps a Source so it can be shared by timer goroutines.
func Locked(src Source) Source {
	return &lockedSource{src: src}
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Intn maps the next float from src onto [0, n). It returns 0 when n <= 1.
func Intn(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(math.Floor(src.Float64() * float64(n)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Sequence is a Source that replays fixed values, cycling when exhausted.
// Tests use it to force exact outcomes.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a Sequence over values. An empty sequence always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value of the sequence.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Consumed reports how many values have been drawn.
func (s *Sequence) Consumed() int {
	return s.next
}

// ForIndex returns the float that Intn(_, n) maps to index i.
func ForIndex(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
