package rng

import "math/rand"

// Generator is the source of randomness for shuffles
type Generator interface {
	// Intn will return a random number in [0, n)
	Intn(n int) int
}

// Seeded is a reproducible Generator
// It is not safe for concurrent use and is meant for tests and simulations.
type Seeded struct {
	r *rand.Rand
}

// NewSeeded returns a Generator that always produces the same sequence for the same seed
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a random number in [0, n)
func (s *Seeded) Intn(n int) int {
	return s.r.Intn(n)
}
