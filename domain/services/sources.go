package services

import (
	"math/rand/v2"
	"time"
)

// Random is the source of every probabilistic decision in the domain.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemRandom struct{}

// SystemRandom returns a Random backed by the runtime's global generator.
func SystemRandom() Random {
	return systemRandom{}
}

func (systemRandom) Float64() float64 { return rand.Float64() }
func (systemRandom) IntN(n int) int   { return rand.IntN(n) }

type systemClock struct{}

// SystemClock returns the real clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time { return time.Now() }
