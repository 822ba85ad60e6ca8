package dice

import (
	"math/rand"
	"time"
)

// randomRoller implements Roller using math/rand seeded at construction
type randomRoller struct {
	rng *rand.Rand
}

// NewRandomRoller creates a new time-seeded random roller
func NewRandomRoller() Roller {
	return &randomRoller{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Intn implements Roller.Intn
func (r *randomRoller) Intn(n int) int {
	return r.rng.Intn(n)
}

// Float64 implements Roller.Float64
func (r *randomRoller) Float64() float64 {
	return r.rng.Float64()
}

// Between implements Roller.Between
func (r *randomRoller) Between(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// Chance implements Roller.Chance
func (r *randomRoller) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.rng.Float64() < p
}
