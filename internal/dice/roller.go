package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller provides an interface for the game's randomness.
// This allows us to inject deterministic implementations for testing.
type Roller interface {
	// Intn returns a uniform integer in [0, n)
	Intn(n int) int

	// Float64 returns a uniform float in [0.0, 1.0)
	Float64() float64

	// Between returns a uniform float in [min, max)
	Between(min, max float64) float64

	// Chance returns true with probability p (p >= 1 always hits, p <= 0 never)
	Chance(p float64) bool
}
