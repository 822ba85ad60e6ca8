package mockdice

import (
	"sync"
)

// ManualMockRoller implements dice.Roller for testing with predetermined results.
// Queued ints feed Intn, queued floats feed Float64/Between/Chance. When a
// queue runs dry the mock falls back to a fixed midpoint value so tests only
// need to script the rolls they care about.
type ManualMockRoller struct {
	mu         sync.Mutex
	ints       []int
	intIndex   int
	floats     []float64
	floatIndex int
}

// NewManualMockRoller creates a new mock roller
func NewManualMockRoller() *ManualMockRoller {
	return &ManualMockRoller{}
}

// SetInts queues integer results for Intn
func (m *ManualMockRoller) SetInts(values ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints = values
	m.intIndex = 0
}

// SetFloats queues float results for Float64, Between, and Chance
func (m *ManualMockRoller) SetFloats(values ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floats = values
	m.floatIndex = 0
}

// Reset clears all queued values
func (m *ManualMockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints = nil
	m.intIndex = 0
	m.floats = nil
	m.floatIndex = 0
}

// Intn returns the next queued int modulo n, or 0 when the queue is empty
func (m *ManualMockRoller) Intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.intIndex >= len(m.ints) {
		return 0
	}
	v := m.ints[m.intIndex]
	m.intIndex++
	if n <= 0 {
		return 0
	}
	return v % n
}

// Float64 returns the next queued float, or 0.5 when the queue is empty
func (m *ManualMockRoller) Float64() float64 {
	return m.nextFloat()
}

// Between maps the next queued float (treated as a fraction) into [min, max)
func (m *ManualMockRoller) Between(min, max float64) float64 {
	return min + m.nextFloat()*(max-min)
}

// Chance returns true when the next queued float is below p
func (m *ManualMockRoller) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return m.nextFloat() < p
}

func (m *ManualMockRoller) nextFloat() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.floatIndex >= len(m.floats) {
		return 0.5
	}
	v := m.floats[m.floatIndex]
	m.floatIndex++
	return v
}
