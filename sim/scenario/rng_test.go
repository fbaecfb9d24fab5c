package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_Deterministic(t *testing.T) {
	a := NewPartitionedRNG(42).ForSubsystem(SubsystemFrames)
	b := NewPartitionedRNG(42).ForSubsystem(SubsystemFrames)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d: %v != %v", i, x, y)
		}
	}
}

func TestPartitionedRNG_SubsystemsIsolated(t *testing.T) {
	p := NewPartitionedRNG(7)
	frames := p.ForSubsystem(SubsystemFrames)
	other := p.ForSubsystem("wind")
	assert.Same(t, frames, p.ForSubsystem(SubsystemFrames), "cached")
	assert.NotEqual(t, frames.Int63(), other.Int63())
	assert.Equal(t, int64(7), p.Seed())
}

func TestJitter_Bounds(t *testing.T) {
	rng := NewPartitionedRNG(1).ForSubsystem(SubsystemFrames)
	for i := 0; i < 1000; i++ {
		d := Jitter(rng, 0.02, 0.25)
		if d < 0.015 || d >= 0.025 {
			t.Fatalf("jittered delta %v outside [0.015, 0.025)", d)
		}
	}
	assert.Equal(t, 0.02, Jitter(rng, 0.02, 0))
}
