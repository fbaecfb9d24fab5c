package scenario

import (
	"hash/fnv"
	"math/rand"
)

// SubsystemFrames is the RNG subsystem for frame-delta jitter.
// Uses the scenario seed directly.
const SubsystemFrames = "frames"

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemFrames: uses the seed directly
//   - For all other subsystems: seed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derived := p.seed
	if name != SubsystemFrames {
		derived ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the seed used to create this PartitionedRNG.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// Jitter scales delta by a uniform factor in [1-amount, 1+amount).
func Jitter(rng *rand.Rand, delta, amount float64) float64 {
	if amount <= 0 {
		return delta
	}
	return delta * (1 + amount*(2*rng.Float64()-1))
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
