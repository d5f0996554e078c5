package depth

import (
	"math/rand/v2"
	"sync"
)

// Sampler draws integers uniformly from a closed range.
type Sampler interface {
	// IntInRange returns a value in [lo, hi]. lo == hi returns lo and an
	// inverted range is sampled as [hi, lo].
	IntInRange(lo, hi int) int
}

// RandSampler is a seeded PCG-backed Sampler.
type RandSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSampler returns a Sampler with a deterministic seed.
func NewRandSampler(seed uint64) *RandSampler {
	return &RandSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Reseed restarts the sequence from seed.
func (s *RandSampler) Reseed(seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IntInRange implements Sampler.
func (s *RandSampler) IntInRange(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

// SequenceSampler replays fixed offsets into each requested range. Offset
// k maps to lo + k mod (hi-lo+1), so one sequence works for any range.
// The sequence wraps when exhausted. An empty sequence always yields lo.
type SequenceSampler struct {
	mu      sync.Mutex
	offsets []int
	next    int
}

// NewSequenceSampler returns a Sampler replaying offsets.
func NewSequenceSampler(offsets ...int) *SequenceSampler {
	return &SequenceSampler{offsets: offsets}
}

// IntInRange implements Sampler.
func (s *SequenceSampler) IntInRange(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi || len(s.offsets) == 0 {
		return lo
	}

	s.mu.Lock()
	k := s.offsets[s.next%len(s.offsets)]
	s.next++
	s.mu.Unlock()

	span := hi - lo + 1
	k %= span
	if k < 0 {
		k += span
	}
	return lo + k
}
