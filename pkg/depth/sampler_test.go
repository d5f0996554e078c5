package depth

import (
	"math"
	"testing"
)

func TestRandSampler_ClosedRange(t *testing.T) {
	s := NewRandSampler(7)
	seen := map[int]bool{}

	for i := 0; i < 2000; i++ {
		v := s.IntInRange(3, 6)
		if v < 3 || v > 6 {
			t.Fatalf("IntInRange(3, 6) = %d", v)
		}
		seen[v] = true
	}

	for v := 3; v <= 6; v++ {
		if !seen[v] {
			t.Errorf("value %d never drawn; upper bound must be inclusive", v)
		}
	}
}

func TestRandSampler_Degenerate(t *testing.T) {
	s := NewRandSampler(7)
	for i := 0; i < 100; i++ {
		if v := s.IntInRange(12, 12); v != 12 {
			t.Fatalf("IntInRange(12, 12) = %d", v)
		}
	}
}

func TestRandSampler_InvertedRange(t *testing.T) {
	s := NewRandSampler(7)
	for i := 0; i < 500; i++ {
		v := s.IntInRange(9, 2)
		if v < 2 || v > 9 {
			t.Fatalf("IntInRange(9, 2) = %d", v)
		}
	}
}

func TestRandSampler_Reseed(t *testing.T) {
	s := NewRandSampler(11)
	first := make([]int, 20)
	for i := range first {
		first[i] = s.IntInRange(0, 1000)
	}

	s.Reseed(11)
	for i, want := range first {
		if got := s.IntInRange(0, 1000); got != want {
			t.Fatalf("draw %d after reseed = %d, want %d", i, got, want)
		}
	}
}

func TestSequenceSampler(t *testing.T) {
	s := NewSequenceSampler(0, 5, -1)

	tests := []struct {
		lo, hi, want int
	}{
		{10, 20, 10},
		{10, 20, 15},
		{10, 20, 20}, // -1 wraps to the top of the range
		{0, 2, 0},    // sequence wraps
		{4, 4, 4},    // degenerate does not consume
		{0, 2, 2},    // 5 mod 3
	}

	for i, tc := range tests {
		if got := s.IntInRange(tc.lo, tc.hi); got != tc.want {
			t.Errorf("step %d: IntInRange(%d, %d) = %d, want %d", i, tc.lo, tc.hi, got, tc.want)
		}
	}

	empty := NewSequenceSampler()
	if got := empty.IntInRange(3, 8); got != 3 {
		t.Errorf("empty sequence = %d, want 3", got)
	}
}

func TestMap(t *testing.T) {
	m := NewMap(4, 3)
	m.Set(2, 1, 1500)
	m.Set(10, 10, 999) // ignored

	if got := m.DistanceAt(2, 1); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("DistanceAt(2,1) = %v, want 1.5", got)
	}
	if got := m.DistanceAt(0, 0); got != 0 {
		t.Errorf("DistanceAt(0,0) = %v, want 0 (hole)", got)
	}
	if got := m.DistanceAt(-1, 5); got != 0 {
		t.Errorf("out of bounds = %v, want 0", got)
	}
	if !m.Valid() {
		t.Error("expected valid map")
	}
	if (&Map{Width: 2, Height: 2, Data: make([]uint16, 3)}).Valid() {
		t.Error("short data should be invalid")
	}
}
