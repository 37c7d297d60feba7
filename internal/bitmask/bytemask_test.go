// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitmask

import (
	"math/rand"
	"testing"
)

func TestZeroValue(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("a zero value ByteMask must not panic: %v", r)
		}
	}()

	var m ByteMask
	m.Set(0)
	m.Clear(100)
	m.Cardinality()
	m.Test(42)
	m.NextBit(0)
	m.PrevBit(255)
	m.AsSlice(nil)
	m.All()
	m.Left(200)
	m.IndexedBit(0)

	var o ByteMask
	_ = m.Union(&o)
	_ = m.Intersection(&o)
	_ = m.Difference(&o)
	m.IntersectsAny(&o)
}

func TestSetTestClear(t *testing.T) {
	var m ByteMask
	for _, b := range []byte{0, 1, 63, 64, 65, 127, 128, 200, 255} {
		if m.Test(b) {
			t.Fatalf("byte %d set before insert", b)
		}
		m.Set(b)
		if !m.Test(b) {
			t.Fatalf("byte %d not set after insert", b)
		}
		m.Clear(b)
		if m.Test(b) {
			t.Fatalf("byte %d still set after clear", b)
		}
	}
}

func TestCardinalityAndAll(t *testing.T) {
	var m ByteMask
	want := []byte{3, 7, 64, 130, 255}
	for _, b := range want {
		m.Set(b)
	}
	if got := m.Cardinality(); got != len(want) {
		t.Fatalf("Cardinality() = %d, want %d", got, len(want))
	}
	got := m.All()
	if len(got) != len(want) {
		t.Fatalf("All() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("All()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLeftAndIndexedBitInverse(t *testing.T) {
	var m ByteMask
	members := []byte{2, 5, 64, 65, 200, 254}
	for _, b := range members {
		m.Set(b)
	}

	for rank, b := range members {
		if left := m.Left(b); left != rank {
			t.Fatalf("Left(%d) = %d, want %d", b, left, rank)
		}
		got, ok := m.IndexedBit(rank)
		if !ok || got != b {
			t.Fatalf("IndexedBit(%d) = (%d, %v), want (%d, true)", rank, got, ok, b)
		}
	}
	if _, ok := m.IndexedBit(len(members)); ok {
		t.Fatalf("IndexedBit out of range should report ok=false")
	}
}

func TestNextPrevBitSiblings(t *testing.T) {
	var m ByteMask
	for _, b := range []byte{10, 20, 30} {
		m.Set(b)
	}

	if n, ok := m.NextBit(10); !ok || n != 20 {
		t.Fatalf("NextBit(10) = (%d, %v), want (20, true)", n, ok)
	}
	if n, ok := m.NextBit(30); ok {
		t.Fatalf("NextBit(30) = (%d, %v), want ok=false", n, ok)
	}
	if p, ok := m.PrevBit(30); !ok || p != 20 {
		t.Fatalf("PrevBit(30) = (%d, %v), want (20, true)", p, ok)
	}
	if p, ok := m.PrevBit(10); ok {
		t.Fatalf("PrevBit(10) = (%d, %v), want ok=false", p, ok)
	}
}

func TestUnionIntersectionDifference(t *testing.T) {
	var a, b ByteMask
	for _, x := range []byte{1, 2, 3, 250} {
		a.Set(x)
	}
	for _, x := range []byte{2, 3, 4, 251} {
		b.Set(x)
	}

	u := a.Union(&b)
	if u.Cardinality() != 6 {
		t.Fatalf("Union cardinality = %d, want 6", u.Cardinality())
	}

	i := a.Intersection(&b)
	if i.Cardinality() != 2 || !i.Test(2) || !i.Test(3) {
		t.Fatalf("Intersection wrong: %v", i.All())
	}

	d := a.Difference(&b)
	if d.Cardinality() != 2 || !d.Test(1) || !d.Test(250) {
		t.Fatalf("Difference wrong: %v", d.All())
	}

	if !a.IntersectsAny(&b) {
		t.Fatalf("IntersectsAny should be true")
	}

	var empty ByteMask
	if a.IntersectsAny(&empty) {
		t.Fatalf("IntersectsAny with empty should be false")
	}
}

func TestRandomizedLeftMatchesPopcountBelow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var m ByteMask
	present := map[byte]bool{}
	for range 64 {
		b := byte(rng.Intn(256))
		m.Set(b)
		present[b] = true
	}

	for b := 0; b < 256; b++ {
		want := 0
		for lo := 0; lo < b; lo++ {
			if present[byte(lo)] {
				want++
			}
		}
		if got := m.Left(byte(b)); got != want {
			t.Fatalf("Left(%d) = %d, want %d", b, got, want)
		}
	}
}
