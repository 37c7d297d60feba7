// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import "testing"

func TestIterLexicographicOrder(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"b", "ab", "abc", "a", "bcd"} {
		m.Insert([]byte(k), i)
	}
	var paths []string
	for p := range m.Iter() {
		paths = append(paths, string(p))
	}
	want := []string{"a", "ab", "abc", "b", "bcd"}
	if len(paths) != len(want) {
		t.Fatalf("Iter() yielded %d pairs, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("Iter() order = %v, want %v", paths, want)
		}
	}
}

func TestIterCountMatchesValCount(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"x", "xy", "xyz", "y"} {
		m.Insert([]byte(k), i)
	}
	n := 0
	for range m.Iter() {
		n++
	}
	if n != m.ValCount() {
		t.Fatalf("Iter() yielded %d pairs, ValCount() = %d, want equal", n, m.ValCount())
	}
}

func TestIterIncludesRootValue(t *testing.T) {
	m := New[int]()
	m.Insert(nil, 99)
	m.Insert([]byte("a"), 1)
	var got []int
	for _, v := range m.Iter() {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 99 || got[1] != 1 {
		t.Fatalf("Iter() = %v, want [99 1] (root value first, then a)", got)
	}
}

func TestIterEarlyStop(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "b", "c"} {
		m.Insert([]byte(k), i)
	}
	n := 0
	for range m.Iter() {
		n++
		if n == 1 {
			break
		}
	}
	if n != 1 {
		t.Fatalf("range-over-func break should stop after the first pair, got %d", n)
	}
}

func TestAllIsIter(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("a"), 1)
	m.Insert([]byte("b"), 2)
	var fromAll, fromIter []int
	for _, v := range m.All() {
		fromAll = append(fromAll, v)
	}
	for _, v := range m.Iter() {
		fromIter = append(fromIter, v)
	}
	if len(fromAll) != len(fromIter) {
		t.Fatalf("All() and Iter() disagree on count: %d vs %d", len(fromAll), len(fromIter))
	}
	for i := range fromAll {
		if fromAll[i] != fromIter[i] {
			t.Fatalf("All() and Iter() disagree at index %d: %v vs %v", i, fromAll, fromIter)
		}
	}
}

func TestIterEmptyMap(t *testing.T) {
	m := New[int]()
	n := 0
	for range m.Iter() {
		n++
	}
	if n != 0 {
		t.Fatalf("Iter() on an empty map yielded %d pairs, want 0", n)
	}
}
