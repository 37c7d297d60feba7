// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import "testing"

func TestCataCountsAllValues(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "ab", "abc", "b", "bcd"} {
		m.Insert([]byte(k), i)
	}
	count := Cata(m, func(entries []CataEntry[int, int]) int {
		total := 0
		for _, e := range entries {
			if e.HasVal {
				total++
			}
			if e.HasChild {
				total += e.Child
			}
		}
		return total
	})
	if count != 5 {
		t.Fatalf("Cata value count = %d, want 5", count)
	}
}

func TestCataAfterCloneAndMutation(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("shared/x"), 1)
	m.Insert([]byte("shared/y"), 2)

	cloned := m.Clone()
	cloned.Insert([]byte("extra"), 3)

	// m shares most of its trie with cloned via COW, but Cata must still
	// fold each map to its own correct, independent value count.
	countOf := func(pm *PathMap[int]) int {
		return Cata(pm, func(entries []CataEntry[int, int]) int {
			total := 0
			for _, e := range entries {
				if e.HasVal {
					total++
				}
				if e.HasChild {
					total += e.Child
				}
			}
			return total
		})
	}
	if n := countOf(m); n != 2 {
		t.Fatalf("Cata(m) = %d, want 2", n)
	}
	if n := countOf(cloned); n != 3 {
		t.Fatalf("Cata(cloned) = %d, want 3", n)
	}
}

func TestCataEmptyMap(t *testing.T) {
	m := New[string]()
	result := Cata(m, func(entries []CataEntry[string, int]) int {
		return len(entries)
	})
	if result != 0 {
		t.Fatalf("Cata over an empty map = %d, want 0", result)
	}
}
