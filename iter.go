// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"iter"
	"sort"

	"github.com/gammazero/deque"
	"github.com/gaissmai/pathmap/internal/node"
	"github.com/gaissmai/pathmap/internal/nodepool"
)

// Iter returns a lexicographically-ordered sequence of every (path, value)
// pair stored in m, including a value at the empty path, if any. The
// number of pairs yielded always equals ValCount.
//
// Traversal is iterative, an explicit stack of in-progress node visits
// (mirroring Cata) rather than native recursion, so a deep or heavily
// skewed trie can't blow the call stack.
func (m *PathMap[V]) Iter() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		if val, ok := m.root.Node().GetVal(nil); ok {
			if !yield(nil, val) {
				return
			}
		}
		iterNode(m.root.Node(), yield)
	}
}

// All is Iter under the name Go's range-over-func convention favors for a
// type's "default" sequence.
func (m *PathMap[V]) All() iter.Seq2[[]byte, V] {
	return m.Iter()
}

type iterFrame[V any] struct {
	entries []node.IterItem[V]
	idx     int
	prefix  []byte
}

// collectSorted gathers n's direct entries and orders them by first byte.
// Every variant except TinyRefNode already stores entries in that order;
// TinyRefNode's unsorted linear-scan storage is the one case this sort
// isn't a no-op for.
func collectSorted[V any](n node.Node[V]) []node.IterItem[V] {
	var entries []node.IterItem[V]
	tok := n.NewIterToken()
	for {
		item, next, ok := n.NextItems(tok)
		if !ok {
			break
		}
		entries = append(entries, item)
		tok = next
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Segment[0] < entries[j].Segment[0] })
	return entries
}

// framePool reuses iterFrame allocations within a single traversal: a deep
// or wide trie pushes and pops one frame per level/sibling, and handing the
// popped struct back for the next push avoids re-allocating it. Scoped to
// one iterNode call rather than package-level, since iterFrame is generic
// over V.
func iterNode[V any](root node.Node[V], yield func([]byte, V) bool) bool {
	framePool := nodepool.New(func() *iterFrame[V] { return &iterFrame[V]{} })

	push := func(stack *deque.Deque[*iterFrame[V]], entries []node.IterItem[V], prefix []byte) {
		f := framePool.Get()
		f.entries, f.idx, f.prefix = entries, 0, prefix
		stack.PushBack(f)
	}

	var stack deque.Deque[*iterFrame[V]]
	push(&stack, collectSorted(root), nil)

	for stack.Len() > 0 {
		f := stack.Back()
		if f.idx >= len(f.entries) {
			stack.PopBack()
			framePool.Put(f)
			continue
		}
		item := f.entries[f.idx]
		f.idx++

		path := append(append([]byte(nil), f.prefix...), item.Segment...)
		if item.HasVal {
			if !yield(path, item.Val) {
				return false
			}
		}
		if child := item.Child.Node(); child != nil {
			push(&stack, collectSorted(child), path)
		}
	}
	return true
}
