// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"sort"

	"github.com/gammazero/deque"
	"github.com/gaissmai/pathmap/internal/node"
)

// CataEntry is one direct entry of a node being folded by Cata: its own
// segment and value, plus the already-folded result of its child subtrie,
// if it has one.
type CataEntry[V, R any] struct {
	Segment  []byte
	HasVal   bool
	Val      V
	HasChild bool
	Child    R
}

// Cata folds m's trie bottom-up into a single value of type R. combine is
// called once per node, receiving every direct entry of that node in
// ascending byte order, with each entry's Child already folded.
//
// Folding is memoized by SharedNodeID, so two handles that alias the same
// physical node -- because of COW structural sharing, after Clone, or
// because Join/Meet/Subtract/Restrict detected an Identity result and
// reused an operand's subtrie verbatim -- are folded exactly once and the
// cached result is reused. This is the minimal contract a merkleization
// collaborator would need -- a stable per-node identity plus guaranteed
// single-visit folding -- though the actual hashing is outside this
// module's scope.
//
// The traversal is iterative, using an explicit stack (gammazero/deque) of
// in-progress node folds rather than native recursion, so a deep or
// heavily skewed trie can't blow the call stack.
func Cata[V, R any](m *PathMap[V], combine func(entries []CataEntry[V, R]) R) R {
	return cataHandle(m.root, combine, make(map[uint64]R))
}

type cataFrame[V, R any] struct {
	h       node.Handle[V]
	tok     node.IterToken
	entries []CataEntry[V, R]
	slotIdx int // index into the parent frame's entries to fill on completion; -1 for the root frame
}

func cataHandle[V, R any](root node.Handle[V], combine func([]CataEntry[V, R]) R, memo map[uint64]R) R {
	var stack deque.Deque[*cataFrame[V, R]]
	stack.PushBack(&cataFrame[V, R]{h: root, tok: root.Node().NewIterToken(), slotIdx: -1})

	for {
		f := stack.Back()
		item, next, ok := f.h.Node().NextItems(f.tok)
		if !ok {
			// A TinyRefNode enumerates its entries unsorted; every child of f
			// has already been folded, so reordering its entries is safe here.
			sort.Slice(f.entries, func(i, j int) bool { return f.entries[i].Segment[0] < f.entries[j].Segment[0] })
			res := combine(f.entries)
			memo[f.h.SharedID()] = res
			stack.PopBack()
			if stack.Len() == 0 {
				return res
			}
			parent := stack.Back()
			parent.entries[f.slotIdx].Child = res
			continue
		}
		f.tok = next

		ce := CataEntry[V, R]{Segment: item.Segment, HasVal: item.HasVal, Val: item.Val, HasChild: !item.Child.IsNil()}
		if !ce.HasChild {
			f.entries = append(f.entries, ce)
			continue
		}
		if cached, seen := memo[item.Child.SharedID()]; seen {
			ce.Child = cached
			f.entries = append(f.entries, ce)
			continue
		}
		idx := len(f.entries)
		f.entries = append(f.entries, ce)
		stack.PushBack(&cataFrame[V, R]{h: item.Child, tok: item.Child.Node().NewIterToken(), slotIdx: idx})
	}
}
