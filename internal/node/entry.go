// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package node implements the four physical node representations behind
// PathMap's compressed bitmap trie, and the algebraic primitives
// (pjoin/pmeet/psubtract/prestrict) that operate on them through one shared,
// tagged-node interface. Path compression works over a full byte-path
// alphabet with variable-length compressed segments, split into a leaf
// case (segment ends in a value) and a fringe case (segment continues into
// a child) per entry.
package node

import "bytes"

// entry is one outgoing branch of a node. Its segment is the byte sequence
// consumed by following this branch; segment[0] is the byte that the node's
// BranchesMask reports. A segment longer than one byte is the line-list and
// tiny-ref variants' path compression: the bytes after segment[0] are
// consumed without any intermediate branch point.
//
// hasVal/val is the value stored exactly at the end of segment. child, when
// non-nil, is the node continuing immediately after segment; a nil child
// with a non-empty segment tail represents nothing further below this
// entry (a plain compressed leaf). An entry always represents at least one
// of a value or a child: a branch with neither is a dangling path, kept
// only when the caller suppressed pruning.
type entry[V any] struct {
	segment []byte
	hasVal  bool
	val     V
	child   Handle[V]
}

func (e *entry[V]) hasChild() bool {
	return !e.child.IsNil()
}

// commonPrefixLen returns the length of the shared prefix of a and b.
func commonPrefixLen(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func segEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// cloneEntry makes a value copy of e suitable for storing in a freshly
// uniquified node: the child handle is shared (COW), the segment is
// re-sliced defensively so mutating the copy never aliases the original's
// backing array.
func cloneEntry[V any](e *entry[V]) entry[V] {
	seg := make([]byte, len(e.segment))
	copy(seg, e.segment)
	return entry[V]{
		segment: seg,
		hasVal:  e.hasVal,
		val:     e.val,
		child:   e.child.Clone(),
	}
}
