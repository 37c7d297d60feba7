// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package virtual

import "github.com/gaissmai/pathmap/internal/bitmask"

// EmptyZipper is a zipper over the completely empty trie: every descend
// still moves its path buffer (so callers composing it with other zippers
// see consistent path bookkeeping) but never finds a value or a branch.
// It is useful in tests that need a zipper without a backing PathMap;
// OverlayZipper and ProductZipper take *pathmap.ReadZipper operands, so it
// cannot be passed to them.
type EmptyZipper[V any] struct {
	rootLen int
	path    []byte
}

// NewEmptyZipper returns an EmptyZipper rooted at the empty path.
func NewEmptyZipper[V any]() *EmptyZipper[V] {
	return &EmptyZipper[V]{}
}

// NewEmptyZipperAtPath returns an EmptyZipper whose Path reports relative
// to the given root path -- mirroring ZipperAbsolutePath's root_prefix_path
// for a zipper with no backing storage.
func NewEmptyZipperAtPath[V any](path []byte) *EmptyZipper[V] {
	p := append([]byte(nil), path...)
	return &EmptyZipper[V]{rootLen: len(p), path: p}
}

func (z *EmptyZipper[V]) Path() []byte { return append([]byte(nil), z.path[z.rootLen:]...) }

func (*EmptyZipper[V]) PathExists() bool { return false }

func (*EmptyZipper[V]) Val() (val V, ok bool) { return val, false }

func (*EmptyZipper[V]) ChildMask() (m bitmask.ByteMask) { return m }

func (*EmptyZipper[V]) IsLeaf() bool { return true }

func (z *EmptyZipper[V]) DescendByte(b byte) bool {
	z.path = append(z.path, b)
	return false
}

func (z *EmptyZipper[V]) DescendTo(path []byte) bool {
	z.path = append(z.path, path...)
	return len(path) == 0
}

func (z *EmptyZipper[V]) AscendByte() bool {
	if len(z.path) <= z.rootLen {
		return false
	}
	z.path = z.path[:len(z.path)-1]
	return true
}

func (z *EmptyZipper[V]) Ascend(n int) int {
	for i := range n {
		if !z.AscendByte() {
			return i
		}
	}
	return n
}
