// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package virtual

import (
	"bytes"

	"github.com/gaissmai/pathmap"
	"github.com/gaissmai/pathmap/internal/bitmask"
)

// PrefixZipper prepends an arbitrary, fixed path in front of a source
// ReadZipper's own path space, so the source never sees the prefix bytes:
// descending through the prefix is purely virtual bookkeeping, and only
// once the prefix is fully consumed does navigation forward to source.
type PrefixZipper[V any] struct {
	effectiveRoot []byte // prefix bytes, after any WithOrigin trim, that must be matched before reaching source
	matched       int    // how many bytes of effectiveRoot have been consumed
	valid         bool
	source        *pathmap.ReadZipper[V]
}

// NewPrefixZipper wraps source, prepending prefix.
func NewPrefixZipper[V any](prefix []byte, source *pathmap.ReadZipper[V]) *PrefixZipper[V] {
	return &PrefixZipper[V]{effectiveRoot: append([]byte(nil), prefix...), valid: true, source: source}
}

// WithOrigin restricts the zipper's own root to begin at sub, which must
// be a prefix of the zipper's currently configured prefix, and must be
// called before any descend. It fails (returns false) otherwise, leaving
// the zipper unchanged.
func (z *PrefixZipper[V]) WithOrigin(sub []byte) bool {
	if z.matched != 0 || !bytes.HasPrefix(z.effectiveRoot, sub) {
		return false
	}
	z.effectiveRoot = z.effectiveRoot[len(sub):]
	return true
}

// Path returns the virtual path from the zipper's own root.
func (z *PrefixZipper[V]) Path() []byte {
	if z.matched < len(z.effectiveRoot) {
		return append([]byte(nil), z.effectiveRoot[:z.matched]...)
	}
	return append(append([]byte(nil), z.effectiveRoot...), z.source.Path()...)
}

// PathExists reports whether the current position is reachable.
func (z *PrefixZipper[V]) PathExists() bool {
	if z.matched < len(z.effectiveRoot) {
		return z.valid
	}
	return z.source.PathExists()
}

// Val returns the value at the current position. A value can only exist
// once the fixed prefix has been fully consumed -- the prefix bytes
// themselves are virtual and carry no value of their own.
func (z *PrefixZipper[V]) Val() (val V, ok bool) {
	if z.matched < len(z.effectiveRoot) {
		return val, false
	}
	return z.source.Val()
}

// ChildMask returns the single-byte mask of the next fixed prefix byte
// while still inside the prefix region, or source's real child mask once
// past it.
func (z *PrefixZipper[V]) ChildMask() (m bitmask.ByteMask) {
	if z.matched < len(z.effectiveRoot) {
		m.Set(z.effectiveRoot[z.matched])
		return m
	}
	return z.source.ChildMask()
}

// IsLeaf reports whether the current position has no children.
func (z *PrefixZipper[V]) IsLeaf() bool {
	m := z.ChildMask()
	return m.IsEmpty()
}

// DescendByte moves one byte deeper, matching against the remaining fixed
// prefix first and only reaching source once the prefix is exhausted.
func (z *PrefixZipper[V]) DescendByte(b byte) bool {
	if z.matched < len(z.effectiveRoot) {
		if z.effectiveRoot[z.matched] == b {
			z.matched++
			return true
		}
		z.valid = false
		return false
	}
	return z.source.DescendByte(b)
}

// DescendTo moves along every byte of path.
func (z *PrefixZipper[V]) DescendTo(path []byte) bool {
	for _, b := range path {
		if !z.DescendByte(b) {
			return false
		}
	}
	return true
}

// AscendByte undoes the last descend, or reports false at the zipper's
// root.
func (z *PrefixZipper[V]) AscendByte() bool {
	if z.matched == len(z.effectiveRoot) && z.source.Depth() > 0 {
		return z.source.AscendByte()
	}
	if z.matched > 0 {
		z.matched--
		z.valid = true
		return true
	}
	return false
}

// Ascend moves up at most n bytes.
func (z *PrefixZipper[V]) Ascend(n int) int {
	for i := range n {
		if !z.AscendByte() {
			return i
		}
	}
	return n
}
