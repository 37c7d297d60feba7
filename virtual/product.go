// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package virtual

import (
	"github.com/gaissmai/pathmap"
	"github.com/gaissmai/pathmap/internal/bitmask"
)

// ProductZipper moves through the Cartesian-product trie formed by
// extending each path of a primary factor with the root of the next
// factor, recursively, for every factor supplied. A full product path is a
// concatenation of one complete word from each factor in order.
//
// Transition from factor i to factor i+1 happens exactly when the current
// position in factor i both has a value and is a leaf -- an unambiguous
// end of that factor's word. This is a deliberate narrowing of the
// originating crate's ProductZipper, which also allows branching into the
// next factor at a value position that still has sibling continuations
// within the same factor; see DESIGN.md.
//
// Only the last factor's own values surface as the product's values: a
// value reached partway through an earlier factor marks a factor boundary,
// not a complete product word.
type ProductZipper[V any] struct {
	factors []*pathmap.ReadZipper[V]
	path    []byte
}

// NewProductZipper builds a ProductZipper from factors, each expected to
// be positioned at its own root.
func NewProductZipper[V any](factors ...*pathmap.ReadZipper[V]) *ProductZipper[V] {
	return &ProductZipper[V]{factors: factors}
}

// locate replays path from the first factor's root, returning the active
// factor index and a freshly positioned fork of it.
func (p *ProductZipper[V]) locate(path []byte) (idx int, z *pathmap.ReadZipper[V], ok bool) {
	z, _ = p.factors[0].Fork()
	for _, b := range path {
		if !z.DescendByte(b) {
			return idx, z, false
		}
		if idx < len(p.factors)-1 {
			if _, hasVal := z.Val(); hasVal && z.IsLeaf() {
				idx++
				z, _ = p.factors[idx].Fork()
			}
		}
	}
	return idx, z, true
}

// Path returns the product zipper's absolute path, spanning all factors
// consumed so far.
func (p *ProductZipper[V]) Path() []byte { return append([]byte(nil), p.path...) }

// PathExists reports whether the current position is reachable across
// every factor boundary crossed so far.
func (p *ProductZipper[V]) PathExists() bool {
	_, _, ok := p.locate(p.path)
	return ok
}

// Val returns the value at the current position -- only ever non-empty
// when positioned in the last factor.
func (p *ProductZipper[V]) Val() (val V, ok bool) {
	idx, z, located := p.locate(p.path)
	if !located || idx != len(p.factors)-1 {
		return val, false
	}
	return z.Val()
}

// ChildMask returns the active factor's child mask at the current
// position.
func (p *ProductZipper[V]) ChildMask() (m bitmask.ByteMask) {
	_, z, ok := p.locate(p.path)
	if !ok {
		return m
	}
	return z.ChildMask()
}

// IsLeaf reports whether the current position has no children in the
// active factor.
func (p *ProductZipper[V]) IsLeaf() bool {
	m := p.ChildMask()
	return m.IsEmpty()
}

// FactorIndex returns which factor (0-based) is currently active.
func (p *ProductZipper[V]) FactorIndex() int {
	idx, _, _ := p.locate(p.path)
	return idx
}

// DescendByte moves one byte deeper, possibly crossing into the next
// factor.
func (p *ProductZipper[V]) DescendByte(b byte) bool {
	_, _, ok := p.locate(append(append([]byte(nil), p.path...), b))
	p.path = append(p.path, b)
	return ok
}

// DescendTo moves along every byte of path.
func (p *ProductZipper[V]) DescendTo(path []byte) bool {
	ok := true
	for _, b := range path {
		if !p.DescendByte(b) {
			ok = false
		}
	}
	return ok
}

// AscendByte undoes the last descend, or reports false at the zipper's
// root.
func (p *ProductZipper[V]) AscendByte() bool {
	if len(p.path) == 0 {
		return false
	}
	p.path = p.path[:len(p.path)-1]
	return true
}

// Ascend moves up at most n bytes.
func (p *ProductZipper[V]) Ascend(n int) int {
	if n > len(p.path) {
		n = len(p.path)
	}
	p.path = p.path[:len(p.path)-n]
	return n
}
