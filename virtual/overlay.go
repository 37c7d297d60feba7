// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package virtual implements zippers over virtual tries: structures formed
// by composing other zippers on the fly rather than by materializing a new
// PathMap. None of these allocate trie nodes; they recompute their view
// from the underlying zippers on every navigation call.
package virtual

import (
	"github.com/gaissmai/pathmap"
	"github.com/gaissmai/pathmap/internal/bitmask"
)

// OverlayZipper traverses the virtual trie formed by fusing two read
// zippers' tries, keyed on the same path space but with independent value
// types, combined on the fly through Mapping. Its child mask is the union
// of both sides', so navigation sees a path as soon as either side does.
//
// Mapping decides, at every position, what OverlayZipper's own value is
// given what each side holds there -- it is not fixed to "A wins" or
// "union of values": the caller supplies it, matching the Rust crate's
// generic `Mapping` type parameter on OverlayZipper rather than hard-coding
// the merge to a join.
type OverlayZipper[AV, BV, OutV any] struct {
	a       *pathmap.ReadZipper[AV]
	b       *pathmap.ReadZipper[BV]
	mapping func(a *AV, b *BV) *OutV
}

// NewOverlayZipper constructs an OverlayZipper that prefers a's value when
// both sides have one -- the identity_ref default from the originating
// crate's OverlayZipper::new.
func NewOverlayZipper[V any](a, b *pathmap.ReadZipper[V]) *OverlayZipper[V, V, V] {
	return NewOverlayZipperWithMapping(a, b, func(av, bv *V) *V {
		if av != nil {
			return av
		}
		return bv
	})
}

// NewOverlayZipperWithMapping constructs an OverlayZipper with an explicit
// value-combining function.
func NewOverlayZipperWithMapping[AV, BV, OutV any](a *pathmap.ReadZipper[AV], b *pathmap.ReadZipper[BV], mapping func(a *AV, b *BV) *OutV) *OverlayZipper[AV, BV, OutV] {
	return &OverlayZipper[AV, BV, OutV]{a: a, b: b, mapping: mapping}
}

// Path returns the common path both inner zippers have been driven to.
func (z *OverlayZipper[AV, BV, OutV]) Path() []byte { return z.a.Path() }

// PathExists reports whether either side's path is reachable.
func (z *OverlayZipper[AV, BV, OutV]) PathExists() bool {
	return z.a.PathExists() || z.b.PathExists()
}

// Val returns the combined value at the current position, via Mapping.
func (z *OverlayZipper[AV, BV, OutV]) Val() (out OutV, ok bool) {
	var avp *AV
	if av, aok := z.a.Val(); aok {
		avp = &av
	}
	var bvp *BV
	if bv, bok := z.b.Val(); bok {
		bvp = &bv
	}
	res := z.mapping(avp, bvp)
	if res == nil {
		return out, false
	}
	return *res, true
}

// ChildMask returns the union of both sides' child masks.
func (z *OverlayZipper[AV, BV, OutV]) ChildMask() (m bitmask.ByteMask) {
	am, bm := z.a.ChildMask(), z.b.ChildMask()
	return am.Union(&bm)
}

// IsLeaf reports whether neither side has children here.
func (z *OverlayZipper[AV, BV, OutV]) IsLeaf() bool {
	m := z.ChildMask()
	return m.IsEmpty()
}

// DescendByte steps both inner zippers by b.
func (z *OverlayZipper[AV, BV, OutV]) DescendByte(b byte) bool {
	okA := z.a.DescendByte(b)
	okB := z.b.DescendByte(b)
	return okA || okB
}

// DescendTo steps both inner zippers along path.
func (z *OverlayZipper[AV, BV, OutV]) DescendTo(path []byte) bool {
	ok := true
	for _, b := range path {
		if !z.DescendByte(b) {
			ok = false
		}
	}
	return ok
}

// AscendByte undoes the last descend on both sides.
func (z *OverlayZipper[AV, BV, OutV]) AscendByte() bool {
	okA := z.a.AscendByte()
	okB := z.b.AscendByte()
	return okA || okB
}

// Ascend moves up at most n bytes on both sides.
func (z *OverlayZipper[AV, BV, OutV]) Ascend(n int) int {
	for i := range n {
		if !z.AscendByte() {
			return i
		}
	}
	return n
}

// ToNextSiblingByte advances both sides to the next byte present in the
// union child mask of their shared parent.
func (z *OverlayZipper[AV, BV, OutV]) ToNextSiblingByte() bool {
	return z.toSibling(true)
}

// ToPrevSiblingByte advances both sides to the previous byte present in
// the union child mask of their shared parent.
func (z *OverlayZipper[AV, BV, OutV]) ToPrevSiblingByte() bool {
	return z.toSibling(false)
}

func (z *OverlayZipper[AV, BV, OutV]) toSibling(next bool) bool {
	path := z.Path()
	if len(path) == 0 {
		return false
	}
	last := path[len(path)-1]
	z.AscendByte()
	mask := z.ChildMask()
	var (
		target byte
		ok     bool
	)
	if next {
		target, ok = mask.NextBit(last)
	} else {
		target, ok = mask.PrevBit(last)
	}
	if !ok {
		z.DescendByte(last)
		return false
	}
	z.DescendByte(target)
	return true
}
