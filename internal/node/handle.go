// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import "sync/atomic"

// idCounter hands out stable shared-node identities.
var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}

// box is the shared, reference-counted body behind every Handle. Multiple
// Handles may point at the same box; make_mut uniquifies by cloning the box
// (and assigning the clone a fresh id) the moment the refcount is found to
// exceed one.
type box[V any] struct {
	rc atomic.Int32
	id uint64
	n  Node[V]
}

// Handle is a reference-counted, copy-on-write wrapper around a Node. It is
// the unit of structural sharing between tries: cloning a Handle is an
// atomic increment, and multiple handles may alias the same physical node
// until MakeMut forces a private copy.
//
// The zero Handle is valid and denotes "no child": n == nil.
type Handle[V any] struct {
	b *box[V]
}

// NewHandle wraps n in a freshly allocated, uniquely owned box.
func NewHandle[V any](n Node[V]) Handle[V] {
	b := &box[V]{id: nextID(), n: n}
	b.rc.Store(1)
	return Handle[V]{b: b}
}

// IsNil reports whether the handle denotes "no child".
func (h Handle[V]) IsNil() bool {
	return h.b == nil
}

// Node returns the handle's node for reading. Callers must not mutate the
// result in place; use MakeMut for that.
func (h Handle[V]) Node() Node[V] {
	if h.b == nil {
		return nil
	}
	return h.b.n
}

// SharedID returns the handle's stable shared-node identity, or 0 for a nil
// handle. Two non-nil handles with equal SharedID values refer to
// bit-identical subtries: the memoization key for catamorphisms (cata.go).
func (h Handle[V]) SharedID() uint64 {
	if h.b == nil {
		return 0
	}
	return h.b.id
}

// Clone increments the refcount and returns a new Handle aliasing the same
// physical node. O(1), which is what makes zipper forking and map.Clone
// cheap regardless of subtrie size.
func (h Handle[V]) Clone() Handle[V] {
	if h.b == nil {
		return h
	}
	h.b.rc.Add(1)
	return h
}

// Release decrements the refcount. Nodes are not pooled: Go's GC reclaims
// the memory, and Release only keeps the refcount honest so MakeMut knows
// when a node is uniquely owned.
func (h Handle[V]) Release() {
	if h.b == nil {
		return
	}
	h.b.rc.Add(-1)
}

// Shared reports whether more than one Handle currently aliases this box.
func (h Handle[V]) Shared() bool {
	return h.b != nil && h.b.rc.Load() > 1
}

// MakeMut returns a Node safe to mutate in place. If the box is uniquely
// owned (refcount == 1) it returns the existing node unchanged -- true
// in-place mutation, no allocation. If the box is shared, it clones the
// node (CloneSelf: a shallow, COW clone whose children remain shared
// handles), installs the clone in a fresh, uniquely-owned box, and returns
// that. The caller's Handle is updated in place via the pointer receiver so
// every subsequent access sees the uniquified box.
func (h *Handle[V]) MakeMut() Node[V] {
	if h.b == nil {
		n := Node[V](nil)
		h.b = &box[V]{id: nextID(), n: n}
		h.b.rc.Store(1)
		return nil
	}
	if h.b.rc.Load() == 1 {
		return h.b.n
	}
	clone := h.b.n.CloneSelf()
	h.b.rc.Add(-1)
	h.b = &box[V]{id: nextID(), n: clone}
	h.b.rc.Store(1)
	return clone
}

// SetNode replaces the node stored in an already-uniquely-owned box, used
// after an algebraic op or an upgrade produces a brand new node that must
// take over the handle's identity.
func (h *Handle[V]) SetNode(n Node[V]) {
	if h.b == nil || h.b.rc.Load() != 1 {
		h.b = &box[V]{id: nextID(), n: n}
		h.b.rc.Store(1)
		return
	}
	h.b.n = n
}
