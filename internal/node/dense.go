// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import "github.com/gaissmai/pathmap/internal/bitmask"

// DenseNode is a full 256-slot byte array, one slot per possible branch
// byte. Every slot's entry has a length-1 segment: any path compression
// beyond the branch byte itself lives one level down, in the slot's child.
// This is the high fan-out variant -- lookups are O(1) array indexing.
type DenseNode[V any] struct {
	id    uint64
	mask  bitmask.ByteMask
	slots [256]*entry[V]
}

var _ Node[int] = (*DenseNode[int])(nil)

// NewDense returns an empty DenseNode.
func NewDense[V any]() *DenseNode[V] {
	return &DenseNode[V]{id: nextID()}
}

// adopt installs e, decompressing it to fit Dense's one-byte-segment
// invariant when e.segment is longer than one byte.
func (n *DenseNode[V]) adopt(e entry[V]) {
	b := e.segment[0]
	if len(e.segment) == 1 {
		n.mask.Set(b)
		n.slots[b] = &e
		return
	}
	remainder := entry[V]{segment: append([]byte(nil), e.segment[1:]...), hasVal: e.hasVal, val: e.val, child: e.child}
	n.mask.Set(b)
	n.slots[b] = &entry[V]{segment: []byte{b}, child: NewHandle[V](newTinyRefWithEntry(remainder))}
}

func (n *DenseNode[V]) SharedNodeID() uint64 { return n.id }
func (n *DenseNode[V]) IsEmpty() bool        { return n.mask.IsEmpty() }
func (n *DenseNode[V]) CountBranches() int   { return n.mask.Cardinality() }

func (n *DenseNode[V]) BranchesMask(nodeKey []byte) bitmask.ByteMask {
	if len(nodeKey) == 0 {
		return n.mask
	}
	var m bitmask.ByteMask
	if len(nodeKey) == 1 && n.mask.Test(nodeKey[0]) {
		m.Set(nodeKey[0])
	}
	return m
}

func (n *DenseNode[V]) ContainsPartialKey(nodeKey []byte) bool {
	if len(nodeKey) == 0 {
		return !n.mask.IsEmpty()
	}
	if !n.mask.Test(nodeKey[0]) {
		return false
	}
	if len(nodeKey) == 1 {
		return true
	}
	e := n.slots[nodeKey[0]]
	return e.hasChild() && e.child.Node().ContainsPartialKey(nodeKey[1:])
}

func (n *DenseNode[V]) GetChild(nodeKey []byte) (consumed int, h Handle[V], ok bool) {
	if len(nodeKey) == 0 || !n.mask.Test(nodeKey[0]) {
		return 0, Handle[V]{}, false
	}
	e := n.slots[nodeKey[0]]
	if !e.hasChild() {
		return 0, Handle[V]{}, false
	}
	return 1, e.child, true
}

func (n *DenseNode[V]) GetVal(nodeKey []byte) (val V, ok bool) {
	if len(nodeKey) == 0 || !n.mask.Test(nodeKey[0]) {
		return val, false
	}
	e := n.slots[nodeKey[0]]
	if len(nodeKey) == 1 {
		return e.val, e.hasVal
	}
	if !e.hasChild() {
		return val, false
	}
	return e.child.Node().GetVal(nodeKey[1:])
}

func (n *DenseNode[V]) SetVal(nodeKey []byte, val V) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return old, false, nil
	}
	b := nodeKey[0]
	if len(nodeKey) == 1 {
		if n.mask.Test(b) {
			e := n.slots[b]
			old, had = e.val, e.hasVal
			e.val, e.hasVal = val, true
			return old, had, nil
		}
		n.mask.Set(b)
		n.slots[b] = &entry[V]{segment: []byte{b}, hasVal: true, val: val}
		return old, false, nil
	}
	// Multi-byte key: descend into (or create) this slot's child.
	if !n.mask.Test(b) {
		n.mask.Set(b)
		n.slots[b] = &entry[V]{segment: []byte{b}, child: NewHandle[V](NewTinyRef[V]())}
	}
	e := n.slots[b]
	if !e.hasChild() {
		e.child = NewHandle[V](NewTinyRef[V]())
	}
	child := e.child.MakeMut()
	old, had, upg := child.SetVal(nodeKey[1:], val)
	if upg != nil {
		e.child.SetNode(upg)
	}
	return old, had, nil
}

func (n *DenseNode[V]) RemoveVal(nodeKey []byte) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 || !n.mask.Test(nodeKey[0]) {
		return old, false, nil
	}
	e := n.slots[nodeKey[0]]
	if len(nodeKey) == 1 {
		old, had = e.val, e.hasVal
		e.hasVal = false
		var zero V
		e.val = zero
		if !e.hasVal && !e.hasChild() {
			n.mask.Clear(nodeKey[0])
			n.slots[nodeKey[0]] = nil
		}
		return old, had, nil
	}
	if !e.hasChild() {
		return old, false, nil
	}
	child := e.child.MakeMut()
	old, had, upg := child.RemoveVal(nodeKey[1:])
	if upg != nil {
		e.child.SetNode(upg)
	}
	return old, had, nil
}

func (n *DenseNode[V]) SetBranch(nodeKey []byte, child Handle[V]) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return nil
	}
	b := nodeKey[0]
	if len(nodeKey) == 1 {
		if n.mask.Test(b) {
			n.slots[b].child = child
			return nil
		}
		n.mask.Set(b)
		n.slots[b] = &entry[V]{segment: []byte{b}, child: child}
		return nil
	}
	if !n.mask.Test(b) {
		n.mask.Set(b)
		n.slots[b] = &entry[V]{segment: []byte{b}, child: NewHandle[V](NewTinyRef[V]())}
	}
	e := n.slots[b]
	if !e.hasChild() {
		e.child = NewHandle[V](NewTinyRef[V]())
	}
	sub := e.child.MakeMut()
	upg := sub.SetBranch(nodeKey[1:], child)
	if upg != nil {
		e.child.SetNode(upg)
	}
	return nil
}

func (n *DenseNode[V]) TakeNodeAtKey(nodeKey []byte) (removed Handle[V], had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 || !n.mask.Test(nodeKey[0]) {
		return Handle[V]{}, false, nil
	}
	e := n.slots[nodeKey[0]]
	if len(nodeKey) == 1 {
		if !e.hasChild() {
			return Handle[V]{}, false, nil
		}
		removed = e.child
		e.child = Handle[V]{}
		if !e.hasVal {
			n.mask.Clear(nodeKey[0])
			n.slots[nodeKey[0]] = nil
		}
		return removed, true, nil
	}
	if !e.hasChild() {
		return Handle[V]{}, false, nil
	}
	child := e.child.MakeMut()
	r, had2, upg := child.TakeNodeAtKey(nodeKey[1:])
	if upg != nil {
		e.child.SetNode(upg)
	}
	return r, had2, nil
}

func (n *DenseNode[V]) RemoveAllBranches(nodeKey []byte) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		n.mask = bitmask.ByteMask{}
		n.slots = [256]*entry[V]{}
		return nil
	}
	b := nodeKey[0]
	if !n.mask.Test(b) {
		return nil
	}
	if len(nodeKey) == 1 {
		n.mask.Clear(b)
		n.slots[b] = nil
		return nil
	}
	e := n.slots[b]
	if !e.hasChild() {
		return nil
	}
	child := e.child.MakeMut()
	upg := child.RemoveAllBranches(nodeKey[1:])
	if upg != nil {
		e.child.SetNode(upg)
		child = upg
	}
	if child.IsEmpty() {
		if e.hasVal {
			e.child = Handle[V]{}
		} else {
			n.mask.Clear(b)
			n.slots[b] = nil
		}
	}
	return nil
}

func (n *DenseNode[V]) RemoveUnmaskedBranches(keep bitmask.ByteMask) (upgraded Node[V]) {
	n.mask = n.mask.Intersection(&keep)
	for b := 0; b < 256; b++ {
		if !n.mask.Test(byte(b)) {
			n.slots[b] = nil
		}
	}
	return nil
}

func (n *DenseNode[V]) NewIterToken() IterToken { return IterToken{} }

func (n *DenseNode[V]) NextItems(tok IterToken) (item IterItem[V], next IterToken, ok bool) {
	b, found := n.mask.IndexedBit(tok.idx)
	if !found {
		return item, tok, false
	}
	e := n.slots[b]
	return IterItem[V]{Segment: e.segment, HasVal: e.hasVal, Val: e.val, Child: e.child}, IterToken{idx: tok.idx + 1}, true
}

func (n *DenseNode[V]) CloneSelf() Node[V] {
	out := &DenseNode[V]{id: nextID(), mask: n.mask}
	for b := range n.slots {
		if n.slots[b] != nil {
			c := cloneEntry(n.slots[b])
			out.slots[b] = &c
		}
	}
	return out
}

func (n *DenseNode[V]) PJoin(other Node[V], joinVal func(a, b V) V) AlgebraicResult[V] {
	return genericJoin[V](n, other, joinVal)
}

func (n *DenseNode[V]) PMeet(other Node[V], meetVal func(a, b V) V) AlgebraicResult[V] {
	return genericMeet[V](n, other, meetVal)
}

func (n *DenseNode[V]) PSubtract(other Node[V], subtractVal func(a, b V) (V, bool)) AlgebraicResult[V] {
	return genericSubtract[V](n, other, subtractVal)
}

func (n *DenseNode[V]) PRestrict(other Node[V]) AlgebraicResult[V] {
	return genericRestrict[V](n, other)
}
