// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import "github.com/gaissmai/pathmap/internal/bitmask"

// CellNode is a popcount-compressed sparse array: one slot per set bit in
// mask, indexed by mask.Left(b) rather than by b itself, giving rank-indexed
// insert/delete without wasting a slot per unset byte.
//
// CellNode additionally externalizes a value at this node's own position
// (nodeKey == ""), something Dense/LineList/TinyRef never need: the value
// one level up is always held by the parent entry's hasVal/val, not by the
// child node. A ZipperHead (see zipperhead.go) converts the node at a
// registered root boundary into a CellNode precisely so a write zipper
// rooted there, handed only the subtree's Handle and no parent context, can
// still read and mutate the value that sits exactly at its own root.
type CellNode[V any] struct {
	id         uint64
	mask       bitmask.ByteMask
	items      []entry[V]
	hasRootVal bool
	rootVal    V
}

var _ Node[int] = (*CellNode[int])(nil)

// NewCell returns an empty CellNode.
func NewCell[V any]() *CellNode[V] {
	return &CellNode[V]{id: nextID()}
}

// ToCell converts n into an equivalent CellNode carrying rootVal as its
// externalized own-position value. Children are shared (Clone'd handles),
// not deep-copied.
func ToCell[V any](n Node[V], rootVal V, hasRootVal bool) *CellNode[V] {
	c := NewCell[V]()
	c.hasRootVal, c.rootVal = hasRootVal, rootVal
	tok := n.NewIterToken()
	for {
		item, next, ok := n.NextItems(tok)
		if !ok {
			break
		}
		c.adopt(entry[V]{segment: append([]byte(nil), item.Segment...), hasVal: item.HasVal, val: item.Val, child: item.Child.Clone()})
		tok = next
	}
	return c
}

func (n *CellNode[V]) adopt(e entry[V]) {
	b := e.segment[0]
	if len(e.segment) > 1 {
		remainder := entry[V]{segment: append([]byte(nil), e.segment[1:]...), hasVal: e.hasVal, val: e.val, child: e.child}
		e = entry[V]{segment: []byte{b}, child: NewHandle[V](newTinyRefWithEntry(remainder))}
	}
	rank := n.mask.Left(b)
	n.items = append(n.items, entry[V]{})
	copy(n.items[rank+1:], n.items[rank:])
	n.items[rank] = e
	n.mask.Set(b)
}

func (n *CellNode[V]) at(b byte) (*entry[V], bool) {
	if !n.mask.Test(b) {
		return nil, false
	}
	return &n.items[n.mask.Left(b)], true
}

func (n *CellNode[V]) delete(b byte) {
	rank := n.mask.Left(b)
	n.items = append(n.items[:rank], n.items[rank+1:]...)
	n.mask.Clear(b)
}

func (n *CellNode[V]) SharedNodeID() uint64 { return n.id }

func (n *CellNode[V]) IsEmpty() bool { return n.mask.IsEmpty() && !n.hasRootVal }

func (n *CellNode[V]) CountBranches() int { return n.mask.Cardinality() }

func (n *CellNode[V]) BranchesMask(nodeKey []byte) bitmask.ByteMask {
	if len(nodeKey) == 0 {
		return n.mask
	}
	var m bitmask.ByteMask
	if len(nodeKey) == 1 && n.mask.Test(nodeKey[0]) {
		m.Set(nodeKey[0])
	}
	return m
}

func (n *CellNode[V]) ContainsPartialKey(nodeKey []byte) bool {
	if len(nodeKey) == 0 {
		return !n.mask.IsEmpty() || n.hasRootVal
	}
	e, found := n.at(nodeKey[0])
	if !found {
		return false
	}
	return len(nodeKey) == 1 || (e.hasChild() && e.child.Node().ContainsPartialKey(nodeKey[1:]))
}

func (n *CellNode[V]) GetChild(nodeKey []byte) (consumed int, h Handle[V], ok bool) {
	if len(nodeKey) == 0 {
		return 0, Handle[V]{}, false
	}
	e, found := n.at(nodeKey[0])
	if !found || !e.hasChild() {
		return 0, Handle[V]{}, false
	}
	return 1, e.child, true
}

func (n *CellNode[V]) GetVal(nodeKey []byte) (val V, ok bool) {
	if len(nodeKey) == 0 {
		return n.rootVal, n.hasRootVal
	}
	e, found := n.at(nodeKey[0])
	if !found {
		return val, false
	}
	if len(nodeKey) == 1 {
		return e.val, e.hasVal
	}
	if !e.hasChild() {
		return val, false
	}
	return e.child.Node().GetVal(nodeKey[1:])
}

func (n *CellNode[V]) SetVal(nodeKey []byte, val V) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		old, had = n.rootVal, n.hasRootVal
		n.rootVal, n.hasRootVal = val, true
		return old, had, nil
	}
	b := nodeKey[0]
	if len(nodeKey) == 1 {
		if e, found := n.at(b); found {
			old, had = e.val, e.hasVal
			e.val, e.hasVal = val, true
			return old, had, nil
		}
		n.adopt(entry[V]{segment: []byte{b}, hasVal: true, val: val})
		return old, false, nil
	}
	if _, found := n.at(b); !found {
		n.adopt(entry[V]{segment: []byte{b}, child: NewHandle[V](NewTinyRef[V]())})
	}
	e, _ := n.at(b)
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

func (n *CellNode[V]) RemoveVal(nodeKey []byte) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		old, had = n.rootVal, n.hasRootVal
		var zero V
		n.rootVal, n.hasRootVal = zero, false
		return old, had, nil
	}
	b := nodeKey[0]
	e, found := n.at(b)
	if !found {
		return old, false, nil
	}
	if len(nodeKey) == 1 {
		old, had = e.val, e.hasVal
		e.hasVal = false
		var zero V
		e.val = zero
		if !e.hasVal && !e.hasChild() {
			n.delete(b)
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

func (n *CellNode[V]) SetBranch(nodeKey []byte, child Handle[V]) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return nil
	}
	b := nodeKey[0]
	if len(nodeKey) == 1 {
		if e, found := n.at(b); found {
			e.child = child
			return nil
		}
		n.adopt(entry[V]{segment: []byte{b}, child: child})
		return nil
	}
	if _, found := n.at(b); !found {
		n.adopt(entry[V]{segment: []byte{b}, child: NewHandle[V](NewTinyRef[V]())})
	}
	e, _ := n.at(b)
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

func (n *CellNode[V]) TakeNodeAtKey(nodeKey []byte) (removed Handle[V], had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return Handle[V]{}, false, nil
	}
	b := nodeKey[0]
	e, found := n.at(b)
	if !found {
		return Handle[V]{}, false, nil
	}
	if len(nodeKey) == 1 {
		if !e.hasChild() {
			return Handle[V]{}, false, nil
		}
		removed = e.child
		e.child = Handle[V]{}
		if !e.hasVal {
			n.delete(b)
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

func (n *CellNode[V]) RemoveAllBranches(nodeKey []byte) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		n.mask = bitmask.ByteMask{}
		n.items = nil
		return nil
	}
	b := nodeKey[0]
	e, found := n.at(b)
	if !found {
		return nil
	}
	if len(nodeKey) == 1 {
		n.delete(b)
		return nil
	}
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
			n.delete(b)
		}
	}
	return nil
}

func (n *CellNode[V]) RemoveUnmaskedBranches(keep bitmask.ByteMask) (upgraded Node[V]) {
	var kept []entry[V]
	for b := 0; b < 256; b++ {
		if e, found := n.at(byte(b)); found && keep.Test(byte(b)) {
			kept = append(kept, *e)
		}
	}
	n.items = kept
	n.mask = n.mask.Intersection(&keep)
	return nil
}

func (n *CellNode[V]) NewIterToken() IterToken { return IterToken{} }

func (n *CellNode[V]) NextItems(tok IterToken) (item IterItem[V], next IterToken, ok bool) {
	if tok.idx >= len(n.items) {
		return item, tok, false
	}
	e := &n.items[tok.idx]
	return IterItem[V]{Segment: e.segment, HasVal: e.hasVal, Val: e.val, Child: e.child}, IterToken{idx: tok.idx + 1}, true
}

func (n *CellNode[V]) CloneSelf() Node[V] {
	out := &CellNode[V]{id: nextID(), mask: n.mask, hasRootVal: n.hasRootVal, rootVal: n.rootVal, items: make([]entry[V], len(n.items))}
	for i := range n.items {
		out.items[i] = cloneEntry(&n.items[i])
	}
	return out
}

func (n *CellNode[V]) PJoin(other Node[V], joinVal func(a, b V) V) AlgebraicResult[V] {
	return genericJoin[V](n, other, joinVal)
}

func (n *CellNode[V]) PMeet(other Node[V], meetVal func(a, b V) V) AlgebraicResult[V] {
	return genericMeet[V](n, other, meetVal)
}

func (n *CellNode[V]) PSubtract(other Node[V], subtractVal func(a, b V) (V, bool)) AlgebraicResult[V] {
	return genericSubtract[V](n, other, subtractVal)
}

func (n *CellNode[V]) PRestrict(other Node[V]) AlgebraicResult[V] {
	return genericRestrict[V](n, other)
}
