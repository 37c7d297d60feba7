// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import (
	"sort"

	"github.com/gaissmai/pathmap/internal/bitmask"
)

// lineListDenseThreshold is the entry count at which a LineListNode
// upgrades to a DenseNode: past this many siblings, an O(log n) scan
// stops paying for itself against a flat, O(1)-indexed array.
const lineListDenseThreshold = 32

// LineListNode keeps its entries in a single slice sorted by branch byte,
// found by binary search. It is the workhorse variant for nodes with more
// than a couple of children but not enough fan-out to justify a full byte
// array, and -- like TinyRefNode -- it still supports arbitrary-length
// compressed segments.
type LineListNode[V any] struct {
	id      uint64
	entries []entry[V]
}

var _ Node[int] = (*LineListNode[int])(nil)

// NewLineList returns an empty LineListNode.
func NewLineList[V any]() *LineListNode[V] {
	return &LineListNode[V]{id: nextID()}
}

func (n *LineListNode[V]) search(b byte) (idx int, found bool) {
	idx = sort.Search(len(n.entries), func(i int) bool { return n.entries[i].segment[0] >= b })
	found = idx < len(n.entries) && n.entries[idx].segment[0] == b
	return idx, found
}

// insertEntrySorted inserts e in branch-byte order; e's byte must not
// already be present.
func (n *LineListNode[V]) insertEntrySorted(e entry[V]) {
	idx, _ := n.search(e.segment[0])
	n.entries = append(n.entries, entry[V]{})
	copy(n.entries[idx+1:], n.entries[idx:])
	n.entries[idx] = e
}

func (n *LineListNode[V]) SharedNodeID() uint64 { return n.id }
func (n *LineListNode[V]) IsEmpty() bool        { return len(n.entries) == 0 }
func (n *LineListNode[V]) CountBranches() int   { return len(n.entries) }

func (n *LineListNode[V]) BranchesMask(nodeKey []byte) (m bitmask.ByteMask) {
	for i := range n.entries {
		if len(nodeKey) == 0 || commonPrefixLen(n.entries[i].segment, nodeKey) == len(nodeKey) {
			m.Set(n.entries[i].segment[0])
		}
	}
	return m
}

func (n *LineListNode[V]) ContainsPartialKey(nodeKey []byte) bool {
	if len(nodeKey) == 0 {
		return len(n.entries) > 0
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		return false
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	if cpl == len(nodeKey) {
		return true
	}
	return cpl == len(e.segment) && e.hasChild() && e.child.Node().ContainsPartialKey(nodeKey[cpl:])
}

func (n *LineListNode[V]) GetChild(nodeKey []byte) (consumed int, h Handle[V], ok bool) {
	if len(nodeKey) == 0 {
		return 0, Handle[V]{}, false
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		return 0, Handle[V]{}, false
	}
	e := &n.entries[idx]
	if len(nodeKey) < len(e.segment) || !segEqual(e.segment, nodeKey[:len(e.segment)]) || !e.hasChild() {
		return 0, Handle[V]{}, false
	}
	return len(e.segment), e.child, true
}

func (n *LineListNode[V]) GetVal(nodeKey []byte) (val V, ok bool) {
	if len(nodeKey) == 0 {
		return val, false
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		return val, false
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		return e.val, e.hasVal
	case cpl == len(e.segment) && e.hasChild():
		return e.child.Node().GetVal(nodeKey[cpl:])
	default:
		return val, false
	}
}

func (n *LineListNode[V]) splitAt(idx, at int) {
	e := n.entries[idx]
	if at == len(e.segment) {
		return
	}
	remainder := entry[V]{segment: append([]byte(nil), e.segment[at:]...), hasVal: e.hasVal, val: e.val, child: e.child}
	n.entries[idx] = entry[V]{
		segment: append([]byte(nil), e.segment[:at]...),
		hasVal:  false,
		child:   NewHandle[V](newTinyRefWithEntry(remainder)),
	}
}

func (n *LineListNode[V]) SetVal(nodeKey []byte, val V) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return old, false, nil
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		if len(n.entries) >= lineListDenseThreshold {
			return old, false, n.upgradeAndSetVal(nodeKey, val)
		}
		n.insertEntrySorted(entry[V]{segment: append([]byte(nil), nodeKey...), hasVal: true, val: val})
		return old, false, nil
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		old, had = e.val, e.hasVal
		e.val, e.hasVal = val, true
		return old, had, nil
	case cpl == len(e.segment):
		if !e.hasChild() {
			e.child = NewHandle[V](NewTinyRef[V]())
		}
		child := e.child.MakeMut()
		old, had, upg := child.SetVal(nodeKey[cpl:], val)
		if upg != nil {
			e.child.SetNode(upg)
		}
		return old, had, nil
	default:
		n.splitAt(idx, cpl)
		return n.SetVal(nodeKey, val)
	}
}

func (n *LineListNode[V]) upgradeAndSetVal(nodeKey []byte, val V) Node[V] {
	d := n.toDense()
	d.SetVal(nodeKey, val)
	return d
}

// toDense decompresses every multi-byte segment by one level: the branch
// byte becomes a dense array slot, and anything beyond it is pushed down
// into a fresh single-entry TinyRefNode child, since DenseNode/CellNode
// slots are always exactly one byte wide.
func (n *LineListNode[V]) toDense() *DenseNode[V] {
	d := NewDense[V]()
	for i := range n.entries {
		d.adopt(cloneEntry(&n.entries[i]))
	}
	return d
}

func (n *LineListNode[V]) RemoveVal(nodeKey []byte) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return old, false, nil
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		return old, false, nil
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		old, had = e.val, e.hasVal
		e.hasVal = false
		var zero V
		e.val = zero
		n.compact(idx)
		return old, had, nil
	case cpl == len(e.segment) && e.hasChild():
		child := e.child.MakeMut()
		old, had, upg := child.RemoveVal(nodeKey[cpl:])
		if upg != nil {
			e.child.SetNode(upg)
		}
		return old, had, nil
	default:
		return old, false, nil
	}
}

func (n *LineListNode[V]) compact(idx int) {
	e := &n.entries[idx]
	if e.hasVal || e.hasChild() {
		return
	}
	n.entries = append(n.entries[:idx], n.entries[idx+1:]...)
}

func (n *LineListNode[V]) SetBranch(nodeKey []byte, child Handle[V]) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return nil
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		if len(n.entries) >= lineListDenseThreshold {
			d := n.toDense()
			d.SetBranch(nodeKey, child)
			return d
		}
		n.insertEntrySorted(entry[V]{segment: append([]byte(nil), nodeKey...), child: child})
		return nil
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		e.child = child
		return nil
	case cpl == len(e.segment):
		if !e.hasChild() {
			e.child = NewHandle[V](NewTinyRef[V]())
		}
		sub := e.child.MakeMut()
		upg := sub.SetBranch(nodeKey[cpl:], child)
		if upg != nil {
			e.child.SetNode(upg)
		}
		return nil
	default:
		n.splitAt(idx, cpl)
		return n.SetBranch(nodeKey, child)
	}
}

func (n *LineListNode[V]) TakeNodeAtKey(nodeKey []byte) (removed Handle[V], had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return Handle[V]{}, false, nil
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		return Handle[V]{}, false, nil
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		if !e.hasChild() {
			return Handle[V]{}, false, nil
		}
		removed = e.child
		e.child = Handle[V]{}
		n.compact(idx)
		return removed, true, nil
	case cpl == len(e.segment) && e.hasChild():
		child := e.child.MakeMut()
		r, had2, upg := child.TakeNodeAtKey(nodeKey[cpl:])
		if upg != nil {
			e.child.SetNode(upg)
		}
		return r, had2, nil
	default:
		return Handle[V]{}, false, nil
	}
}

func (n *LineListNode[V]) RemoveAllBranches(nodeKey []byte) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		n.entries = nil
		return nil
	}
	idx, found := n.search(nodeKey[0])
	if !found {
		return nil
	}
	e := &n.entries[idx]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(nodeKey):
		n.entries = append(n.entries[:idx], n.entries[idx+1:]...)
	case cpl == len(e.segment) && e.hasChild():
		child := e.child.MakeMut()
		upg := child.RemoveAllBranches(nodeKey[cpl:])
		if upg != nil {
			e.child.SetNode(upg)
			child = upg
		}
		if child.IsEmpty() {
			if e.hasVal {
				e.child = Handle[V]{}
			} else {
				n.entries = append(n.entries[:idx], n.entries[idx+1:]...)
			}
		}
	}
	return nil
}

func (n *LineListNode[V]) RemoveUnmaskedBranches(keep bitmask.ByteMask) (upgraded Node[V]) {
	out := n.entries[:0]
	for i := range n.entries {
		if keep.Test(n.entries[i].segment[0]) {
			out = append(out, n.entries[i])
		}
	}
	n.entries = out
	return nil
}

func (n *LineListNode[V]) NewIterToken() IterToken { return IterToken{} }

func (n *LineListNode[V]) NextItems(tok IterToken) (item IterItem[V], next IterToken, ok bool) {
	if tok.idx >= len(n.entries) {
		return item, tok, false
	}
	e := &n.entries[tok.idx]
	return IterItem[V]{Segment: e.segment, HasVal: e.hasVal, Val: e.val, Child: e.child}, IterToken{idx: tok.idx + 1}, true
}

func (n *LineListNode[V]) CloneSelf() Node[V] {
	out := &LineListNode[V]{id: nextID(), entries: make([]entry[V], len(n.entries))}
	for i := range n.entries {
		out.entries[i] = cloneEntry(&n.entries[i])
	}
	return out
}

func (n *LineListNode[V]) PJoin(other Node[V], joinVal func(a, b V) V) AlgebraicResult[V] {
	return genericJoin[V](n, other, joinVal)
}

func (n *LineListNode[V]) PMeet(other Node[V], meetVal func(a, b V) V) AlgebraicResult[V] {
	return genericMeet[V](n, other, meetVal)
}

func (n *LineListNode[V]) PSubtract(other Node[V], subtractVal func(a, b V) (V, bool)) AlgebraicResult[V] {
	return genericSubtract[V](n, other, subtractVal)
}

func (n *LineListNode[V]) PRestrict(other Node[V]) AlgebraicResult[V] {
	return genericRestrict[V](n, other)
}
