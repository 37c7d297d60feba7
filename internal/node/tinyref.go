// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import "github.com/gaissmai/pathmap/internal/bitmask"

// tinyRefCap is the maximum number of distinct branch bytes a TinyRefNode
// holds before it upgrades to a LineListNode.
const tinyRefCap = 2

// TinyRefNode is the smallest physical node variant: zero, one, or two
// entries, kept in an unsorted slice and found by linear scan. It is the
// variant every new subtrie starts life as; a node that has upgraded to a
// roomier variant stays that variant when deletions drain it. Segments may
// be of any length, so a TinyRefNode
// still carries path compression even at minimum size.
type TinyRefNode[V any] struct {
	id      uint64
	entries []entry[V]
}

var _ Node[int] = (*TinyRefNode[int])(nil)

// NewTinyRef returns an empty TinyRefNode.
func NewTinyRef[V any]() *TinyRefNode[V] {
	return &TinyRefNode[V]{id: nextID()}
}

// newTinyRefWithEntry returns a TinyRefNode holding exactly one entry; used
// whenever a compressed segment must be split and its remainder pushed one
// level down.
func newTinyRefWithEntry[V any](e entry[V]) *TinyRefNode[V] {
	return &TinyRefNode[V]{id: nextID(), entries: []entry[V]{e}}
}

func (n *TinyRefNode[V]) find(b byte) int {
	for i := range n.entries {
		if n.entries[i].segment[0] == b {
			return i
		}
	}
	return -1
}

func (n *TinyRefNode[V]) SharedNodeID() uint64 { return n.id }

func (n *TinyRefNode[V]) IsEmpty() bool { return len(n.entries) == 0 }

func (n *TinyRefNode[V]) CountBranches() int { return len(n.entries) }

func (n *TinyRefNode[V]) BranchesMask(nodeKey []byte) (m bitmask.ByteMask) {
	for i := range n.entries {
		if len(nodeKey) == 0 || commonPrefixLen(n.entries[i].segment, nodeKey) == len(nodeKey) {
			m.Set(n.entries[i].segment[0])
		}
	}
	return m
}

func (n *TinyRefNode[V]) ContainsPartialKey(nodeKey []byte) bool {
	if len(nodeKey) == 0 {
		return len(n.entries) > 0
	}
	for i := range n.entries {
		e := &n.entries[i]
		cpl := commonPrefixLen(e.segment, nodeKey)
		if cpl == len(nodeKey) {
			return true
		}
		if cpl == len(e.segment) && e.hasChild() {
			return e.child.Node().ContainsPartialKey(nodeKey[cpl:])
		}
	}
	return false
}

func (n *TinyRefNode[V]) GetChild(nodeKey []byte) (consumed int, h Handle[V], ok bool) {
	if len(nodeKey) == 0 {
		return 0, Handle[V]{}, false
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		return 0, Handle[V]{}, false
	}
	e := &n.entries[i]
	if len(nodeKey) < len(e.segment) || !segEqual(e.segment, nodeKey[:len(e.segment)]) {
		return 0, Handle[V]{}, false
	}
	if !e.hasChild() {
		return 0, Handle[V]{}, false
	}
	return len(e.segment), e.child, true
}

func (n *TinyRefNode[V]) GetVal(nodeKey []byte) (val V, ok bool) {
	if len(nodeKey) == 0 {
		return val, false
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		return val, false
	}
	e := &n.entries[i]
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

func (n *TinyRefNode[V]) SetVal(nodeKey []byte, val V) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return old, false, nil
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		if len(n.entries) >= tinyRefCap {
			return old, false, n.upgradeAndSetVal(nodeKey, val)
		}
		n.entries = append(n.entries, entry[V]{segment: append([]byte(nil), nodeKey...), hasVal: true, val: val})
		return old, false, nil
	}
	e := &n.entries[i]
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
		n.splitAt(i, cpl)
		return n.SetVal(nodeKey, val)
	}
}

// splitAt rewrites entries[i] into a length-at head entry whose child is a
// fresh node holding the original remainder, used whenever an insert
// diverges from an existing compressed segment partway through.
func (n *TinyRefNode[V]) splitAt(i, at int) {
	e := n.entries[i]
	if at == len(e.segment) {
		return
	}
	remainder := entry[V]{segment: append([]byte(nil), e.segment[at:]...), hasVal: e.hasVal, val: e.val, child: e.child}
	n.entries[i] = entry[V]{
		segment: append([]byte(nil), e.segment[:at]...),
		hasVal:  false,
		child:   NewHandle[V](newTinyRefWithEntry(remainder)),
	}
}

func (n *TinyRefNode[V]) upgradeAndSetVal(nodeKey []byte, val V) Node[V] {
	ll := n.toLineList()
	ll.SetVal(nodeKey, val)
	return ll
}

func (n *TinyRefNode[V]) toLineList() *LineListNode[V] {
	ll := NewLineList[V]()
	for i := range n.entries {
		ll.insertEntrySorted(cloneEntry(&n.entries[i]))
	}
	return ll
}

func (n *TinyRefNode[V]) RemoveVal(nodeKey []byte) (old V, had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return old, false, nil
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		return old, false, nil
	}
	e := &n.entries[i]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		old, had = e.val, e.hasVal
		e.hasVal = false
		var zero V
		e.val = zero
		n.compact(i)
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

// compact drops entries[i] entirely when it carries neither a value nor a
// child, keeping the entry slice free of dangling branches.
func (n *TinyRefNode[V]) compact(i int) {
	e := &n.entries[i]
	if e.hasVal || e.hasChild() {
		return
	}
	n.entries = append(n.entries[:i], n.entries[i+1:]...)
}

func (n *TinyRefNode[V]) SetBranch(nodeKey []byte, child Handle[V]) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return nil
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		if len(n.entries) >= tinyRefCap {
			ll := n.toLineList()
			ll.SetBranch(nodeKey, child)
			return ll
		}
		n.entries = append(n.entries, entry[V]{segment: append([]byte(nil), nodeKey...), child: child})
		return nil
	}
	e := &n.entries[i]
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
		n.splitAt(i, cpl)
		return n.SetBranch(nodeKey, child)
	}
}

func (n *TinyRefNode[V]) TakeNodeAtKey(nodeKey []byte) (removed Handle[V], had bool, upgraded Node[V]) {
	if len(nodeKey) == 0 {
		return Handle[V]{}, false, nil
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		return Handle[V]{}, false, nil
	}
	e := &n.entries[i]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(e.segment) && cpl == len(nodeKey):
		if !e.hasChild() {
			return Handle[V]{}, false, nil
		}
		removed = e.child
		e.child = Handle[V]{}
		n.compact(i)
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

func (n *TinyRefNode[V]) RemoveAllBranches(nodeKey []byte) (upgraded Node[V]) {
	if len(nodeKey) == 0 {
		n.entries = nil
		return nil
	}
	i := n.find(nodeKey[0])
	if i < 0 {
		return nil
	}
	e := &n.entries[i]
	cpl := commonPrefixLen(e.segment, nodeKey)
	switch {
	case cpl == len(nodeKey):
		n.entries = append(n.entries[:i], n.entries[i+1:]...)
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
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
			}
		}
	}
	return nil
}

func (n *TinyRefNode[V]) RemoveUnmaskedBranches(keep bitmask.ByteMask) (upgraded Node[V]) {
	out := n.entries[:0]
	for i := range n.entries {
		if keep.Test(n.entries[i].segment[0]) {
			out = append(out, n.entries[i])
		}
	}
	n.entries = out
	return nil
}

func (n *TinyRefNode[V]) NewIterToken() IterToken { return IterToken{} }

func (n *TinyRefNode[V]) NextItems(tok IterToken) (item IterItem[V], next IterToken, ok bool) {
	if tok.idx >= len(n.entries) {
		return item, tok, false
	}
	e := &n.entries[tok.idx]
	return IterItem[V]{Segment: e.segment, HasVal: e.hasVal, Val: e.val, Child: e.child}, IterToken{idx: tok.idx + 1}, true
}

func (n *TinyRefNode[V]) CloneSelf() Node[V] {
	out := &TinyRefNode[V]{id: nextID(), entries: make([]entry[V], len(n.entries))}
	for i := range n.entries {
		out.entries[i] = cloneEntry(&n.entries[i])
	}
	return out
}

func (n *TinyRefNode[V]) PJoin(other Node[V], joinVal func(a, b V) V) AlgebraicResult[V] {
	return genericJoin[V](n, other, joinVal)
}

func (n *TinyRefNode[V]) PMeet(other Node[V], meetVal func(a, b V) V) AlgebraicResult[V] {
	return genericMeet[V](n, other, meetVal)
}

func (n *TinyRefNode[V]) PSubtract(other Node[V], subtractVal func(a, b V) (V, bool)) AlgebraicResult[V] {
	return genericSubtract[V](n, other, subtractVal)
}

func (n *TinyRefNode[V]) PRestrict(other Node[V]) AlgebraicResult[V] {
	return genericRestrict[V](n, other)
}
