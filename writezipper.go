// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"github.com/gaissmai/pathmap/internal/bitmask"
	"github.com/gaissmai/pathmap/internal/node"
)

// WriteZipper is a mutating cursor into a PathMap. Navigation mirrors
// ReadZipper (ZipperMoving/ZipperIteration/ZipperValues); the methods below
// add the mutation and algebra entry points.
//
// A WriteZipper issued directly by PathMap.WriteZipper owns the whole map
// exclusively -- the caller must not use the PathMap concurrently until the
// zipper is discarded. A WriteZipper issued by a ZipperHead instead owns
// only the subtrie rooted at its checked-out path (zhRegion): m is then a
// private copy of that subtrie, and its changes reach the real PathMap only
// at Release. A live sibling zipper checked out under a disjoint prefix may
// mutate its own copy concurrently; overlap is rejected at checkout time
// (zipperhead.go), never here.
//
// Mutations are applied by replaying the zipper's absolute path against the
// owning PathMap's actual root on every call: node.Node's SetVal/SetBranch
// etc. already perform the full recursive make_mut/upgrade dance from the
// true root down to the mutation site, so there is no separate ancestor
// stack to maintain here. After any mutation the navigation cursor is
// rebuilt from the (now possibly different) root along the same path, so
// subsequent reads observe the change.
type WriteZipper[V any] struct {
	m        *PathMap[V]
	basePath []byte
	zh       *ZipperHead[V]
	zhRegion []byte
	cur      cursor[V]
}

// Release splices this zipper's accumulated mutations back into the real
// PathMap and frees its exclusive write region, if it was checked out
// through a ZipperHead. It is a no-op for a zipper obtained directly from
// PathMap.WriteZipper, which mutates the real PathMap directly and has no
// region to free.
func (z *WriteZipper[V]) Release() {
	if z.zh != nil {
		z.zh.commit(z.zhRegion, z.m)
		z.zh.release(z.zhRegion)
		z.zh = nil
	}
}

func newWriteZipper[V any](m *PathMap[V], basePath []byte) *WriteZipper[V] {
	z := &WriteZipper[V]{m: m, basePath: append([]byte(nil), basePath...)}
	z.refresh()
	return z
}

// absPath is the zipper's current position expressed as a path from the
// owning PathMap's true root.
func (z *WriteZipper[V]) absPath() []byte {
	return append(append([]byte(nil), z.basePath...), z.cur.path...)
}

// refresh rebuilds the navigation cursor from the PathMap's current root,
// replaying basePath and the zipper's relative path so far. Called after
// every mutation, since mutation may have replaced nodes anywhere from the
// true root down to the mutation site.
func (z *WriteZipper[V]) refresh() {
	relPath := z.cur.path
	c := newCursor(z.m.root.Clone())
	c.Descend(z.basePath)
	c.path, c.history = nil, nil
	c.Descend(relPath)
	z.cur = c
}

// -- ZipperMoving / ZipperIteration / ZipperValues, mirroring ReadZipper --

func (z *WriteZipper[V]) Path() []byte                 { return z.cur.Path() }
func (z *WriteZipper[V]) PathExists() bool             { return z.cur.PathExists() }
func (z *WriteZipper[V]) Val() (val V, ok bool)        { return z.cur.Val() }
func (z *WriteZipper[V]) ChildMask() bitmask.ByteMask  { return z.cur.ChildMask() }
func (z *WriteZipper[V]) IsLeaf() bool                 { return z.cur.IsLeaf() }
func (z *WriteZipper[V]) Depth() int                   { return z.cur.Depth() }
func (z *WriteZipper[V]) DescendByte(b byte) bool      { return z.cur.DescendByte(b) }
func (z *WriteZipper[V]) DescendTo(path []byte) bool   { return z.cur.Descend(path) }
func (z *WriteZipper[V]) AscendByte() bool             { return z.cur.AscendByte() }
func (z *WriteZipper[V]) Ascend(n int) int             { return z.cur.Ascend(n) }
func (z *WriteZipper[V]) AscendToRoot()                { z.cur.AscendToRoot() }
func (z *WriteZipper[V]) ToNextSiblingByte() bool      { return z.cur.ToNextSiblingByte() }
func (z *WriteZipper[V]) ToPrevSiblingByte() bool      { return z.cur.ToPrevSiblingByte() }

// -- mutation --

// SetVal stores val at the current position, returning the value it
// replaced, if any.
func (z *WriteZipper[V]) SetVal(val V) (old V, had bool) {
	old, had = z.m.Insert(z.absPath(), val)
	z.refresh()
	return old, had
}

// GetValOrSetVal returns the value already at the current position, or
// stores and returns dflt if there was none.
func (z *WriteZipper[V]) GetValOrSetVal(dflt V) (val V, existed bool) {
	if v, ok := z.Val(); ok {
		return v, true
	}
	z.SetVal(dflt)
	return dflt, false
}

// RemoveVal deletes the value at the current position, if any. Values and
// branches strictly below the current position are untouched; use Prune to
// remove the whole subtrie.
func (z *WriteZipper[V]) RemoveVal() (old V, had bool) {
	old, had = z.m.RemoveValAt(z.absPath())
	z.refresh()
	return old, had
}

// Prune removes the current position's value and its entire subtrie.
func (z *WriteZipper[V]) Prune() {
	full := z.absPath()
	if len(full) == 0 {
		z.m.root = node.NewHandle[V](node.NewCell[V]())
		z.m.count = 0
		z.refresh()
		return
	}
	n := z.m.root.MakeMut()
	upg := n.RemoveAllBranches(full)
	if upg != nil {
		z.m.root.SetNode(upg)
	}
	z.m.recount()
	z.refresh()
}

// RemoveUnmaskedBranches drops every top-level branch byte of the current
// position not present in keep.
func (z *WriteZipper[V]) RemoveUnmaskedBranches(keep bitmask.ByteMask) {
	h, ok := walkToHandle(z.m.root, z.absPath())
	if !ok {
		return
	}
	mut := h.MakeMut()
	upg := mut.RemoveUnmaskedBranches(keep)
	if upg != nil {
		h.SetNode(upg)
	}
	z.m.replaceSubtreeAt(z.absPath(), h)
	z.refresh()
}

// ZipperHead returns an exclusivity registrar scoped to this zipper's
// checked-out region, letting the caller fan a single write zipper back out
// into several non-overlapping children.
func (z *WriteZipper[V]) ZipperHead() *ZipperHead[V] {
	return newZipperHeadAt(z.m, z.absPath())
}

// -- algebra entry points, each requiring the current position to sit
// exactly at a node boundary (see cursor.subtreeHandle) --

// Graft replaces the current position's subtrie wholesale with src's.
func (z *WriteZipper[V]) Graft(src *ReadZipper[V]) bool {
	h, ok := src.cur.subtreeHandle()
	if !ok {
		return false
	}
	z.m.replaceSubtreeAt(z.absPath(), h.Clone())
	z.refresh()
	return true
}

// JoinInto merges src's subtrie into the current position in place,
// combining values present on both sides with joinVal.
func (z *WriteZipper[V]) JoinInto(src *ReadZipper[V], joinVal func(a, b V) V) node.AlgebraicStatus {
	return z.algebraInto(src, func(self, other node.Node[V]) node.AlgebraicResult[V] {
		return self.PJoin(other, joinVal)
	})
}

// MeetInto keeps, at the current position, only the paths shared with
// src's subtrie, combining values with meetVal.
func (z *WriteZipper[V]) MeetInto(src *ReadZipper[V], meetVal func(a, b V) V) node.AlgebraicStatus {
	return z.algebraInto(src, func(self, other node.Node[V]) node.AlgebraicResult[V] {
		return self.PMeet(other, meetVal)
	})
}

// SubtractInto removes, from the current position, every path also valued
// in src's subtrie.
func (z *WriteZipper[V]) SubtractInto(src *ReadZipper[V], subtractVal func(a, b V) (V, bool)) node.AlgebraicStatus {
	return z.algebraInto(src, func(self, other node.Node[V]) node.AlgebraicResult[V] {
		return self.PSubtract(other, subtractVal)
	})
}

// RestrictInto keeps, at the current position, only the paths also present
// (as paths) in src's subtrie.
func (z *WriteZipper[V]) RestrictInto(src *ReadZipper[V]) node.AlgebraicStatus {
	return z.algebraInto(src, func(self, other node.Node[V]) node.AlgebraicResult[V] {
		return self.PRestrict(other)
	})
}

func (z *WriteZipper[V]) algebraInto(src *ReadZipper[V], op func(self, other node.Node[V]) node.AlgebraicResult[V]) node.AlgebraicStatus {
	other, ok := src.cur.subtreeHandle()
	if !ok {
		return node.StatusNone
	}
	return z.algebraIntoHandle(other, op)
}

// algebraIntoHandle is algebraInto's handle-level core, shared with the
// *Map variants (JoinMapInto, Meet2) that already hold a Handle rather
// than a ReadZipper to fork one from.
func (z *WriteZipper[V]) algebraIntoHandle(other node.Handle[V], op func(self, other node.Node[V]) node.AlgebraicResult[V]) node.AlgebraicStatus {
	full := z.absPath()
	var selfNode node.Node[V] = node.NewTinyRef[V]()
	if h, ok := walkToHandle(z.m.root, full); ok {
		selfNode = h.Node()
	}
	res := op(selfNode, other.Node())
	switch res.Status {
	case node.StatusNone:
		empty := node.Node[V](node.NewTinyRef[V]())
		if len(full) == 0 {
			empty = node.NewCell[V]()
		}
		z.m.replaceSubtreeAt(full, node.NewHandle[V](empty))
	case node.StatusIdentity:
		if res.Mask&node.IdentitySelf == 0 {
			z.m.replaceSubtreeAt(full, other.Clone())
		}
	default:
		z.m.replaceSubtreeAt(full, node.NewHandle[V](res.Node))
	}
	z.refresh()
	return res.Status
}

// -- path-relative mutation, composite-key and ownership-transfer entry
// points --

// CreatePath ensures the path reached by appending path to the current
// position is structurally navigable (DescendTo/PathExists will reach it),
// without storing a value there. It is a no-op if the path already exists,
// as either a value or a branch.
func (z *WriteZipper[V]) CreatePath(path []byte) bool {
	full := append(append([]byte(nil), z.absPath()...), path...)
	probe := newCursor(z.m.root.Clone())
	if !probe.Descend(full) {
		z.m.replaceSubtreeAt(full, node.NewHandle[V](node.NewTinyRef[V]()))
	}
	z.refresh()
	return true
}

// InsertPrefix stores val at the path reached by appending prefix to the
// current position, without moving the cursor there. It returns the value
// that path held before, if any.
func (z *WriteZipper[V]) InsertPrefix(prefix []byte, val V) (old V, had bool) {
	full := append(append([]byte(nil), z.absPath()...), prefix...)
	old, had = z.m.Insert(full, val)
	z.refresh()
	return old, had
}

// RemovePrefix removes the value and entire subtrie at the path reached by
// appending prefix to the current position, without moving the cursor
// there.
func (z *WriteZipper[V]) RemovePrefix(prefix []byte) {
	full := append(append([]byte(nil), z.absPath()...), prefix...)
	if len(full) == 0 {
		z.m.root = node.NewHandle[V](node.NewCell[V]())
		z.m.count = 0
		z.refresh()
		return
	}
	n := z.m.root.MakeMut()
	upg := n.RemoveAllBranches(full)
	if upg != nil {
		z.m.root.SetNode(upg)
	}
	z.m.recount()
	z.refresh()
}

// DropHead re-roots the zipper n bytes deeper along its current path,
// folding those bytes into basePath so they no longer appear in Path --
// for composite keys whose leading component (already consumed by the
// caller) should drop out of view rather than stay navigable. It reports
// false (leaving the zipper unchanged) if n exceeds the current depth.
func (z *WriteZipper[V]) DropHead(n int) bool {
	if n < 0 || n > len(z.cur.path) {
		return false
	}
	rel := append([]byte(nil), z.cur.path...)
	z.basePath = append(z.basePath, rel[:n]...)
	c := newCursor(z.m.root.Clone())
	c.Descend(z.basePath)
	c.path, c.history = nil, nil
	c.Descend(rel[n:])
	z.cur = c
	return true
}

// TakeMap removes the subtrie at the current position -- its value and
// everything below it -- and returns it as a freestanding PathMap, leaving
// the current position empty. It is the owning counterpart to Graft/Fork,
// grounded on node.TakeNodeAtKey.
func (z *WriteZipper[V]) TakeMap() *PathMap[V] {
	full := z.absPath()
	if len(full) == 0 {
		out := &PathMap[V]{root: z.m.root.Clone()}
		out.recount()
		z.m.root = node.NewHandle[V](node.NewCell[V]())
		z.m.count = 0
		z.refresh()
		return out
	}
	val, hasVal := z.m.root.Node().GetVal(full)
	n := z.m.root.MakeMut()
	h, had, upg := n.TakeNodeAtKey(full)
	if upg != nil {
		z.m.root.SetNode(upg)
	}
	if hasVal {
		z.m.RemoveValAt(full)
	}
	var branch node.Node[V] = node.NewTinyRef[V]()
	if had {
		branch = h.Node()
	}
	out := &PathMap[V]{root: node.NewHandle[V](node.ToCell[V](branch, val, hasVal))}
	out.recount()
	z.m.recount()
	z.refresh()
	return out
}

// GraftMap replaces the current position's subtrie wholesale with src's,
// src's own root value included -- the owning-PathMap counterpart to
// Graft, which takes a ReadZipper fork instead.
func (z *WriteZipper[V]) GraftMap(src *PathMap[V]) {
	z.m.replaceSubtreeAt(z.absPath(), src.root.Clone())
	z.refresh()
}

// JoinMapInto merges src's subtrie into the current position in place,
// combining values present on both sides with joinVal -- the
// owning-PathMap counterpart to JoinInto.
func (z *WriteZipper[V]) JoinMapInto(src *PathMap[V], joinVal func(a, b V) V) node.AlgebraicStatus {
	return z.algebraIntoHandle(src.root, func(self, other node.Node[V]) node.AlgebraicResult[V] {
		return self.PJoin(other, joinVal)
	})
}

// JoinIntoTake merges src's current subtrie into this zipper's position,
// combining values with joinVal, and leaves src's position empty -- a move
// rather than a copy, built from TakeMap followed by JoinMapInto.
func (z *WriteZipper[V]) JoinIntoTake(src *WriteZipper[V], joinVal func(a, b V) V) node.AlgebraicStatus {
	taken := src.TakeMap()
	return z.JoinMapInto(taken, joinVal)
}

// Meet2 sets the current position's subtrie to the meet of a and b,
// combining values present in both with meetVal, discarding whatever the
// current position held before. Unlike MeetInto, neither operand is the
// zipper's own prior content, so the result's Identity mask is resolved
// against a and b directly rather than against algebraIntoHandle's
// self/other convention.
func (z *WriteZipper[V]) Meet2(a, b *ReadZipper[V], meetVal func(x, y V) V) node.AlgebraicStatus {
	ah, aok := a.cur.subtreeHandle()
	bh, bok := b.cur.subtreeHandle()
	if !aok || !bok {
		return node.StatusNone
	}
	res := ah.Node().PMeet(bh.Node(), meetVal)
	full := z.absPath()
	switch res.Status {
	case node.StatusNone:
		empty := node.Node[V](node.NewTinyRef[V]())
		if len(full) == 0 {
			empty = node.NewCell[V]()
		}
		z.m.replaceSubtreeAt(full, node.NewHandle[V](empty))
	case node.StatusIdentity:
		if res.Mask&node.IdentitySelf != 0 {
			z.m.replaceSubtreeAt(full, ah.Clone())
		} else {
			z.m.replaceSubtreeAt(full, bh.Clone())
		}
	default:
		z.m.replaceSubtreeAt(full, node.NewHandle[V](res.Node))
	}
	z.refresh()
	return res.Status
}

// JoinKPathInto merges only src's complete stored paths into the current
// position, combining values present on both sides with joinVal. Unlike
// JoinInto it disregards src's bare branch skeleton -- positions with no
// value of their own contribute nothing -- which matters when src is a
// sparse view (e.g. Restrict's mask argument) whose structure alone
// shouldn't graft any new branches into the destination.
func (z *WriteZipper[V]) JoinKPathInto(src *ReadZipper[V], joinVal func(a, b V) V) node.AlgebraicStatus {
	h, ok := src.cur.subtreeHandle()
	if !ok {
		return node.StatusNone
	}
	if h.Node().IsEmpty() {
		return node.StatusNone
	}
	full := z.absPath()
	mergeOne := func(path []byte, val V) {
		dst := append(append([]byte(nil), full...), path...)
		if old, had := z.m.GetValAt(dst); had {
			z.m.Insert(dst, joinVal(old, val))
		} else {
			z.m.Insert(dst, val)
		}
	}
	if val, has := h.Node().GetVal(nil); has {
		mergeOne(nil, val)
	}
	var walk func(n node.Node[V], prefix []byte)
	walk = func(n node.Node[V], prefix []byte) {
		tok := n.NewIterToken()
		for {
			item, next, ok := n.NextItems(tok)
			if !ok {
				return
			}
			path := append(append([]byte(nil), prefix...), item.Segment...)
			if item.HasVal {
				mergeOne(path, item.Val)
			}
			if child := item.Child.Node(); child != nil {
				walk(child, path)
			}
			tok = next
		}
	}
	walk(h.Node(), nil)
	z.refresh()
	return node.StatusElement
}
