// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package pathmap implements PathMap, an ordered associative container
// keyed by byte-string paths: simultaneously a sorted map, a prefix index,
// and an algebraic lattice, backed by a compressed bitmap trie with
// copy-on-write structural sharing.
package pathmap

import (
	"github.com/gaissmai/pathmap/internal/node"
)

// PathMap maps byte-string paths to values of type V. The zero PathMap is
// not ready to use; construct one with New.
//
// PathMap itself carries no concurrency guarantees beyond what ZipperHead
// provides explicitly (see zipperhead.go): a PathMap's root Handle is
// reference-counted and shared freely, so Clone is O(1), but concurrent
// mutation through independently obtained WriteZippers is undefined unless
// mediated through a single ZipperHead.
type PathMap[V any] struct {
	root  node.Handle[V]
	count int
}

// New returns an empty PathMap.
//
// The root is always a CellNode, not a TinyRef/LineList/Dense node: it is
// the only variant that externalizes a value at its own position (the
// empty path), which is what lets Insert/GetValAt/RemoveValAt treat the
// empty path like any other path instead of silently dropping it.
func New[V any]() *PathMap[V] {
	return &PathMap[V]{root: node.NewHandle[V](node.NewCell[V]())}
}

// ValCount returns the number of paths holding a value.
func (m *PathMap[V]) ValCount() int { return m.count }

// ContainsPath reports whether path has a value.
func (m *PathMap[V]) ContainsPath(path []byte) bool {
	_, ok := m.root.Node().GetVal(path)
	return ok
}

// GetValAt returns the value stored at path, if any.
func (m *PathMap[V]) GetValAt(path []byte) (val V, ok bool) {
	return m.root.Node().GetVal(path)
}

// Insert stores val at path, returning the value it replaced, if any.
func (m *PathMap[V]) Insert(path []byte, val V) (old V, replaced bool) {
	n := m.root.MakeMut()
	old, replaced, upg := n.SetVal(path, val)
	if upg != nil {
		m.root.SetNode(upg)
	}
	if !replaced {
		m.count++
	}
	return old, replaced
}

// RemoveValAt deletes the value at path, if any, leaving any deeper values
// below path untouched.
func (m *PathMap[V]) RemoveValAt(path []byte) (old V, removed bool) {
	n := m.root.MakeMut()
	old, removed, upg := n.RemoveVal(path)
	if upg != nil {
		m.root.SetNode(upg)
	}
	if removed {
		m.count--
	}
	return old, removed
}

// Clone returns a PathMap sharing the same underlying trie via an O(1)
// reference-count bump. The clone is fully independent from the caller's
// perspective: a subsequent mutation on either copy uniquifies its own path
// down to the shared node via make_mut, never touching the original.
func (m *PathMap[V]) Clone() *PathMap[V] {
	return &PathMap[V]{root: m.root.Clone(), count: m.count}
}

// Join merges other into a copy of m, combining values present on both
// sides with joinVal. It is the PathMap-level entry point for
// internal/node's PJoin.
func (m *PathMap[V]) Join(other *PathMap[V], joinVal func(a, b V) V) *PathMap[V] {
	res := m.root.Node().PJoin(other.root.Node(), joinVal)
	return fromAlgebraicResult(m, other, res)
}

// Meet keeps only paths with values present on both sides, combined via
// meetVal.
func (m *PathMap[V]) Meet(other *PathMap[V], meetVal func(a, b V) V) *PathMap[V] {
	res := m.root.Node().PMeet(other.root.Node(), meetVal)
	return fromAlgebraicResult(m, other, res)
}

// Subtract removes from a copy of m every path also valued in other,
// optionally keeping a transformed value via subtractVal.
func (m *PathMap[V]) Subtract(other *PathMap[V], subtractVal func(a, b V) (V, bool)) *PathMap[V] {
	res := m.root.Node().PSubtract(other.root.Node(), subtractVal)
	return fromAlgebraicResult(m, other, res)
}

// Restrict keeps only the paths of m that are also present (as paths,
// regardless of value) in mask.
func (m *PathMap[V]) Restrict(mask *PathMap[V]) *PathMap[V] {
	res := m.root.Node().PRestrict(mask.root.Node())
	return fromAlgebraicResult(m, mask, res)
}

func fromAlgebraicResult[V any](self, counter *PathMap[V], res node.AlgebraicResult[V]) *PathMap[V] {
	switch res.Status {
	case node.StatusNone:
		return New[V]()
	case node.StatusIdentity:
		if res.Mask&node.IdentitySelf != 0 {
			return self.Clone()
		}
		return counter.Clone()
	default:
		root := res.Node
		if _, isCell := root.(*node.CellNode[V]); !isCell {
			var zero V
			root = node.ToCell[V](root, zero, false)
		}
		out := &PathMap[V]{root: node.NewHandle[V](root)}
		out.recount()
		return out
	}
}

// replaceSubtreeAt installs replacement as the node reached by consuming
// path exactly, from the true root, recursively uniquifying every ancestor
// along the way. It is the shared primitive behind WriteZipper's Graft,
// JoinInto/MeetInto/SubtractInto/RestrictInto, and RemoveUnmaskedBranches;
// Prune removes its subtrie through RemoveAllBranches instead.
func (m *PathMap[V]) replaceSubtreeAt(path []byte, h node.Handle[V]) {
	if len(path) == 0 {
		if _, isCell := h.Node().(*node.CellNode[V]); !isCell {
			val, hasVal := h.Node().GetVal(nil)
			h = node.NewHandle[V](node.ToCell[V](h.Node(), val, hasVal))
		}
		m.root = h
		m.recount()
		return
	}
	n := m.root.MakeMut()
	upg := n.SetBranch(path, h)
	if upg != nil {
		m.root.SetNode(upg)
	}
	// SetBranch only rewires the child handle; path's own value lives
	// separately, on the entry that owns the branch (see tinyref.go
	// GetVal/SetBranch). A CellNode is the one variant that externalizes a
	// value at its own position (New, shadowAt), so installing one here
	// means h is a whole grafted-in PathMap root and path's entry value has
	// to be kept in sync with it -- mirrors spliceSubtree's handling of the
	// same case. Every other variant never carries a value this way, so
	// path's existing entry value is left alone.
	if cell, isCell := h.Node().(*node.CellNode[V]); isCell {
		if val, hasVal := cell.GetVal(nil); hasVal {
			m.Insert(path, val)
		} else {
			m.RemoveValAt(path)
		}
	}
	m.recount()
}

// recount walks the trie to recompute count after an algebraic operation,
// whose result node doesn't carry a running count of its own.
func (m *PathMap[V]) recount() {
	m.count = 0
	if _, ok := m.root.Node().GetVal(nil); ok {
		m.count++
	}
	var walk func(n node.Node[V])
	walk = func(n node.Node[V]) {
		tok := n.NewIterToken()
		for {
			item, next, ok := n.NextItems(tok)
			if !ok {
				return
			}
			if item.HasVal {
				m.count++
			}
			if child := item.Child.Node(); child != nil {
				walk(child)
			}
			tok = next
		}
	}
	walk(m.root.Node())
}

// shadowAt extracts an independent PathMap representing the subtree at
// path: its root value corresponds to m's value at path, and its branches
// to the structure below path. It shares grandchildren with m (refcounted,
// COW) but nothing at or above path, so a ZipperHead writer can mutate it
// freely without any synchronization against m or a sibling writer checked
// out at a disjoint path -- see zipperhead.go.
func (m *PathMap[V]) shadowAt(path []byte) *PathMap[V] {
	branch, val, hasVal := node.SubtreeAt[V](m.root.Node(), path)
	shadow := &PathMap[V]{root: node.NewHandle[V](node.ToCell[V](branch, val, hasVal))}
	shadow.recount()
	return shadow
}

// spliceSubtree installs shadow's current root value and branch structure
// as m's value and subtrie at path, uniquifying every ancestor from m's
// true root down to path. It is the commit half of shadowAt, run under the
// owning ZipperHead's mutex so it never races a sibling checkout/commit.
func (m *PathMap[V]) spliceSubtree(path []byte, shadow *PathMap[V]) {
	branch := shadow.root.Node()
	val, hasVal := branch.GetVal(nil)
	if len(path) == 0 {
		m.root = shadow.root.Clone()
		m.recount()
		return
	}
	n := m.root.MakeMut()
	upg := n.SetBranch(path, node.NewHandle[V](branch))
	if upg != nil {
		m.root.SetNode(upg)
	}
	if hasVal {
		m.Insert(path, val)
	} else {
		m.RemoveValAt(path)
	}
	m.recount()
}

// ReadZipper returns a read-only cursor rooted at the empty path.
func (m *PathMap[V]) ReadZipper() *ReadZipper[V] {
	return newReadZipper(m.root.Clone())
}

// ReadZipperAtPath returns a read-only cursor rooted at path. If path is
// not present, the zipper starts in a non-existent position (PathExists
// reports false), and every further descent from there reports false too --
// mirroring ordinary descent semantics.
func (m *PathMap[V]) ReadZipperAtPath(path []byte) *ReadZipper[V] {
	z := newReadZipper(m.root.Clone())
	z.DescendTo(path)
	z.origin = append([]byte(nil), path...)
	return z
}

// WriteZipper returns a mutating cursor rooted at the empty path. Only one
// write zipper may be live at a time unless obtained through a ZipperHead
// with non-overlapping paths; read zippers pin their own root Handle and
// keep seeing the trie as it was when they were created.
func (m *PathMap[V]) WriteZipper() *WriteZipper[V] {
	return newWriteZipper(m, nil)
}

// ZipperHead returns an exclusivity registrar for concurrently issuing
// multiple non-overlapping WriteZippers into this PathMap.
func (m *PathMap[V]) ZipperHead() *ZipperHead[V] {
	return newZipperHead(m)
}
