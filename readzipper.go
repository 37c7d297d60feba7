// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"bytes"

	"github.com/gaissmai/pathmap/internal/bitmask"
	"github.com/gaissmai/pathmap/internal/node"
)

// ReadZipper is a read-only cursor over a PathMap's trie: ZipperMoving for
// navigation, ZipperValues for reading at the current position,
// ZipperIteration for stepping through children in lexicographic order, and
// ZipperSubtries for forking an independent cursor onto the current
// subtrie. A ReadZipper pins the root Handle it was created from, so the
// trie it walks never changes underneath it even if the owning PathMap is
// mutated afterwards -- ordinary Handle/Clone structural sharing, not a
// snapshot copy.
//
// origin is the absolute path the zipper was checked out at (always empty
// for a zipper obtained from ReadZipper/Fork, since those are structurally
// rooted where they start; set to a non-empty path by ReadZipperAtPath,
// whose cursor shares the PathMap's true root Handle and merely starts
// pre-descended). OriginPath/RootPrefixPath/AtRoot distinguish that fixed
// checkout position from Path, which also reflects subsequent navigation.
type ReadZipper[V any] struct {
	cur    cursor[V]
	origin []byte
}

func newReadZipper[V any](root node.Handle[V]) *ReadZipper[V] {
	return &ReadZipper[V]{cur: newCursor(root)}
}

// Path returns the absolute path from the zipper's root to its current
// position.
func (z *ReadZipper[V]) Path() []byte { return z.cur.Path() }

// PathExists reports whether the current position is reachable in the
// trie.
func (z *ReadZipper[V]) PathExists() bool { return z.cur.PathExists() }

// Val returns the value at the current position, if any.
func (z *ReadZipper[V]) Val() (val V, ok bool) { return z.cur.Val() }

// ChildMask returns the set of bytes that continue the trie from here.
func (z *ReadZipper[V]) ChildMask() bitmask.ByteMask { return z.cur.ChildMask() }

// IsLeaf reports whether the current position has no children.
func (z *ReadZipper[V]) IsLeaf() bool { return z.cur.IsLeaf() }

// Depth is the number of path bytes consumed from the zipper's root.
func (z *ReadZipper[V]) Depth() int { return z.cur.Depth() }

// DescendByte moves one byte deeper; ok is false if nothing continues the
// trie with b.
func (z *ReadZipper[V]) DescendByte(b byte) (ok bool) { return z.cur.DescendByte(b) }

// DescendTo moves along every byte of path; once a byte doesn't continue
// the trie the position no longer exists (PathExists reports false), but
// Path still ends with the whole of path. It reports whether the full path
// exists in the trie.
func (z *ReadZipper[V]) DescendTo(path []byte) (ok bool) { return z.cur.Descend(path) }

// AscendByte undoes the last descend, or reports false at the empty path.
// A zipper from ReadZipperAtPath can ascend above its OriginPath this way;
// the ascent is not bounded by the origin.
func (z *ReadZipper[V]) AscendByte() (ok bool) { return z.cur.AscendByte() }

// Ascend moves up at most n bytes, returning how many it actually moved.
func (z *ReadZipper[V]) Ascend(n int) int { return z.cur.Ascend(n) }

// AscendToRoot ascends to the empty path. For a zipper from
// ReadZipperAtPath that is above its OriginPath, not back at the origin.
func (z *ReadZipper[V]) AscendToRoot() { z.cur.AscendToRoot() }

// ToNextSiblingByte moves to the next sibling of the current byte under
// the same parent.
func (z *ReadZipper[V]) ToNextSiblingByte() bool { return z.cur.ToNextSiblingByte() }

// ToPrevSiblingByte moves to the previous sibling of the current byte
// under the same parent.
func (z *ReadZipper[V]) ToPrevSiblingByte() bool { return z.cur.ToPrevSiblingByte() }

// FirstChild descends to the lowest byte that continues the trie from
// here, reporting false if there is none.
func (z *ReadZipper[V]) FirstChild() bool { return z.cur.FirstChild() }

// IsVal reports whether the current position holds a value -- a cheaper
// spelling of Val's second return when the value itself isn't needed.
func (z *ReadZipper[V]) IsVal() bool { return z.cur.IsVal() }

// ChildCount returns the number of distinct bytes that continue the trie
// from the current position.
func (z *ReadZipper[V]) ChildCount() int { return z.cur.ChildCount() }

// DescendIndexedByte descends via the i-th set bit (ascending order, 0
// indexed) of ChildMask, the "select" counterpart to ChildMask/ChildCount's
// "rank" view. It reports false if i is out of range.
func (z *ReadZipper[V]) DescendIndexedByte(i int) bool { return z.cur.DescendIndexedByte(i) }

// DescendUntil repeatedly descends to the sole child of single-child,
// valueless positions, stopping at the first position that holds a value,
// branches into more than one child, or has no children at all. It reports
// whether it moved at least one byte.
func (z *ReadZipper[V]) DescendUntil() bool { return z.cur.DescendUntil() }

// AscendUntil ascends until reaching a position that holds a value, or the
// zipper's root. It reports whether it moved at least one byte.
func (z *ReadZipper[V]) AscendUntil() bool { return z.cur.AscendUntil() }

// AscendUntilBranch ascends until reaching a position with more than one
// child, or the zipper's root. It reports whether it moved at least one
// byte.
func (z *ReadZipper[V]) AscendUntilBranch() bool { return z.cur.AscendUntilBranch() }

// DescendFirstKPath descends via FirstChild repeatedly until reaching a
// leaf, landing on the lexicographically first complete path stored at or
// below the current position. It reports whether it moved at least one
// byte.
func (z *ReadZipper[V]) DescendFirstKPath() bool { return z.cur.DescendFirstKPath() }

// ToNextVal advances to the next position, in lexicographic order, that
// holds a value, leaving the position unchanged and reporting false if none
// remains within the zipper's root.
func (z *ReadZipper[V]) ToNextVal() bool { return z.cur.ToNextVal() }

// ToNextKPath advances to the next complete stored path -- a leaf position,
// with or without a value of its own -- in lexicographic order, leaving the
// position unchanged and reporting false if none remains within the
// zipper's root.
func (z *ReadZipper[V]) ToNextKPath() bool { return z.cur.ToNextKPath() }

// OriginPath returns the absolute path this zipper was checked out at.
func (z *ReadZipper[V]) OriginPath() []byte { return append([]byte(nil), z.origin...) }

// RootPrefixPath is OriginPath: the fixed prefix a ZipperHead checkout
// pins, as distinct from Path's current, navigable position.
func (z *ReadZipper[V]) RootPrefixPath() []byte { return z.OriginPath() }

// AtRoot reports whether the zipper is currently at the exact position it
// was checked out at.
func (z *ReadZipper[V]) AtRoot() bool { return bytes.Equal(z.cur.path, z.origin) }

// Fork returns an independent ReadZipper rooted at the current position:
// its own root Handle, obtained via an O(1) refcount clone when the
// position sits exactly at a node boundary. Fork fails (ok=false) when the
// position rests mid-segment -- see cursor.subtreeHandle.
func (z *ReadZipper[V]) Fork() (fork *ReadZipper[V], ok bool) {
	h, ok := z.cur.subtreeHandle()
	if !ok {
		return nil, false
	}
	return newReadZipper(h.Clone()), true
}

// SubtrieValCount returns the value count reachable from the current
// position without materializing a whole new PathMap when the caller only
// wants the count. Use AsPathMap when the full map is needed.
func (z *ReadZipper[V]) SubtrieValCount() int {
	h, ok := z.cur.subtreeHandle()
	if !ok {
		return 0
	}
	count := 0
	var walk func(n node.Node[V])
	walk = func(n node.Node[V]) {
		tok := n.NewIterToken()
		for {
			item, next, ok := n.NextItems(tok)
			if !ok {
				return
			}
			if item.HasVal {
				count++
			}
			if child := item.Child.Node(); child != nil {
				walk(child)
			}
			tok = next
		}
	}
	walk(h.Node())
	return count
}

// AsPathMap wraps the current position's subtrie as a freestanding
// PathMap, sharing structure via Handle clones; a top node that is not
// already a CellNode is copied into one, since a PathMap root always is.
// It fails (ok=false)
// mid-segment, matching Fork.
func (z *ReadZipper[V]) AsPathMap() (m *PathMap[V], ok bool) {
	h, ok := z.cur.subtreeHandle()
	if !ok {
		return nil, false
	}
	out := &PathMap[V]{root: h.Clone()}
	if _, isCell := h.Node().(*node.CellNode[V]); !isCell {
		var zero V
		out.root = node.NewHandle[V](node.ToCell[V](h.Node(), zero, false))
	}
	out.recount()
	return out, true
}
