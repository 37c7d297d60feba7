// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

// SubtreeAt locates the node reached by consuming path exactly from root,
// together with the value stored exactly at path, if any. Unlike GetChild,
// it never fails on a path that ends partway through a compressed segment:
// the segment is split (mirroring descend in algebra.go) so the result is
// always a genuine node boundary, with the remainder of the split pushed
// into a synthetic child. It is read-only: root itself is never mutated.
//
// This is the extraction primitive behind a ZipperHead's cell isolation
// (zipperhead.go): a writer checked out at an arbitrary path needs its own
// independent node boundary there regardless of whether the trie happened
// to already have a branch point at that exact path.
func SubtreeAt[V any](root Node[V], path []byte) (branch Node[V], val V, hasVal bool) {
	val, hasVal = root.GetVal(path)
	if len(path) == 0 {
		return root, val, hasVal
	}
	cur, rel := root, path
	for {
		consumed, h, ok := cur.GetChild(rel)
		if ok {
			if consumed == len(rel) {
				return h.Node(), val, hasVal
			}
			cur, rel = h.Node(), rel[consumed:]
			continue
		}
		return splitAt(cur, rel), val, hasVal
	}
}

// splitAt returns the node reached by consuming rel exactly from n, given
// that n.GetChild(rel) already failed -- meaning rel either matches nothing
// in n, or ends partway through (or exactly at the childless end of) some
// entry's compressed segment. In the latter case the entry is split at
// len(rel) via descend, and the split-off remainder's child (if any)
// becomes the result; an empty node otherwise.
func splitAt[V any](n Node[V], rel []byte) Node[V] {
	tok := n.NewIterToken()
	for {
		item, next, ok := n.NextItems(tok)
		if !ok {
			return NewTinyRef[V]()
		}
		if item.Segment[0] != rel[0] {
			tok = next
			continue
		}
		if commonPrefixLen(item.Segment, rel) != len(rel) {
			return NewTinyRef[V]()
		}
		e := descend(entry[V]{segment: item.Segment, hasVal: item.HasVal, val: item.Val, child: item.Child}, len(rel))
		if e.hasChild() {
			return e.child.Node()
		}
		return NewTinyRef[V]()
	}
}
