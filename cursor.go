// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"github.com/gaissmai/pathmap/internal/bitmask"
	"github.com/gaissmai/pathmap/internal/node"
)

// cursorFrame is one level of ascend history: the state of cursor
// immediately before the byte that led to the next level down.
type cursorFrame[V any] struct {
	handle node.Handle[V]
	rel    []byte
	valid  bool
}

// cursor is the shared navigation state behind ReadZipper and WriteZipper.
// A position is the nearest containing node's Handle plus rel, the bytes of
// the path consumed within that node but not yet resolved across a node
// boundary. Every descend of a single path byte either extends rel or,
// exactly when it completes a node's compressed segment, moves the handle
// to the child and carries over rel's unconsumed remainder -- so
// navigation is transparent to how much path compression any given node
// happens to be using.
type cursor[V any] struct {
	handle  node.Handle[V]
	rel     []byte
	path    []byte
	history []cursorFrame[V]
	valid   bool
}

func newCursor[V any](root node.Handle[V]) cursor[V] {
	return cursor[V]{handle: root, valid: true}
}

func (c *cursor[V]) node() node.Node[V] { return c.handle.Node() }

// Path returns the absolute path consumed from the cursor's root.
func (c *cursor[V]) Path() []byte { return append([]byte(nil), c.path...) }

// PathExists reports whether the cursor's current path corresponds to a
// position actually reachable in the trie (a value, a branch, or both may
// still be absent at that position -- PathExists only promises the walk
// didn't fall off the structure).
func (c *cursor[V]) PathExists() bool { return c.valid }

// Val returns the value at the cursor's exact current position. Right after
// the cursor has crossed into a child node (rel empty), that value is stored
// on the parent's entry, so it is read through the last history frame.
func (c *cursor[V]) Val() (val V, ok bool) {
	if !c.valid {
		return val, false
	}
	if len(c.rel) == 0 && len(c.history) > 0 {
		f := c.history[len(c.history)-1]
		key := append(append([]byte(nil), f.rel...), c.path[len(c.path)-1])
		return f.handle.Node().GetVal(key)
	}
	return c.node().GetVal(c.rel)
}

// ChildMask returns the set of next bytes that lead somewhere from here.
// With rel non-empty the cursor rests inside one entry's segment, or at the
// end of a childless one, so the only possible next byte is the segment's
// byte after rel.
func (c *cursor[V]) ChildMask() (m bitmask.ByteMask) {
	if !c.valid {
		return m
	}
	if len(c.rel) == 0 {
		return c.node().BranchesMask(nil)
	}
	n := c.node()
	for tok := n.NewIterToken(); ; {
		item, next, ok := n.NextItems(tok)
		if !ok {
			return m
		}
		if item.Segment[0] == c.rel[0] {
			if len(c.rel) < len(item.Segment) {
				m.Set(item.Segment[len(c.rel)])
			}
			return m
		}
		tok = next
	}
}

// IsLeaf reports whether the cursor's position has no children.
func (c *cursor[V]) IsLeaf() bool {
	m := c.ChildMask()
	return m.IsEmpty()
}

// subtreeHandle returns the Handle for the exact current position, when the
// cursor sits precisely at a node boundary (rel empty). Operations that
// graft or algebraically combine whole subtries (Graft, JoinInto, MeetInto,
// SubtractInto, RestrictInto) require this; a cursor resting mid-segment
// has no independent Handle to hand out; see DESIGN.md for this scoping
// decision.
func (c *cursor[V]) subtreeHandle() (node.Handle[V], bool) {
	if !c.valid || len(c.rel) != 0 {
		return node.Handle[V]{}, false
	}
	return c.handle, true
}

// DescendByte moves the cursor one byte deeper, returning false (and
// marking the position invalid) if no stored path continues with b.
func (c *cursor[V]) DescendByte(b byte) bool {
	c.history = append(c.history, cursorFrame[V]{handle: c.handle, rel: append([]byte(nil), c.rel...), valid: c.valid})
	c.path = append(c.path, b)
	if !c.valid {
		return false
	}
	newRel := append(append([]byte(nil), c.rel...), b)
	if !c.node().ContainsPartialKey(newRel) {
		c.valid = false
		return false
	}
	consumed, h, ok := c.node().GetChild(newRel)
	if ok {
		c.handle = h
		c.rel = append([]byte(nil), newRel[consumed:]...)
	} else {
		c.rel = newRel
	}
	return true
}

// Descend moves the cursor along every byte of path. From the first byte
// that doesn't continue the trie on, the position is invalid, but the
// remaining bytes are still appended to Path. It returns whether the full
// path exists in the trie.
func (c *cursor[V]) Descend(path []byte) bool {
	ok := true
	for _, b := range path {
		if !c.DescendByte(b) {
			ok = false
		}
	}
	return ok
}

// AscendByte undoes the last DescendByte, or reports false at the root.
func (c *cursor[V]) AscendByte() bool {
	if len(c.history) == 0 {
		return false
	}
	f := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	c.handle, c.rel, c.valid = f.handle, f.rel, f.valid
	c.path = c.path[:len(c.path)-1]
	return true
}

// Ascend moves up at most n bytes, returning how many it actually moved.
func (c *cursor[V]) Ascend(n int) int {
	moved := 0
	for moved < n && c.AscendByte() {
		moved++
	}
	return moved
}

// AscendToRoot returns the cursor to its starting position.
func (c *cursor[V]) AscendToRoot() {
	for c.AscendByte() {
	}
}

// Depth is the number of path bytes consumed from the cursor's root.
func (c *cursor[V]) Depth() int { return len(c.path) }

// ToNextSiblingByte moves to the next sibling of the current byte under the
// same parent, in ascending byte order.
func (c *cursor[V]) ToNextSiblingByte() bool {
	return c.toSiblingByte(true)
}

// ToPrevSiblingByte moves to the previous sibling of the current byte under
// the same parent, in ascending byte order.
func (c *cursor[V]) ToPrevSiblingByte() bool {
	return c.toSiblingByte(false)
}

func (c *cursor[V]) toSiblingByte(next bool) bool {
	if len(c.path) == 0 || len(c.history) == 0 {
		return false
	}
	parent := c.history[len(c.history)-1]
	lastByte := c.path[len(c.path)-1]
	parentCur := cursor[V]{handle: parent.handle, rel: parent.rel, valid: parent.valid}
	mask := parentCur.ChildMask()
	var (
		target byte
		ok     bool
	)
	if next {
		target, ok = mask.NextBit(lastByte)
	} else {
		target, ok = mask.PrevBit(lastByte)
	}
	if !ok {
		return false
	}
	c.AscendByte()
	return c.DescendByte(target)
}

// cloneCursor returns an independent copy of c: every slice field is
// defensively copied, so mutating the clone (via DescendByte/AscendByte)
// never touches c's own path/rel/history backing arrays. Used to save and
// restore a position around a tentative multi-step move (ToNextVal,
// ToNextKPath) that might not find anywhere to land.
func cloneCursor[V any](c cursor[V]) cursor[V] {
	return cursor[V]{
		handle:  c.handle,
		rel:     append([]byte(nil), c.rel...),
		path:    append([]byte(nil), c.path...),
		history: append([]cursorFrame[V](nil), c.history...),
		valid:   c.valid,
	}
}

// IsVal reports whether the cursor's exact current position holds a value.
func (c *cursor[V]) IsVal() bool {
	_, ok := c.Val()
	return ok
}

// ChildCount returns the number of distinct bytes that continue the trie
// from here.
func (c *cursor[V]) ChildCount() int {
	mask := c.ChildMask()
	return mask.Cardinality()
}

// FirstChild descends to the lowest byte that continues the trie from
// here, reporting false if there is none.
func (c *cursor[V]) FirstChild() bool {
	mask := c.ChildMask()
	b, ok := mask.FirstSet()
	if !ok {
		return false
	}
	return c.DescendByte(b)
}

// DescendIndexedByte descends via the i-th set bit (ascending order, 0
// indexed) of the current position's child mask -- the "select"
// counterpart to ChildMask/ChildCount's "rank" view. It reports false if i
// is out of range.
func (c *cursor[V]) DescendIndexedByte(i int) bool {
	mask := c.ChildMask()
	b, ok := mask.IndexedBit(i)
	if !ok {
		return false
	}
	return c.DescendByte(b)
}

// DescendUntil repeatedly descends to the sole child of single-child,
// valueless positions, stopping at the first position that holds a value,
// branches into more than one child, or has no children at all. It
// reports whether it moved at least one byte.
func (c *cursor[V]) DescendUntil() bool {
	moved := false
	for {
		if c.IsVal() || c.ChildCount() != 1 {
			return moved
		}
		if !c.FirstChild() {
			return moved
		}
		moved = true
	}
}

// DescendFirstKPath descends via FirstChild repeatedly until reaching a
// leaf, landing on the lexicographically first complete path stored at or
// below the current position. It reports whether it moved at least one
// byte.
func (c *cursor[V]) DescendFirstKPath() bool {
	moved := false
	for c.FirstChild() {
		moved = true
	}
	return moved
}

// AscendUntil ascends until reaching a position that holds a value, or the
// cursor's root. It reports whether it moved at least one byte.
func (c *cursor[V]) AscendUntil() bool {
	moved := false
	for len(c.path) > 0 {
		if !c.AscendByte() {
			return moved
		}
		moved = true
		if c.IsVal() {
			return moved
		}
	}
	return moved
}

// AscendUntilBranch ascends until reaching a position with more than one
// child, or the cursor's root. It reports whether it moved at least one
// byte.
func (c *cursor[V]) AscendUntilBranch() bool {
	moved := false
	for len(c.path) > 0 {
		if !c.AscendByte() {
			return moved
		}
		moved = true
		if c.ChildCount() > 1 {
			return moved
		}
	}
	return moved
}

// stepDFS advances the cursor to the next position in depth-first,
// lexicographic order: into the first child if there is one, otherwise to
// the next sibling, ascending as many levels as needed to find one. It
// reports false when there is no next position within the cursor's root,
// having by then ascended to that root; callers that need the old position
// back save it first (see ToNextVal).
func (c *cursor[V]) stepDFS() bool {
	if c.FirstChild() {
		return true
	}
	for len(c.path) > 0 {
		if c.ToNextSiblingByte() {
			return true
		}
		if !c.AscendByte() {
			return false
		}
	}
	return false
}

// ToNextVal advances to the next position, in lexicographic order, that
// holds a value, restoring the original position and reporting false if
// none remains within the cursor's root.
func (c *cursor[V]) ToNextVal() bool {
	saved := cloneCursor(*c)
	for c.stepDFS() {
		if c.IsVal() {
			return true
		}
	}
	*c = saved
	return false
}

// ToNextKPath advances to the next complete stored path -- a leaf position,
// with or without a value of its own -- in lexicographic order, restoring
// the original position and reporting false if none remains within the
// cursor's root.
func (c *cursor[V]) ToNextKPath() bool {
	saved := cloneCursor(*c)
	for c.stepDFS() {
		if c.IsLeaf() {
			return true
		}
	}
	*c = saved
	return false
}

// walkToHandle finds the Handle for the node reached by consuming path
// exactly, starting from root. It fails when path ends mid-segment.
func walkToHandle[V any](root node.Handle[V], path []byte) (node.Handle[V], bool) {
	if len(path) == 0 {
		return root, true
	}
	cur, rel := root.Node(), path
	for {
		consumed, h, ok := cur.GetChild(rel)
		if !ok {
			return node.Handle[V]{}, false
		}
		if consumed == len(rel) {
			return h, true
		}
		cur, rel = h.Node(), rel[consumed:]
	}
}
