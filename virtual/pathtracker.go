// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package virtual

import "github.com/gaissmai/pathmap/internal/bitmask"

// TrackPath is implemented by any zipper that maintains and exposes its
// own path buffer -- PathTracker satisfies it for a wrapped "blind" mover,
// and pathmap's own ReadZipper/WriteZipper satisfy it natively.
type TrackPath interface {
	Path() []byte
}

// BlindMover is the subset of zipper navigation a "blind" zipper
// implements: everything except Path. The virtual zippers in this package
// (OverlayZipper, ProductZipper, PrefixZipper, EmptyZipper) each implement
// Path themselves as well; PathTracker adds a path buffer to a mover that
// has none.
type BlindMover interface {
	PathExists() bool
	ChildMask() bitmask.ByteMask
	IsLeaf() bool
	DescendByte(b byte) bool
	DescendTo(path []byte) bool
	AscendByte() bool
	Ascend(n int) int
}

// PathTracker wraps a blind mover, maintaining its own path buffer so the
// wrapped zipper doesn't need to. Nested virtual zippers compose through
// PathTracker instead of each layer separately tracking (and copying) the
// same path bytes.
type PathTracker[Z BlindMover] struct {
	zipper    Z
	path      []byte
	originLen int
}

// NewPathTracker wraps zipper, tracking from the empty path.
func NewPathTracker[Z BlindMover](zipper Z) *PathTracker[Z] {
	return &PathTracker[Z]{zipper: zipper}
}

// NewPathTrackerWithOrigin wraps zipper, seeding the tracked path buffer
// with origin -- for a zipper that has already been positioned somewhere
// other than its conceptual root.
func NewPathTrackerWithOrigin[Z BlindMover](zipper Z, origin []byte) *PathTracker[Z] {
	return &PathTracker[Z]{zipper: zipper, path: append([]byte(nil), origin...), originLen: len(origin)}
}

func (t *PathTracker[Z]) Path() []byte { return append([]byte(nil), t.path...) }

func (t *PathTracker[Z]) PathExists() bool { return t.zipper.PathExists() }

func (t *PathTracker[Z]) ChildMask() bitmask.ByteMask { return t.zipper.ChildMask() }

func (t *PathTracker[Z]) IsLeaf() bool { return t.zipper.IsLeaf() }

func (t *PathTracker[Z]) DescendByte(b byte) bool {
	ok := t.zipper.DescendByte(b)
	t.path = append(t.path, b)
	return ok
}

func (t *PathTracker[Z]) DescendTo(path []byte) bool {
	ok := t.zipper.DescendTo(path)
	t.path = append(t.path, path...)
	return ok
}

func (t *PathTracker[Z]) AscendByte() bool {
	if !t.zipper.AscendByte() {
		return false
	}
	t.path = t.path[:len(t.path)-1]
	return true
}

func (t *PathTracker[Z]) Ascend(n int) int {
	moved := t.zipper.Ascend(n)
	t.path = t.path[:len(t.path)-moved]
	return moved
}
