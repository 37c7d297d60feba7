// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"bytes"
	"sync"
)

// ZipperHead is the exclusivity registrar for concurrent writers: it lets
// multiple WriteZippers exist over the same PathMap at once, provided their
// checked-out paths are pairwise non-overlapping (neither is a prefix of
// the other, nor equal). This is PathMap's entire concurrency model:
// there is no implicit locking anywhere else, and a WriteZipper
// obtained directly from PathMap.WriteZipper bypasses ZipperHead entirely
// and must be used exclusively by its single owner.
//
// basePath scopes a ZipperHead to a subtrie -- WriteZipper.ZipperHead
// returns one rooted at that zipper's own checked-out position, letting a
// single exclusive region be fanned back out into disjoint children.
type ZipperHead[V any] struct {
	m        *PathMap[V]
	basePath []byte

	mu         sync.Mutex
	checkedOut [][]byte
}

func newZipperHead[V any](m *PathMap[V]) *ZipperHead[V] {
	return &ZipperHead[V]{m: m}
}

func newZipperHeadAt[V any](m *PathMap[V], basePath []byte) *ZipperHead[V] {
	return &ZipperHead[V]{m: m, basePath: append([]byte(nil), basePath...)}
}

// overlaps reports whether a and b are equal or one is a prefix of the
// other -- the condition that makes two write regions unsafe to use
// concurrently, since a mutation under the shorter path can uniquify (and
// thus replace) nodes the longer path's zipper is still holding.
func overlaps(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return bytes.Equal(a[:n], b[:n])
}

// WriteZipperAt checks out an exclusive WriteZipper rooted at basePath/path.
// It fails with ErrExclusivity if path overlaps any write region already
// checked out through this ZipperHead. Call Release on the returned zipper
// to commit its changes and free the region for reuse; a zipper that is
// dropped without Release keeps its region checked out and its changes
// uncommitted.
//
// The returned zipper does not mutate zh's PathMap directly: at checkout,
// the node reached by full is copied into an isolated CellNode (see
// PathMap.shadowAt, internal/node/cell.go) that externalizes whatever value
// sits at full, and the zipper mutates that private copy exclusively. Two
// zippers checked out at disjoint paths therefore touch no shared state at
// all until Release, which splices the result back into zh's real PathMap
// under zh.mu -- this is what makes concurrent WriteZippers from the same
// ZipperHead safe, rather than merely serialized by a lock around every
// mutation.
func (zh *ZipperHead[V]) WriteZipperAt(path []byte) (*WriteZipper[V], error) {
	full := append(append([]byte(nil), zh.basePath...), path...)

	zh.mu.Lock()
	for _, existing := range zh.checkedOut {
		if overlaps(full, existing) {
			zh.mu.Unlock()
			return nil, ErrExclusivity
		}
	}
	zh.checkedOut = append(zh.checkedOut, append([]byte(nil), full...))
	shadow := zh.m.shadowAt(full)
	zh.mu.Unlock()

	z := newWriteZipper(shadow, nil)
	z.zh = zh
	z.zhRegion = full
	return z, nil
}

// ReadZipperAt returns a read-only cursor rooted at basePath/path, snapshot
// from zh's PathMap at call time via Clone's O(1) refcount bump. Unlike
// WriteZipperAt it registers no exclusivity region: a read-only snapshot
// never conflicts with any other reader or writer, concurrent or not.
func (zh *ZipperHead[V]) ReadZipperAt(path []byte) *ReadZipper[V] {
	full := append(append([]byte(nil), zh.basePath...), path...)
	zh.mu.Lock()
	z := zh.m.ReadZipperAtPath(full)
	zh.mu.Unlock()
	return z
}

// commit splices shadow -- a WriteZipper's private, isolated copy of the
// subtree at region -- back into zh's real PathMap. Called by
// WriteZipper.Release before the region is freed, under the same mutex
// that guards checkedOut, so a commit can never race a sibling checkout's
// read of the pre-commit state.
func (zh *ZipperHead[V]) commit(region []byte, shadow *PathMap[V]) {
	zh.mu.Lock()
	defer zh.mu.Unlock()
	zh.m.spliceSubtree(region, shadow)
}

// release removes region from the checked-out set, called by
// WriteZipper.Release.
func (zh *ZipperHead[V]) release(region []byte) {
	zh.mu.Lock()
	defer zh.mu.Unlock()
	for i, existing := range zh.checkedOut {
		if bytes.Equal(existing, region) {
			zh.checkedOut = append(zh.checkedOut[:i], zh.checkedOut[i+1:]...)
			return
		}
	}
}
