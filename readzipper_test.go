// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import (
	"bytes"
	"testing"
)

func seeded(t *testing.T) *PathMap[int] {
	t.Helper()
	m := New[int]()
	for i, k := range []string{"a", "ab", "abc", "b", "bcd"} {
		m.Insert([]byte(k), i)
	}
	return m
}

func TestReadZipperDescendAndVal(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	if !z.DescendTo([]byte("abc")) {
		t.Fatalf("DescendTo(abc) should succeed")
	}
	if v, ok := z.Val(); !ok || v != 2 {
		t.Fatalf("Val() = %v, %v, want 2, true", v, ok)
	}
	if !z.PathExists() {
		t.Fatalf("PathExists() should be true at abc")
	}
}

func TestReadZipperDescendMissingPath(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	if z.DescendTo([]byte("xyz")) {
		t.Fatalf("DescendTo(xyz) should fail")
	}
	if z.PathExists() {
		t.Fatalf("PathExists() should be false off the trie")
	}
}

func TestReadZipperAscend(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	z.DescendTo([]byte("abc"))
	if !z.AscendByte() {
		t.Fatalf("AscendByte should succeed")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("Val() after ascend = %v, %v, want 1, true", v, ok)
	}
	n := z.Ascend(5)
	if n != 2 {
		t.Fatalf("Ascend(5) moved %d, want 2 (clamped to root)", n)
	}
	if z.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", z.Depth())
	}
}

func TestReadZipperFirstChild(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	if !z.FirstChild() {
		t.Fatalf("FirstChild() should find a, b")
	}
	if !z.PathExists() {
		t.Fatalf("PathExists after FirstChild")
	}
}

func TestReadZipperForkIsIndependent(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	z.DescendByte('a')
	fork, ok := z.Fork()
	if !ok {
		t.Fatalf("Fork() should succeed at a node boundary")
	}
	fork.DescendByte('b')
	if z.Depth() != 1 {
		t.Fatalf("forking must not move the original zipper, got depth %d", z.Depth())
	}
}

func TestReadZipperForkFailsMidSegment(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("hello"), 1)
	z := m.ReadZipper()
	z.DescendByte('h')
	z.DescendByte('e')
	if _, ok := z.Fork(); ok {
		t.Fatalf("Fork() should fail mid-segment")
	}
}

func TestReadZipperSubtrieValCount(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	z.DescendByte('a')
	// the value at "a" itself lives in the parent entry, not in the
	// subtrie reached after consuming 'a' -- only "ab" and "abc" count.
	if n := z.SubtrieValCount(); n != 2 {
		t.Fatalf("SubtrieValCount() under a = %d, want 2 (ab, abc)", n)
	}
}

func TestReadZipperAsPathMap(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	z.DescendByte('a')
	sub, ok := z.AsPathMap()
	if !ok {
		t.Fatalf("AsPathMap() should succeed at a node boundary")
	}
	if sub.ValCount() != 2 {
		t.Fatalf("sub.ValCount() = %d, want 2", sub.ValCount())
	}
	if v, ok := sub.GetValAt([]byte("bc")); !ok || v != 2 {
		t.Fatalf("sub.GetValAt(bc) = %v, %v, want 2, true (abc minus the a prefix)", v, ok)
	}
}

func TestReadZipperSiblingStepping(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "b", "c"} {
		m.Insert([]byte(k), i)
	}
	z := m.ReadZipper()
	z.DescendByte('a')
	if !z.ToNextSiblingByte() {
		t.Fatalf("ToNextSiblingByte from a should reach b")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("Val() at sibling = %v, %v, want 1, true", v, ok)
	}
	if !z.ToNextSiblingByte() {
		t.Fatalf("ToNextSiblingByte from b should reach c")
	}
	if z.ToNextSiblingByte() {
		t.Fatalf("ToNextSiblingByte from c should fail, no more siblings")
	}
	if !z.ToPrevSiblingByte() {
		t.Fatalf("ToPrevSiblingByte from c should reach b")
	}
}

func TestReadZipperIsValAndChildCount(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	if z.IsVal() {
		t.Fatalf("IsVal() at root should be false, seeded never inserts at the empty path")
	}
	if n := z.ChildCount(); n != 2 {
		t.Fatalf("ChildCount() at root = %d, want 2 (a, b)", n)
	}
	z.DescendByte('a')
	if !z.IsVal() {
		t.Fatalf("IsVal() at a should be true")
	}
}

func TestReadZipperDescendIndexedByte(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"a", "m", "z"} {
		m.Insert([]byte(k), i)
	}
	z := m.ReadZipper()
	if !z.DescendIndexedByte(1) {
		t.Fatalf("DescendIndexedByte(1) should reach the middle child")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("Val() = %v, %v, want 1 (m, the second key in byte order)", v, ok)
	}
	if z.DescendIndexedByte(0) {
		t.Fatalf("DescendIndexedByte(0) from a leaf should fail, no children")
	}
}

func TestReadZipperDescendIndexedByteOutOfRange(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	if z.DescendIndexedByte(5) {
		t.Fatalf("DescendIndexedByte(5) should fail, only 2 children at root")
	}
}

func TestReadZipperDescendUntilLinearChain(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("xyz"), 42)
	z := m.ReadZipper()
	if !z.DescendUntil() {
		t.Fatalf("DescendUntil should move through the unbranched chain to xyz")
	}
	if v, ok := z.Val(); !ok || v != 42 {
		t.Fatalf("Val() after DescendUntil = %v, %v, want 42, true", v, ok)
	}
}

func TestReadZipperDescendUntilStopsAtBranch(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("am"), 1)
	m.Insert([]byte("an"), 2)
	z := m.ReadZipper()
	if !z.DescendUntil() {
		t.Fatalf("DescendUntil should move at least to the branch point")
	}
	if z.ChildCount() < 2 {
		t.Fatalf("DescendUntil should stop at (or before) the branch, ChildCount() = %d", z.ChildCount())
	}
}

func TestReadZipperDescendFirstKPath(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"b", "d", "f"} {
		m.Insert([]byte(k), i)
	}
	z := m.ReadZipper()
	if !z.DescendFirstKPath() {
		t.Fatalf("DescendFirstKPath should move")
	}
	if v, ok := z.Val(); !ok || v != 0 {
		t.Fatalf("Val() = %v, %v, want 0 (b, the lexicographically first key)", v, ok)
	}
}

func TestReadZipperAscendUntil(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("a"), 1)
	m.Insert([]byte("ab"), 2)
	z := m.ReadZipper()
	z.DescendTo([]byte("ab"))
	if !z.AscendUntil() {
		t.Fatalf("AscendUntil should move up to the nearest valued ancestor")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("Val() after AscendUntil = %v, %v, want 1 (the value at a)", v, ok)
	}
}

func TestReadZipperAscendUntilBranch(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("am"), 1)
	m.Insert([]byte("an"), 2)
	z := m.ReadZipper()
	z.DescendTo([]byte("am"))
	if !z.AscendUntilBranch() {
		t.Fatalf("AscendUntilBranch should move up to the branch point")
	}
	if n := z.ChildCount(); n < 2 {
		t.Fatalf("ChildCount() at branch point = %d, want >= 2", n)
	}
}

func TestReadZipperToNextValSequence(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"b", "d", "f"} {
		m.Insert([]byte(k), i)
	}
	z := m.ReadZipper()
	var got []int
	for z.ToNextVal() {
		v, _ := z.Val()
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("ToNextVal sequence = %v, want [0 1 2]", got)
	}
}

func TestReadZipperToNextValRestoresOnExhaustion(t *testing.T) {
	m := New[int]()
	m.Insert([]byte("b"), 1)
	z := m.ReadZipper()
	z.DescendTo([]byte("b"))
	if z.ToNextVal() {
		t.Fatalf("ToNextVal should fail, b is the only value")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("position should be restored to b, got %v, %v", v, ok)
	}
}

func TestReadZipperToNextKPath(t *testing.T) {
	m := New[int]()
	for i, k := range []string{"b", "d", "f"} {
		m.Insert([]byte(k), i)
	}
	z := m.ReadZipper()
	var got []int
	for z.ToNextKPath() {
		v, ok := z.Val()
		if !ok {
			t.Fatalf("every leaf in this map holds a value")
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("ToNextKPath sequence = %v, want [0 1 2]", got)
	}
}

func TestReadZipperOriginAndAtRoot(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipperAtPath([]byte("a"))
	if !bytes.Equal(z.OriginPath(), []byte("a")) {
		t.Fatalf("OriginPath() = %q, want %q", z.OriginPath(), "a")
	}
	if !bytes.Equal(z.RootPrefixPath(), []byte("a")) {
		t.Fatalf("RootPrefixPath() = %q, want %q", z.RootPrefixPath(), "a")
	}
	if !z.AtRoot() {
		t.Fatalf("AtRoot() should be true right after checkout")
	}
	z.DescendByte('b')
	if z.AtRoot() {
		t.Fatalf("AtRoot() should be false after descending")
	}
}

func TestReadZipperOriginEmptyForPlainRoot(t *testing.T) {
	m := seeded(t)
	z := m.ReadZipper()
	if len(z.OriginPath()) != 0 {
		t.Fatalf("OriginPath() = %q, want empty", z.OriginPath())
	}
	if !z.AtRoot() {
		t.Fatalf("AtRoot() should be true initially")
	}
}
