// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package virtual

import (
	"testing"

	"github.com/gaissmai/pathmap"
)

func TestPrefixZipperHidesPrefixFromSource(t *testing.T) {
	m := pathmap.New[int]()
	m.Insert([]byte("x"), 1)

	z := NewPrefixZipper([]byte("ns/"), m.ReadZipper())
	if _, ok := z.Val(); ok {
		t.Fatalf("Val() should be empty while inside the virtual prefix")
	}
	if !z.DescendByte('n') || !z.DescendByte('s') || !z.DescendByte('/') {
		t.Fatalf("descending the fixed prefix bytes should succeed")
	}
	if !z.DescendByte('x') {
		t.Fatalf("once the prefix is consumed, descent should reach source")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("Val() at ns/x = %v, %v, want 1, true", v, ok)
	}
}

func TestPrefixZipperRejectsWrongByte(t *testing.T) {
	m := pathmap.New[int]()
	z := NewPrefixZipper([]byte("ns/"), m.ReadZipper())
	if z.DescendByte('z') {
		t.Fatalf("descending a byte that doesn't match the fixed prefix should fail")
	}
	if z.PathExists() {
		t.Fatalf("PathExists should be false after a failed descend")
	}
}

func TestPrefixZipperWithOrigin(t *testing.T) {
	m := pathmap.New[int]()
	m.Insert([]byte("x"), 1)

	z := NewPrefixZipper([]byte("ns/sub/"), m.ReadZipper())
	if !z.WithOrigin([]byte("ns/")) {
		t.Fatalf("WithOrigin(ns/) should succeed, it's a prefix of ns/sub/")
	}
	if !z.DescendByte('s') || !z.DescendByte('u') || !z.DescendByte('b') || !z.DescendByte('/') {
		t.Fatalf("descending the remaining virtual prefix should succeed")
	}
	if !z.DescendByte('x') {
		t.Fatalf("reaching source after the remaining prefix should succeed")
	}
	if v, ok := z.Val(); !ok || v != 1 {
		t.Fatalf("Val() = %v, %v, want 1, true", v, ok)
	}
}

func TestPrefixZipperWithOriginFailsAfterDescend(t *testing.T) {
	m := pathmap.New[int]()
	z := NewPrefixZipper([]byte("ns/"), m.ReadZipper())
	z.DescendByte('n')
	if z.WithOrigin([]byte("n")) {
		t.Fatalf("WithOrigin must fail once any descend has happened")
	}
}

func TestPrefixZipperAscendCrossesBackOverSourceBoundary(t *testing.T) {
	m := pathmap.New[int]()
	m.Insert([]byte("x"), 1)
	z := NewPrefixZipper([]byte("ns/"), m.ReadZipper())
	z.DescendTo([]byte("ns/x"))
	if !z.AscendByte() {
		t.Fatalf("AscendByte should undo the source descend")
	}
	if _, ok := z.Val(); ok {
		t.Fatalf("Val() should be empty back at the prefix boundary")
	}
	if !z.AscendByte() || !z.AscendByte() || !z.AscendByte() {
		t.Fatalf("ascending back through the virtual prefix should keep succeeding")
	}
	if z.AscendByte() {
		t.Fatalf("AscendByte at the zipper's own root should fail")
	}
}
