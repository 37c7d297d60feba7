// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package virtual

import (
	"testing"

	"github.com/gaissmai/pathmap"
)

func TestProductZipperCrossesFactorAtLeafValue(t *testing.T) {
	colors := pathmap.New[int]()
	colors.Insert([]byte("red"), 1)
	colors.Insert([]byte("blue"), 2)

	sizes := pathmap.New[int]()
	sizes.Insert([]byte("s"), 10)
	sizes.Insert([]byte("l"), 20)

	p := NewProductZipper(colors.ReadZipper(), sizes.ReadZipper())

	if !p.DescendTo([]byte("red")) {
		t.Fatalf("descending a complete word of factor 0 should succeed")
	}
	if p.FactorIndex() != 1 {
		t.Fatalf("FactorIndex() after a complete factor-0 word = %d, want 1", p.FactorIndex())
	}
	if !p.DescendByte('s') {
		t.Fatalf("descending into factor 1 should succeed")
	}
	if v, ok := p.Val(); !ok || v != 10 {
		t.Fatalf("Val() at red+s = %v, %v, want 10, true", v, ok)
	}
}

func TestProductZipperRejectsUnknownWord(t *testing.T) {
	colors := pathmap.New[int]()
	colors.Insert([]byte("red"), 1)
	sizes := pathmap.New[int]()
	sizes.Insert([]byte("s"), 10)

	p := NewProductZipper(colors.ReadZipper(), sizes.ReadZipper())
	if p.DescendTo([]byte("green")) {
		t.Fatalf("descending a word absent from factor 0 should fail")
	}
}

func TestProductZipperValOnlyAtLastFactor(t *testing.T) {
	colors := pathmap.New[int]()
	colors.Insert([]byte("red"), 1)
	sizes := pathmap.New[int]()
	sizes.Insert([]byte("s"), 10)

	p := NewProductZipper(colors.ReadZipper(), sizes.ReadZipper())
	p.DescendTo([]byte("re"))
	if _, ok := p.Val(); ok {
		t.Fatalf("Val() should be empty partway through factor 0's word")
	}
	p.DescendByte('d')
	if _, ok := p.Val(); ok {
		t.Fatalf("Val() should still be empty at a factor boundary, before factor 1 contributes anything")
	}
}

func TestProductZipperAscend(t *testing.T) {
	colors := pathmap.New[int]()
	colors.Insert([]byte("red"), 1)
	sizes := pathmap.New[int]()
	sizes.Insert([]byte("s"), 10)

	p := NewProductZipper(colors.ReadZipper(), sizes.ReadZipper())
	p.DescendTo([]byte("reds"))
	if n := p.Ascend(10); n != 4 {
		t.Fatalf("Ascend(10) moved %d, want 4 (clamped to the full path)", n)
	}
	if len(p.Path()) != 0 {
		t.Fatalf("Path() after full ascend = %q, want empty", p.Path())
	}
}
