// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import (
	"testing"
)

func collect[V any](n Node[V], prefix []byte, out map[string]V) {
	tok := n.NewIterToken()
	for {
		item, next, ok := n.NextItems(tok)
		if !ok {
			return
		}
		p := append(append([]byte(nil), prefix...), item.Segment...)
		if item.HasVal {
			out[string(p)] = item.Val
		}
		if item.Child.Node() != nil {
			collect(item.Child.Node(), p, out)
		}
		tok = next
	}
}

func allVals[V any](n Node[V]) map[string]V {
	out := map[string]V{}
	collect(n, nil, out)
	return out
}

func TestTinyRefBasic(t *testing.T) {
	var n Node[int] = NewTinyRef[int]()
	for _, kv := range []struct {
		k string
		v int
	}{{"a", 1}, {"ab", 2}} {
		_, _, upg := n.SetVal([]byte(kv.k), kv.v)
		if upg != nil {
			n = upg
		}
	}
	if v, ok := n.GetVal([]byte("a")); !ok || v != 1 {
		t.Fatalf("GetVal(a) = %v, %v", v, ok)
	}
	if v, ok := n.GetVal([]byte("ab")); !ok || v != 2 {
		t.Fatalf("GetVal(ab) = %v, %v", v, ok)
	}
	if _, ok := n.GetVal([]byte("abc")); ok {
		t.Fatalf("GetVal(abc) should miss")
	}
}

func TestUpgradeChainTinyRefToLineListToDense(t *testing.T) {
	var n Node[int] = NewTinyRef[int]()
	keys := []string{"a", "b", "c", "d", "e"}
	for i, k := range keys {
		_, _, upg := n.SetVal([]byte(k), i)
		if upg != nil {
			n = upg
		}
	}
	if _, ok := n.(*LineListNode[int]); !ok {
		t.Fatalf("expected upgrade to LineListNode, got %T", n)
	}
	for i := 0; i < lineListDenseThreshold+1; i++ {
		k := []byte{byte(i)}
		_, _, upg := n.SetVal(k, i)
		if upg != nil {
			n = upg
		}
	}
	if _, ok := n.(*DenseNode[int]); !ok {
		t.Fatalf("expected upgrade to DenseNode, got %T", n)
	}
	for i := 0; i < lineListDenseThreshold+1; i++ {
		if v, ok := n.GetVal([]byte{byte(i)}); !ok || v != i {
			t.Fatalf("GetVal(%d) = %v, %v, want %d, true", i, v, ok, i)
		}
	}
}

func TestCompressedSegmentSplit(t *testing.T) {
	var n Node[string] = NewTinyRef[string]()
	_, _, upg := n.SetVal([]byte("hello"), "world")
	if upg != nil {
		n = upg
	}
	_, _, upg = n.SetVal([]byte("help"), "me")
	if upg != nil {
		n = upg
	}
	if v, ok := n.GetVal([]byte("hello")); !ok || v != "world" {
		t.Fatalf("GetVal(hello) = %v, %v", v, ok)
	}
	if v, ok := n.GetVal([]byte("help")); !ok || v != "me" {
		t.Fatalf("GetVal(help) = %v, %v", v, ok)
	}
	if !n.ContainsPartialKey([]byte("hel")) {
		t.Fatalf("ContainsPartialKey(hel) should be true")
	}
	if _, ok := n.GetVal([]byte("hel")); ok {
		t.Fatalf("GetVal(hel) should miss, no value stored there")
	}
}

func TestRemoveValCompacts(t *testing.T) {
	var n Node[int] = NewTinyRef[int]()
	_, _, upg := n.SetVal([]byte("x"), 1)
	if upg != nil {
		n = upg
	}
	old, had, _ := n.RemoveVal([]byte("x"))
	if !had || old != 1 {
		t.Fatalf("RemoveVal(x) = %v, %v", old, had)
	}
	if !n.IsEmpty() {
		t.Fatalf("node should be empty after removing its only value")
	}
}

func TestJoinUnionsDisjointKeys(t *testing.T) {
	var a Node[int] = NewTinyRef[int]()
	_, _, upg := a.SetVal([]byte("a"), 1)
	if upg != nil {
		a = upg
	}
	var b Node[int] = NewTinyRef[int]()
	_, _, upg = b.SetVal([]byte("b"), 2)
	if upg != nil {
		b = upg
	}
	res := a.PJoin(b, func(x, y int) int { return x + y })
	if res.Status != StatusElement {
		t.Fatalf("join status = %v, want StatusElement", res.Status)
	}
	got := allVals[int](res.Node)
	if got["a"] != 1 || got["b"] != 2 || len(got) != 2 {
		t.Fatalf("join result = %v", got)
	}
}

func TestJoinMergesOverlappingValue(t *testing.T) {
	var a Node[int] = NewTinyRef[int]()
	_, _, upg := a.SetVal([]byte("same"), 10)
	if upg != nil {
		a = upg
	}
	var b Node[int] = NewTinyRef[int]()
	_, _, upg = b.SetVal([]byte("same"), 20)
	if upg != nil {
		b = upg
	}
	res := a.PJoin(b, func(x, y int) int { return x + y })
	got := allVals[int](res.Node)
	if got["same"] != 30 {
		t.Fatalf("join merged value = %v, want 30", got["same"])
	}
}

func TestJoinIdentityOnEmptyOperand(t *testing.T) {
	var a Node[int] = NewTinyRef[int]()
	_, _, upg := a.SetVal([]byte("a"), 1)
	if upg != nil {
		a = upg
	}
	var empty Node[int] = NewTinyRef[int]()

	res := a.PJoin(empty, func(x, y int) int { return x })
	if res.Status != StatusIdentity || res.Mask&IdentitySelf == 0 {
		t.Fatalf("join with empty counter = %+v, want Identity/Self", res)
	}

	res2 := empty.PJoin(a, func(x, y int) int { return x })
	if res2.Status != StatusIdentity || res2.Mask&IdentityCounter == 0 {
		t.Fatalf("join from empty self = %+v, want Identity/Counter", res2)
	}
}

func TestMeetKeepsOnlySharedKeys(t *testing.T) {
	var a Node[int] = NewTinyRef[int]()
	for _, k := range []string{"a", "b"} {
		_, _, upg := a.SetVal([]byte(k), 1)
		if upg != nil {
			a = upg
		}
	}
	var b Node[int] = NewTinyRef[int]()
	for _, k := range []string{"b", "c"} {
		_, _, upg := b.SetVal([]byte(k), 1)
		if upg != nil {
			b = upg
		}
	}
	res := a.PMeet(b, func(x, y int) int { return x + y })
	got := allVals[int](res.Node)
	if len(got) != 1 || got["b"] != 2 {
		t.Fatalf("meet result = %v", got)
	}
}

func TestSubtractRemovesSharedKeys(t *testing.T) {
	var a Node[int] = NewTinyRef[int]()
	for _, k := range []string{"a", "b"} {
		_, _, upg := a.SetVal([]byte(k), 1)
		if upg != nil {
			a = upg
		}
	}
	var b Node[int] = NewTinyRef[int]()
	_, _, upg := b.SetVal([]byte("b"), 1)
	if upg != nil {
		b = upg
	}
	res := a.PSubtract(b, func(x, y int) (int, bool) { return 0, false })
	got := allVals[int](res.Node)
	if len(got) != 1 {
		t.Fatalf("subtract result = %v", got)
	}
	if _, ok := got["a"]; !ok {
		t.Fatalf("subtract should keep a, got %v", got)
	}
}

func TestRestrictKeepsOnlyMaskedPaths(t *testing.T) {
	var a Node[int] = NewTinyRef[int]()
	for _, k := range []string{"a", "b"} {
		_, _, upg := a.SetVal([]byte(k), 1)
		if upg != nil {
			a = upg
		}
	}
	var mask Node[int] = NewTinyRef[int]()
	_, _, upg := mask.SetVal([]byte("a"), 0)
	if upg != nil {
		mask = upg
	}
	res := a.PRestrict(mask)
	got := allVals[int](res.Node)
	if len(got) != 1 || got["a"] != 1 {
		t.Fatalf("restrict result = %v", got)
	}
}

func TestCellNodeRootValue(t *testing.T) {
	var plain Node[int] = NewTinyRef[int]()
	_, _, upg := plain.SetVal([]byte("x"), 5)
	if upg != nil {
		plain = upg
	}
	c := ToCell[int](plain, 99, true)
	if v, ok := c.GetVal(nil); !ok || v != 99 {
		t.Fatalf("CellNode root value = %v, %v, want 99, true", v, ok)
	}
	if v, ok := c.GetVal([]byte("x")); !ok || v != 5 {
		t.Fatalf("CellNode inherited branch value = %v, %v, want 5, true", v, ok)
	}
}

func TestHandleMakeMutCOW(t *testing.T) {
	h := NewHandle[int](NewTinyRef[int]())
	h2 := h.Clone()
	if !h.Shared() {
		t.Fatalf("handle should report shared after Clone")
	}
	mutated := h.MakeMut()
	if mutated == h2.Node() {
		t.Fatalf("MakeMut on a shared handle must not mutate the aliased node")
	}
	if h.Shared() {
		t.Fatalf("handle should be uniquely owned after MakeMut split")
	}
}
