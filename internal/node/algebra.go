// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

// Package-wide note on scope: a node's branch structure (entries reached by
// BranchesMask/NextItems) and its externalized root value (GetVal(nil), see
// cell.go) are combined separately. The branch merge is the am/bm loop
// below; combineRootVal folds in the two operands' own values afterwards,
// materializing the branch result as a CellNode exactly when that
// combination produces one. Plain TinyRef/LineList/Dense nodes never carry
// a root value (GetVal(nil) is always (zero, false)), so this is a no-op
// everywhere except at a PathMap's actual root.
//
// This file implements join/meet/subtract/restrict exactly once, generically
// against the Node interface, rather than once per physical variant with its
// own union/overlaps implementation. Go generics make the single
// implementation possible without sacrificing the per-variant storage
// layouts; see DESIGN.md for the tradeoff this was chosen over.

// entriesByByte enumerates n's direct entries indexed by branch byte.
func entriesByByte[V any](n Node[V]) map[byte]entry[V] {
	out := map[byte]entry[V]{}
	tok := n.NewIterToken()
	for {
		item, next, ok := n.NextItems(tok)
		if !ok {
			break
		}
		out[item.Segment[0]] = entry[V]{segment: item.Segment, hasVal: item.HasVal, val: item.Val, child: item.Child}
		tok = next
	}
	return out
}

// descend narrows e to a length-at entry: if e.segment is already exactly
// at bytes long it is returned unchanged, otherwise the bytes beyond at are
// pushed into a synthetic single-entry TinyRefNode child. It is the
// alignment step every pairwise algebraic merge needs before it can compare
// two entries that happen to share a branch byte but diverge, or nest,
// partway through their compressed segments.
func descend[V any](e entry[V], at int) entry[V] {
	if at == len(e.segment) {
		return e
	}
	remainder := entry[V]{segment: append([]byte(nil), e.segment[at:]...), hasVal: e.hasVal, val: e.val, child: e.child}
	return entry[V]{
		segment: append([]byte(nil), e.segment[:at]...),
		child:   NewHandle[V](newTinyRefWithEntry(remainder)),
	}
}

// buildResult packages accumulated entries into a result node, or StatusNone
// if empty. It starts from a LineListNode, which upgrades itself to Dense on
// overflow via its own SetBranch/SetVal -- the same capacity machinery used
// for ordinary inserts.
func buildResult[V any](entries []entry[V]) AlgebraicResult[V] {
	if len(entries) == 0 {
		return noneResult[V]()
	}
	var acc Node[V] = NewLineList[V]()
	for _, e := range entries {
		if e.hasVal {
			if _, _, upg := acc.SetVal(e.segment, e.val); upg != nil {
				acc = upg
			}
		}
		if e.hasChild() {
			if upg := acc.SetBranch(e.segment, e.child); upg != nil {
				acc = upg
			}
		}
	}
	return elementResult[V](acc)
}

// combineRootVal wraps res's branch node in a CellNode carrying val as its
// own-position value. Called only with a value that survived the
// operation's combinator; a no-op (returns res unchanged) when has is
// false.
func combineRootVal[V any](res AlgebraicResult[V], val V, has bool) AlgebraicResult[V] {
	if !has {
		return res
	}
	var branch Node[V] = NewTinyRef[V]()
	if res.Status == StatusElement {
		branch = res.Node
	}
	return elementResult[V](ToCell[V](branch, val, true))
}

func genericJoin[V any](a, b Node[V], joinVal func(x, y V) V) AlgebraicResult[V] {
	if a.IsEmpty() {
		if b.IsEmpty() {
			return noneResult[V]()
		}
		return identityResult[V](IdentityCounter)
	}
	if b.IsEmpty() {
		return identityResult[V](IdentitySelf)
	}

	am, bm := entriesByByte(a), entriesByByte(b)
	var out []entry[V]
	for byt, ae := range am {
		be, inBoth := bm[byt]
		if !inBoth {
			out = append(out, ae)
			continue
		}
		cpl := commonPrefixLen(ae.segment, be.segment)
		na, nb := descend(ae, cpl), descend(be, cpl)
		merged := entry[V]{segment: na.segment}
		switch {
		case na.hasVal && nb.hasVal:
			merged.hasVal, merged.val = true, joinVal(na.val, nb.val)
		case na.hasVal:
			merged.hasVal, merged.val = true, na.val
		case nb.hasVal:
			merged.hasVal, merged.val = true, nb.val
		}
		switch {
		case na.hasChild() && nb.hasChild():
			res := na.child.Node().PJoin(nb.child.Node(), joinVal)
			merged.child = resolveChild(na.child, nb.child, res)
		case na.hasChild():
			merged.child = na.child
		case nb.hasChild():
			merged.child = nb.child
		}
		out = append(out, merged)
	}
	for byt, be := range bm {
		if _, inA := am[byt]; !inA {
			out = append(out, be)
		}
	}
	res := buildResult(out)
	av, ahas := a.GetVal(nil)
	bv, bhas := b.GetVal(nil)
	switch {
	case ahas && bhas:
		return combineRootVal(res, joinVal(av, bv), true)
	case ahas:
		return combineRootVal(res, av, true)
	case bhas:
		return combineRootVal(res, bv, true)
	}
	return res
}

func genericMeet[V any](a, b Node[V], meetVal func(x, y V) V) AlgebraicResult[V] {
	if a.IsEmpty() || b.IsEmpty() {
		return noneResult[V]()
	}
	am, bm := entriesByByte(a), entriesByByte(b)
	var out []entry[V]
	for byt, ae := range am {
		be, inBoth := bm[byt]
		if !inBoth {
			continue
		}
		cpl := commonPrefixLen(ae.segment, be.segment)
		na, nb := descend(ae, cpl), descend(be, cpl)
		merged := entry[V]{segment: na.segment}
		if na.hasVal && nb.hasVal {
			merged.hasVal, merged.val = true, meetVal(na.val, nb.val)
		}
		if na.hasChild() && nb.hasChild() {
			res := na.child.Node().PMeet(nb.child.Node(), meetVal)
			merged.child = resolveChild(na.child, nb.child, res)
		}
		if merged.hasVal || merged.hasChild() {
			out = append(out, merged)
		}
	}
	res := buildResult(out)
	av, ahas := a.GetVal(nil)
	bv, bhas := b.GetVal(nil)
	if ahas && bhas {
		return combineRootVal(res, meetVal(av, bv), true)
	}
	return res
}

func genericSubtract[V any](a, b Node[V], subtractVal func(x, y V) (V, bool)) AlgebraicResult[V] {
	if a.IsEmpty() {
		return noneResult[V]()
	}
	if b.IsEmpty() {
		return identityResult[V](IdentitySelf)
	}
	am, bm := entriesByByte(a), entriesByByte(b)
	var out []entry[V]
	for byt, ae := range am {
		be, inBoth := bm[byt]
		if !inBoth {
			out = append(out, ae)
			continue
		}
		cpl := commonPrefixLen(ae.segment, be.segment)
		na, nb := descend(ae, cpl), descend(be, cpl)
		merged := entry[V]{segment: na.segment}
		switch {
		case na.hasVal && nb.hasVal:
			if v, keep := subtractVal(na.val, nb.val); keep {
				merged.hasVal, merged.val = true, v
			}
		case na.hasVal:
			merged.hasVal, merged.val = true, na.val
		}
		switch {
		case na.hasChild() && nb.hasChild():
			res := na.child.Node().PSubtract(nb.child.Node(), subtractVal)
			merged.child = resolveChild(na.child, nb.child, res)
		case na.hasChild():
			merged.child = na.child
		}
		if merged.hasVal || merged.hasChild() {
			out = append(out, merged)
		}
	}
	res := buildResult(out)
	av, ahas := a.GetVal(nil)
	bv, bhas := b.GetVal(nil)
	switch {
	case ahas && bhas:
		if v, keep := subtractVal(av, bv); keep {
			return combineRootVal(res, v, true)
		}
	case ahas:
		return combineRootVal(res, av, true)
	}
	return res
}

func genericRestrict[V any](a, b Node[V]) AlgebraicResult[V] {
	if a.IsEmpty() || b.IsEmpty() {
		return noneResult[V]()
	}
	am, bm := entriesByByte(a), entriesByByte(b)
	var out []entry[V]
	for byt, ae := range am {
		be, inBoth := bm[byt]
		if !inBoth {
			continue
		}
		cpl := commonPrefixLen(ae.segment, be.segment)
		na, nb := descend(ae, cpl), descend(be, cpl)
		merged := entry[V]{segment: na.segment, hasVal: na.hasVal, val: na.val}
		if na.hasChild() && nb.hasChild() {
			res := na.child.Node().PRestrict(nb.child.Node())
			merged.child = resolveChild(na.child, nb.child, res)
		}
		if merged.hasVal || merged.hasChild() {
			out = append(out, merged)
		}
	}
	res := buildResult(out)
	av, ahas := a.GetVal(nil)
	_, bhas := b.GetVal(nil)
	if ahas && bhas {
		return combineRootVal(res, av, true)
	}
	return res
}

// resolveChild turns a child-level AlgebraicResult back into a Handle,
// sharing the original handles on the Identity paths rather than rebuilding.
func resolveChild[V any](selfH, counterH Handle[V], res AlgebraicResult[V]) Handle[V] {
	switch res.Status {
	case StatusNone:
		return Handle[V]{}
	case StatusIdentity:
		if res.Mask&IdentitySelf != 0 {
			return selfH.Clone()
		}
		return counterH.Clone()
	default:
		return NewHandle[V](res.Node)
	}
}
