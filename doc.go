// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package pathmap implements PathMap, an ordered associative container
// keyed by byte-string paths.
//
// PathMap is simultaneously three things over the same backing structure:
//
//   - a sorted map: Insert, GetValAt, RemoveValAt, lexicographic iteration
//     via a ReadZipper or WriteZipper
//   - a prefix index: ContainsPath, ChildMask and the zipper's descend/
//     ascend navigation expose prefix structure directly, not just exact
//     lookups
//   - an algebraic lattice: Join, Meet, Subtract and Restrict treat two
//     PathMaps as sets of paths (with values) and compute their union,
//     intersection, difference and path-mask restriction by walking the
//     entries of both operands together; subtries the operands share are
//     not detected and are walked like any others
//
// The backing structure is a compressed bitmap trie with copy-on-write
// structural sharing (internal/node, internal/bitmask): a node is one of
// three variants chosen by how many branches it holds (TinyRef, LineList,
// Dense), or a Cell, the variant that also holds a value at its own
// position and serves as every PathMap's root; every mutation uniquifies
// only the path from the root
// to the mutated node, sharing everything else with any other PathMap or
// zipper still holding the old Handle.
//
// Zippers (ReadZipper, WriteZipper) are the cursor abstraction for
// traversing and mutating a PathMap without repeatedly walking from the
// root; ZipperHead is the concurrency discipline that lets multiple
// WriteZippers mutate disjoint parts of the same PathMap at once.
package pathmap
