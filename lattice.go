// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

// Lattice, DistributiveLattice, PartialDistributiveLattice and MapRing are
// ported from the pathmap crate's ring.rs: a value type can describe its
// algebra by implementing whichever of these its semantics support.
// PathMap's Join/Meet/Subtract and the WriteZipper *Into methods do not
// consult these interfaces; they take explicit combining functions
// instead. Join is total, meet is total,
// subtract needs distributivity, and psubtract admits that subtraction can
// fail to stay inside the lattice at all (returning ok=false).
type Lattice[T any] interface {
	Join(other T) T
	Meet(other T) T
	Bottom() T
}

// DistributiveLattice is a Lattice whose subtraction is always defined.
type DistributiveLattice[T any] interface {
	Lattice[T]
	Subtract(other T) T
}

// PartialDistributiveLattice is a Lattice whose subtraction may be
// undefined for some operand pairs.
type PartialDistributiveLattice[T any] interface {
	Lattice[T]
	PSubtract(other T) (T, bool)
}

// MapRing describes a value type that merges with a caller-supplied
// function rather than through a Lattice implementation. Nothing in the
// root API calls it.
type MapRing[T any] interface {
	JoinWith(other T, op func(a, b T) T) T
}

// Cloner describes a value type with its own notion of "clone". Handle.MakeMut
// does not use it: uniquifying a node copies its values by plain assignment.
type Cloner[T any] interface {
	Clone() T
}

// Equaler describes a value type with its own notion of equality. The
// algebraic operations do not use it: they report an Identity result only
// when one operand is empty.
type Equaler[T any] interface {
	Equal(other T) bool
}

// defaultMerge is a merge in which the second value wins, matching ordinary
// map-overwrite semantics. Nothing in the package calls it at present.
func defaultMerge[V any](_, b V) V { return b }
