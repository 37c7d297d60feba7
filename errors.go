// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pathmap

import "errors"

// ErrExclusivity is returned by ZipperHead when a requested write path
// overlaps a path already checked out by another live write zipper.
var ErrExclusivity = errors.New("pathmap: path overlaps an already checked-out write zipper")

// ErrMisuse names operations that are well-typed but meaningless in
// context. No function in this package returns it at present: ascending
// past a zipper's root, for example, is reported by a false result.
var ErrMisuse = errors.New("pathmap: misuse of zipper contract")
