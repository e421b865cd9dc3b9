// Copyright 2020 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build invariants || race

package invariants

import "fmt"

// CheckBounds panics if the index is not in the range [0, n). No-op in
// non-invariant builds.
func CheckBounds[T Integer](i T, n T) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("index %d out of bounds [0, %d)", i, n))
	}
}

// Same panics if a and b are not the same pointer. No-op in non-invariant
// builds.
func Same[T any](a, b *T, what string) {
	if a != b {
		panic(fmt.Sprintf("%s mismatch: %p != %p", what, a, b))
	}
}
