// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package invariants

import "github.com/nutax/simd-db/internal/buildtags"

// Enabled is true if we were built with the "invariants" or "race" build tags.
//
// Enabled should be used to gate invariant checks that may be expensive. It
// should not be used to unconditionally alter a code path significantly (e.g.
// wrapping a table in another type that performs additional checks); a
// release build must run the same code that tests exercise.
const Enabled = buildtags.Invariants || buildtags.Race

// RaceEnabled is true if we were built with the "race" build tag.
const RaceEnabled = buildtags.Race

// Integer is a constraint that permits any integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}
