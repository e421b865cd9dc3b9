// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package aligned

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ByteSlice allocates a new zeroed byte slice of length n, ensuring the
// address of the beginning of the slice is a multiple of align. align must be
// a power of two. Go only guarantees word alignment for a []uint64 backing
// array, so the buffer is over-allocated by align bytes and the returned slice
// starts at the first aligned address within it. The slice keeps the whole
// backing array reachable.
//
// The capacity of the returned slice extends to the end of the backing array
// so that a zero-length slice still carries a valid, aligned base address.
func ByteSlice(n, align int) []byte {
	if n < 0 {
		panic(errors.AssertionFailedf("negative allocation size %d", n))
	}
	if align <= 0 || align&(align-1) != 0 {
		panic(errors.AssertionFailedf("alignment %d is not a power of two", align))
	}
	words := make([]uint64, (n+align+7)/8)
	base := unsafe.Pointer(unsafe.SliceData(words))
	shift := (align - int(uintptr(base)&uintptr(align-1))) & (align - 1)
	avail := len(words)*8 - shift
	b := unsafe.Slice((*byte)(unsafe.Add(base, shift)), avail)[:n]

	// Verify alignment.
	if ptr := uintptr(unsafe.Pointer(unsafe.SliceData(b))); ptr%uintptr(align) != 0 {
		panic(errors.AssertionFailedf("allocated slice not %d-aligned: pointer %p", align, unsafe.SliceData(b)))
	}
	return b
}

// Base returns the address of the first byte of b, which remains valid when
// len(b) == 0 as long as cap(b) > 0.
func Base(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}

// IsAligned returns true if p is a multiple of align.
func IsAligned(p unsafe.Pointer, align int) bool {
	return uintptr(p)%uintptr(align) == 0
}
