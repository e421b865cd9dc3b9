// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package simddb

import (
	"unsafe"

	"github.com/nutax/simd-db/internal/invariants"
)

// Field addresses one column of the tables created from a Schema[S]. Fields
// are obtained from AddColumn, AddTagged, FieldAt or Lookup and are cheap to
// copy. The zero Field is invalid.
type Field[S any, T Elem] struct {
	schema *Schema[S]
	pos    int
}

// Pos returns the column's declaration position.
func (f Field[S, T]) Pos() int {
	return f.pos
}

// Name returns the column's name.
func (f Field[S, T]) Name() string {
	return f.schema.cols[f.pos].Name
}

// VectorStep returns the number of elements a single vector operation over
// the column processes: the vector width divided by the size of T. Vectorized
// scans stride by VectorStep.
func (f Field[S, T]) VectorStep() int {
	return int(f.schema.cols[f.pos].VectorStep)
}

// Allocated returns the number of elements backing the column, which is at
// least the table capacity and a multiple of VectorStep.
func (f Field[S, T]) Allocated() int {
	return int(f.schema.cols[f.pos].Allocated)
}

func (f Field[S, T]) column(t *Table[S]) *tableColumn {
	invariants.Same(f.schema, t.schema, "schema")
	return &t.cols[f.pos]
}

// Base returns the column's base address, aligned to the table's cache line.
// The pointer is valid for Allocated() elements for as long as the table is
// reachable.
func (f Field[S, T]) Base(t *Table[S]) *T {
	return (*T)(f.column(t).base)
}

// Slice returns the column's full backing array, padding included: its length
// is Allocated(). Elements at or beyond t.Len() hold unspecified values; bulk
// operations may read and write them but must ignore the results.
func (f Field[S, T]) Slice(t *Table[S]) []T {
	c := f.column(t)
	return unsafe.Slice((*T)(c.base), c.allocated)
}

// Live returns the column's live elements, [0, t.Len()). The capacity of the
// returned slice extends over the padding.
func (f Field[S, T]) Live(t *Table[S]) []T {
	return f.Slice(t)[:t.size]
}

// At returns the element at row i. Indices are only checked against the
// allocated length, and only in invariants builds.
func (f Field[S, T]) At(t *Table[S], i int) T {
	return *f.ptr(t, i)
}

// Set sets the element at row i. Indices are only checked against the
// allocated length, and only in invariants builds.
func (f Field[S, T]) Set(t *Table[S], i int, v T) {
	*f.ptr(t, i) = v
}

// Slot returns a pointer to the column's element in the row the next Create
// will append, so that the row's values can be written before the row is
// committed:
//
//	*x.Slot(t) = 1
//	*y.Slot(t) = 2
//	row := t.Create()
//
// Slot panics if the table is full.
func (f Field[S, T]) Slot(t *Table[S]) *T {
	if t.size >= t.capacity {
		t.full()
	}
	return f.ptr(t, t.size)
}

func (f Field[S, T]) ptr(t *Table[S], i int) *T {
	c := f.column(t)
	invariants.CheckBounds(i, c.allocated)
	var zero T
	return (*T)(unsafe.Add(c.base, uintptr(i)*unsafe.Sizeof(zero)))
}
