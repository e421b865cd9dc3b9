// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package simddb provides fixed-capacity structure-of-arrays tables for small,
// latency-critical datasets that are scanned with vectorized code.
//
// Each column of a table is a cache line aligned array whose length is padded
// to a whole number of vectors, so a scan can process full vectors up to the
// last live row without a scalar tail. Rows are appended with Create and
// removed with Destroy, which moves the last row into the hole; row order is
// therefore not stable. Tables never grow and are not safe for concurrent
// use.
package simddb

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/nutax/simd-db/metrics"
)

// Table is a fixed-capacity structure-of-arrays table. Rows occupy the index
// range [0, Len()) in every column in lockstep. Columns are accessed through
// the Fields declared on the table's schema.
type Table[S any] struct {
	schema *Schema[S]
	// arena backs every column. Columns are carved out of it at cache line
	// aligned offsets.
	arena    []byte
	cols     []tableColumn
	size     int
	capacity int
}

type tableColumn struct {
	base      unsafe.Pointer
	elemSize  uintptr
	allocated int
}

// move copies the element at index src over the element at index dst.
func (c *tableColumn) move(dst, src int) {
	switch c.elemSize {
	case 1:
		*(*uint8)(unsafe.Add(c.base, dst)) = *(*uint8)(unsafe.Add(c.base, src))
	case 2:
		*(*uint16)(unsafe.Add(c.base, dst<<1)) = *(*uint16)(unsafe.Add(c.base, src<<1))
	case 4:
		*(*uint32)(unsafe.Add(c.base, dst<<2)) = *(*uint32)(unsafe.Add(c.base, src<<2))
	case 8:
		*(*uint64)(unsafe.Add(c.base, dst<<3)) = *(*uint64)(unsafe.Add(c.base, src<<3))
	default:
		n := int(c.elemSize)
		copy(unsafe.Slice((*byte)(unsafe.Add(c.base, dst*n)), n),
			unsafe.Slice((*byte)(unsafe.Add(c.base, src*n)), n))
	}
}

// Name returns the table's name.
func (t *Table[S]) Name() string {
	return t.schema.opts.Name
}

// Schema returns the schema the table was created from.
func (t *Table[S]) Schema() *Schema[S] {
	return t.schema
}

// Len returns the number of live rows.
func (t *Table[S]) Len() int {
	return t.size
}

// Cap returns the declared maximum number of rows.
func (t *Table[S]) Cap() int {
	return t.capacity
}

// Create appends a new row at index Len() and returns its index. The contents
// of the new row are whatever the storage held before: either values written
// through Field.Slot since the last Create, or stale data from a destroyed
// row. Create panics if the table is full.
func (t *Table[S]) Create() int {
	if t.size >= t.capacity {
		t.full()
	}
	t.size++
	return t.size - 1
}

// Destroy removes the row at index i by moving the last live row into it and
// shrinking the table by one. Destroying the last row only shrinks the
// table. Destroy panics if i is not a live row.
func (t *Table[S]) Destroy(i int) {
	if uint(i) >= uint(t.size) {
		panic(errors.AssertionFailedf("simddb: destroy of row %d in table %q with %d rows",
			i, t.schema.opts.Name, t.size))
	}
	t.size--
	last := t.size
	if i == last {
		return
	}
	for j := range t.cols {
		t.cols[j].move(i, last)
	}
}

// Reset removes every row. Column storage is left as is.
func (t *Table[S]) Reset() {
	t.size = 0
}

func (t *Table[S]) full() {
	panic(errors.AssertionFailedf("simddb: table %q is full (capacity %d)",
		t.schema.opts.Name, t.capacity))
}

// Metrics returns the table's space usage.
func (t *Table[S]) Metrics() metrics.Table {
	m := metrics.Table{
		Name:     t.schema.opts.Name,
		Columns:  len(t.cols),
		Capacity: uint64(t.capacity),
	}
	m.Live.Count = uint64(t.size)
	m.Reserved.Bytes = uint64(len(t.arena))
	for i := range t.cols {
		m.Live.Bytes += uint64(t.size) * uint64(t.cols[i].elemSize)
		m.Reserved.Count += uint64(t.cols[i].allocated)
	}
	return m
}

func (t *Table[S]) String() string {
	return t.Metrics().String()
}

// taggedColumn implements AnyTable.
func (t *Table[S]) taggedColumn(tag any) (unsafe.Pointer, int, bool) {
	pos, ok := t.schema.tags.Get(tag)
	if !ok {
		return nil, 0, false
	}
	return t.cols[pos].base, t.cols[pos].allocated, true
}
