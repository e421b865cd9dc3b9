// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package layout computes the padded, cache-line aligned placement of the
// columns of a fixed-capacity structure-of-arrays table.
//
// A column declared with capacity C and element size E over a vector width W
// allocates
//
//	RoundUp(RoundUp(C*E, W), E) / E
//
// elements. The byte length of the column is then a multiple of W, so a full
// vector can be loaded at every multiple of W/E below the allocated bound,
// and it is a whole number of elements. Columns are laid out back to back in
// a single arena, each starting on a cache line boundary.
package layout

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// RoundUp rounds n up to the nearest multiple of m. m must be non-zero.
func RoundUp(n, m uintptr) uintptr {
	return ((n + m - 1) / m) * m
}

// AllocatedCapacity returns the number of elements of size elemSize to
// allocate for a column holding capacity elements, such that the column's byte
// length is a multiple of vectorWidth and of elemSize.
func AllocatedCapacity(vectorWidth, capacity, elemSize uintptr) uintptr {
	return RoundUp(RoundUp(capacity*elemSize, vectorWidth), elemSize) / elemSize
}

// VectorStep returns the number of elements of size elemSize processed by a
// single vector operation of vectorWidth bytes.
func VectorStep(vectorWidth, elemSize uintptr) uintptr {
	return vectorWidth / elemSize
}

// Column describes the placement of a single column within a table's arena.
type Column struct {
	// Name is the declared name of the column.
	Name string
	// ElemSize is the size in bytes of a single element.
	ElemSize uintptr
	// Capacity is the declared number of rows.
	Capacity uintptr
	// Allocated is the number of elements backing the column. Allocated >=
	// Capacity; elements in [Capacity, Allocated) are padding.
	Allocated uintptr
	// VectorStep is the number of elements per vector.
	VectorStep uintptr
	// Offset is the byte offset of the column's first element within the
	// arena. It is always a multiple of the cache line size.
	Offset uintptr
}

// Bytes returns the byte length of the column.
func (c Column) Bytes() uintptr {
	return c.Allocated * c.ElemSize
}

// PaddingBytes returns the bytes allocated beyond the declared capacity.
func (c Column) PaddingBytes() uintptr {
	return (c.Allocated - c.Capacity) * c.ElemSize
}

// Plan accumulates the column placements of a table.
type Plan struct {
	VectorWidth uintptr
	CacheLine   uintptr
	Capacity    uintptr
	Columns     []Column
	// end is the byte offset past the last column, rounded to a cache line.
	end uintptr
}

// MakePlan returns an empty plan for a table with the given shape.
func MakePlan(vectorWidth, cacheLine, capacity uintptr) Plan {
	return Plan{VectorWidth: vectorWidth, CacheLine: cacheLine, Capacity: capacity}
}

// Add places a new column with the given element size after the existing
// columns and returns its placement. Add panics if the column's padded byte
// length or the arena size would overflow a uintptr.
func (p *Plan) Add(name string, elemSize uintptr) Column {
	const maxUintptr = ^uintptr(0)
	if elemSize == 0 || p.Capacity > (maxUintptr-2*p.VectorWidth-p.CacheLine)/elemSize {
		panic(errors.AssertionFailedf("layout: column %q of %d %d-byte elements overflows the address space",
			name, p.Capacity, elemSize))
	}
	c := Column{
		Name:       name,
		ElemSize:   elemSize,
		Capacity:   p.Capacity,
		Allocated:  AllocatedCapacity(p.VectorWidth, p.Capacity, elemSize),
		VectorStep: VectorStep(p.VectorWidth, elemSize),
		Offset:     p.end,
	}
	n := RoundUp(c.Bytes(), p.CacheLine)
	if p.end > maxUintptr-n {
		panic(errors.AssertionFailedf("layout: column %q at offset %d overflows the address space",
			name, p.end))
	}
	p.end += n
	p.Columns = append(p.Columns, c)
	return c
}

// Size returns the number of bytes of arena required by the plan. The arena
// is never empty: a table with zero capacity still reserves one cache line
// so that every column has a valid base address.
func (p *Plan) Size() uintptr {
	return max(p.end, p.CacheLine)
}

// PaddingBytes returns the total number of bytes in the arena that do not
// back a declared row: per-column vector padding plus the gaps between
// columns introduced by cache line alignment.
func (p *Plan) PaddingBytes() uintptr {
	var used uintptr
	for i := range p.Columns {
		used += p.Columns[i].Capacity * p.Columns[i].ElemSize
	}
	return p.Size() - used
}

// Describe writes a human-readable rendition of the plan to w.
func (p *Plan) Describe(w io.Writer) {
	fmt.Fprintf(w, "capacity=%d vector-width=%d cache-line=%d size=%d\n",
		p.Capacity, p.VectorWidth, p.CacheLine, p.Size())
	for _, c := range p.Columns {
		fmt.Fprintf(w, "%s: elem=%d allocated=%d step=%d offset=%d bytes=%d padding=%d\n",
			c.Name, c.ElemSize, c.Allocated, c.VectorStep, c.Offset, c.Bytes(), c.PaddingBytes())
	}
}
