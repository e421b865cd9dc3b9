// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package simddb

import (
	"iter"
	"unsafe"

	"github.com/nutax/simd-db/metrics"
)

// AnyTable is implemented by every *Table[S], whatever its schema. It is the
// element type of a View.
type AnyTable interface {
	Name() string
	Len() int
	Cap() int
	Metrics() metrics.Table

	taggedColumn(tag any) (base unsafe.Pointer, allocated int, ok bool)
}

var _ AnyTable = (*Table[struct{}])(nil)

// View is a named, ordered group of tables. A view owns nothing: it must not
// outlive the tables it references, and it adds no behavior beyond addressing
// them uniformly, by position and by tag.
type View struct {
	name   string
	tables []AnyTable
}

// NewView returns a view over the given tables.
func NewView(name string, tables ...AnyTable) *View {
	return &View{name: name, tables: append([]AnyTable(nil), tables...)}
}

// Name returns the view's name.
func (v *View) Name() string {
	return v.name
}

// Len returns the number of tables in the view.
func (v *View) Len() int {
	return len(v.tables)
}

// Table returns the i-th table of the view.
func (v *View) Table(i int) AnyTable {
	return v.tables[i]
}

// All returns an iterator over the view's tables, in order.
func (v *View) All() iter.Seq2[int, AnyTable] {
	return func(yield func(int, AnyTable) bool) {
		for i, t := range v.tables {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Rows returns the number of live rows summed over the view's tables.
func (v *View) Rows() int {
	var n int
	for _, t := range v.tables {
		n += t.Len()
	}
	return n
}

// Metrics returns the space usage of each of the view's tables.
func (v *View) Metrics() []metrics.Table {
	m := make([]metrics.Table, len(v.tables))
	for i, t := range v.tables {
		m[i] = t.Metrics()
	}
	return m
}

// ViewColumn returns the live elements of the column declared with tag in the
// i-th table of the view. The capacity of the returned slice extends over the
// column's padding. ok is false if the table has no such column.
func ViewColumn[T Elem](v *View, i int, tag *Tag[T]) (_ []T, ok bool) {
	t := v.tables[i]
	base, allocated, ok := t.taggedColumn(tag)
	if !ok {
		return nil, false
	}
	return unsafe.Slice((*T)(base), allocated)[:t.Len()], true
}
