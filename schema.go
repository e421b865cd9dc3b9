// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package simddb

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
	"github.com/nutax/simd-db/internal/aligned"
	"github.com/nutax/simd-db/internal/layout"
	"golang.org/x/exp/constraints"
)

// Elem is the constraint satisfied by column element types: fixed-size,
// pointer-free numeric types that can be copied bit for bit.
type Elem interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// A Schema declares the ordered list of columns of a table together with the
// table's shape. The marker type S binds the schema's fields to the tables it
// creates: a Field[S, T] can only be used with a *Table[S], so addressing a
// column of another kind of table is rejected by the compiler.
//
// Schemas are typically declared once, at package initialization:
//
//	type doors struct{}
//
//	var (
//		doorSchema = simddb.NewSchema[doors](simddb.Options{Name: "doors", Capacity: 100})
//		doorX      = simddb.AddTagged(doorSchema, PositionX)
//		doorOpen   = simddb.AddColumn[doors, uint32](doorSchema, "open")
//	)
//
// A schema is frozen once its first table is created; adding columns after
// that point panics.
type Schema[S any] struct {
	opts   Options
	plan   layout.Plan
	cols   []columnDesc
	tags   swiss.Map[any, int]
	frozen bool
}

type columnDesc struct {
	layout.Column
	typeName string
	// tag is the *Tag[T] the column was declared with, or nil for a
	// positional column.
	tag any
	// zero holds a T(0), used to verify the element type of positional
	// lookups.
	zero any
}

// NewSchema returns an empty schema for tables of the given shape. It panics
// if the options are invalid: a schema is a declaration, and an invalid
// declaration is a programming error.
func NewSchema[S any](opts Options) *Schema[S] {
	opts.EnsureDefaults()
	if err := opts.Validate(); err != nil {
		panic(errors.Wrapf(err, "simddb: invalid options for table %q", opts.Name))
	}
	s := &Schema[S]{
		opts: opts,
		plan: layout.MakePlan(uintptr(opts.VectorWidth), uintptr(opts.CacheLine), uintptr(opts.Capacity)),
	}
	s.tags.Init(0)
	return s
}

// AddColumn declares a new positional column named name holding elements of
// type T. The column's position is its declaration order.
func AddColumn[S any, T Elem](s *Schema[S], name string) Field[S, T] {
	return addColumn[S, T](s, name, nil)
}

// AddTagged declares a new column of the kind identified by tag. The same tag
// may be added to any number of schemas; within one schema it may be added
// once. The column is named after the tag.
func AddTagged[S any, T Elem](s *Schema[S], tag *Tag[T]) Field[S, T] {
	if tag == nil {
		panic(errors.AssertionFailedf("simddb: nil tag added to schema %q", s.opts.Name))
	}
	if _, ok := s.tags.Get(tag); ok {
		panic(errors.AssertionFailedf("simddb: tag %s added twice to schema %q", tag, s.opts.Name))
	}
	return addColumn[S, T](s, tag.name, tag)
}

func addColumn[S any, T Elem](s *Schema[S], name string, tag any) Field[S, T] {
	var zero T
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	vectorWidth := uintptr(s.opts.VectorWidth)
	switch {
	case s.frozen:
		panic(errors.AssertionFailedf("simddb: column %q added to schema %q after a table was created", name, s.opts.Name))
	case name == "":
		panic(errors.AssertionFailedf("simddb: unnamed column added to schema %q", s.opts.Name))
	case size > vectorWidth || vectorWidth%size != 0:
		panic(errors.AssertionFailedf("simddb: column %q of type %T (%d bytes) does not divide the %d-byte vector width of %q",
			name, zero, size, vectorWidth, s.opts.Name))
	case uintptr(s.opts.CacheLine)%align != 0:
		panic(errors.AssertionFailedf("simddb: column %q of type %T requires %d-byte alignment, more than the %d-byte cache line of %q",
			name, zero, align, s.opts.CacheLine, s.opts.Name))
	}
	for i := range s.cols {
		if s.cols[i].Name == name {
			panic(errors.AssertionFailedf("simddb: duplicate column %q in schema %q", name, s.opts.Name))
		}
	}

	pos := len(s.cols)
	s.cols = append(s.cols, columnDesc{
		Column:   s.plan.Add(name, size),
		typeName: fmt.Sprintf("%T", zero),
		tag:      tag,
		zero:     zero,
	})
	if tag != nil {
		s.tags.Put(tag, pos)
	}
	return Field[S, T]{schema: s, pos: pos}
}

// FieldAt returns the field at position pos, declared with element type T.
// It is the positional counterpart of Lookup.
func FieldAt[S any, T Elem](s *Schema[S], pos int) (Field[S, T], error) {
	if pos < 0 || pos >= len(s.cols) {
		return Field[S, T]{}, errors.Newf("simddb: schema %q has no column at position %d (%d columns)",
			s.opts.Name, pos, len(s.cols))
	}
	if _, ok := s.cols[pos].zero.(T); !ok {
		var zero T
		return Field[S, T]{}, errors.Newf("simddb: column %q of schema %q holds %s, not %T",
			s.cols[pos].Name, s.opts.Name, s.cols[pos].typeName, zero)
	}
	return Field[S, T]{schema: s, pos: pos}, nil
}

// Lookup returns the field declared with the given tag, if any. It is the
// nominal counterpart of FieldAt and resolves to the same column.
func Lookup[S any, T Elem](s *Schema[S], tag *Tag[T]) (Field[S, T], bool) {
	pos, ok := s.tags.Get(tag)
	if !ok {
		return Field[S, T]{}, false
	}
	return Field[S, T]{schema: s, pos: pos}, true
}

// Name returns the name of the tables created from the schema.
func (s *Schema[S]) Name() string {
	return s.opts.Name
}

// Options returns the options the schema was declared with, defaults
// applied.
func (s *Schema[S]) Options() Options {
	return s.opts
}

// NumColumns returns the number of declared columns.
func (s *Schema[S]) NumColumns() int {
	return len(s.cols)
}

// ArenaSize returns the number of bytes reserved by each table created from
// the schema.
func (s *Schema[S]) ArenaSize() int {
	return int(s.plan.Size())
}

// ColumnInfo describes the layout of one declared column.
type ColumnInfo struct {
	// Name is the column's declared name (the tag name for tagged columns).
	Name string
	// Type is the Go type of the column's elements.
	Type string
	// Tagged is true if the column was declared with a tag.
	Tagged bool
	// ElemSize is the size in bytes of one element.
	ElemSize int
	// Allocated is the number of elements backing the column.
	Allocated int
	// VectorStep is the number of elements per vector.
	VectorStep int
	// Offset is the byte offset of the column within the table's arena.
	Offset int
}

// Columns returns the layout of the declared columns, in declaration order.
func (s *Schema[S]) Columns() []ColumnInfo {
	infos := make([]ColumnInfo, len(s.cols))
	for i := range s.cols {
		c := &s.cols[i]
		infos[i] = ColumnInfo{
			Name:       c.Name,
			Type:       c.typeName,
			Tagged:     c.tag != nil,
			ElemSize:   int(c.ElemSize),
			Allocated:  int(c.Allocated),
			VectorStep: int(c.VectorStep),
			Offset:     int(c.Offset),
		}
	}
	return infos
}

// NewTable allocates a new, empty table. All of the table's storage is
// allocated here, in a single cache line aligned arena; no operation on the
// table allocates afterwards. The schema is frozen.
func (s *Schema[S]) NewTable() *Table[S] {
	s.frozen = true
	arena := aligned.ByteSlice(int(s.plan.Size()), s.opts.CacheLine)
	base := aligned.Base(arena)
	t := &Table[S]{
		schema:   s,
		arena:    arena,
		cols:     make([]tableColumn, len(s.cols)),
		capacity: s.opts.Capacity,
	}
	for i := range s.cols {
		t.cols[i] = tableColumn{
			base:      unsafe.Add(base, s.cols[i].Offset),
			elemSize:  s.cols[i].ElemSize,
			allocated: int(s.cols[i].Allocated),
		}
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Infof("simddb: created table %s", t.Metrics())
	}
	return t
}
