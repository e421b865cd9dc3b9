// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package simddb

import "fmt"

// Tag identifies a kind of column independently of any schema, e.g.
// "position-x". A tag may be added to any number of schemas with AddTagged,
// which lets a View address the same kind of column across unrelated tables.
// Tags are compared by identity, not by name.
type Tag[T Elem] struct {
	name string
}

// NewTag declares a new column kind holding elements of type T.
func NewTag[T Elem](name string) *Tag[T] {
	return &Tag[T]{name: name}
}

// Name returns the tag's name.
func (t *Tag[T]) Name() string {
	return t.name
}

func (t *Tag[T]) String() string {
	var zero T
	return fmt.Sprintf("%s(%T)", t.name, zero)
}
