// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import (
	"github.com/cockroachdb/redact"
)

// Table holds the space usage of a single structure-of-arrays table.
type Table struct {
	// Name is the table's declared name.
	Name string
	// Columns is the number of declared columns.
	Columns int
	// Capacity is the declared maximum number of rows.
	Capacity uint64
	// Live counts the live rows and the bytes they occupy summed over all
	// columns.
	Live CountAndSize
	// Reserved counts the element slots allocated over all columns, vector
	// padding included, and the bytes of the table's arena, cache line
	// padding included.
	Reserved CountAndSize
}

// Utilization returns the fraction of the declared capacity holding live
// rows.
func (t Table) Utilization() float64 {
	if t.Capacity == 0 {
		return 0
	}
	return float64(t.Live.Count) / float64(t.Capacity)
}

// Accumulate adds the usage of other to t. The name of t is kept.
func (t *Table) Accumulate(other Table) {
	t.Columns += other.Columns
	t.Capacity += other.Capacity
	t.Live.Accumulate(other.Live)
	t.Reserved.Accumulate(other.Reserved)
}

// Total sums the usage of a set of tables.
func Total(tables []Table) Table {
	total := Table{Name: "total"}
	for i := range tables {
		total.Accumulate(tables[i])
	}
	return total
}

func (t Table) String() string {
	return redact.StringWithoutMarkers(t)
}

// SafeFormat implements redact.SafeFormatter.
func (t Table) SafeFormat(w redact.SafePrinter, verb rune) {
	w.Printf("%s: %d/%d rows (%d columns); live %s; reserved %s",
		redact.Safe(t.Name), t.Live.Count, t.Capacity, t.Columns, t.Live, t.Reserved)
}
