// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import (
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/redact"
)

// CountAndSize pairs a number of items (rows or element slots) with the bytes
// they occupy.
type CountAndSize struct {
	Count uint64
	Bytes uint64
}

// Accumulate adds other to cs.
func (cs *CountAndSize) Accumulate(other CountAndSize) {
	cs.Count += other.Count
	cs.Bytes += other.Bytes
}

func (cs CountAndSize) String() string {
	return redact.StringWithoutMarkers(cs)
}

// SafeFormat implements redact.SafeFormatter.
func (cs CountAndSize) SafeFormat(w redact.SafePrinter, verb rune) {
	w.Printf("%s (%s)", crhumanize.Count(cs.Count, crhumanize.Compact),
		crhumanize.Bytes(cs.Bytes, crhumanize.Compact, crhumanize.OmitI))
}
