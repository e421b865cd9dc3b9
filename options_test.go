// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package simddb

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := (*Options)(nil).EnsureDefaults()
	require.Equal(t, "table", o.Name)
	require.Contains(t, []int{16, 32, 64}, o.VectorWidth)
	require.True(t, isPowerOfTwo(o.CacheLine))
	require.GreaterOrEqual(t, o.CacheLine, 32)
	require.NoError(t, o.Validate())
	require.Nil(t, o.Logger)

	o2 := &Options{Name: "x", VectorWidth: 32, CacheLine: 128}
	o2.EnsureDefaults()
	require.Equal(t, 32, o2.VectorWidth)
	require.Equal(t, 128, o2.CacheLine)
}

func TestOptionsValidate(t *testing.T) {
	o := &Options{Name: "has space", Capacity: -1, VectorWidth: 48, CacheLine: 1 << 13}
	err := o.Validate()
	require.Error(t, err)
	require.Equal(t, `Capacity (-1) must be >= 0
VectorWidth (48) must be a power of two <= 1024
CacheLine (8192) must be a power of two <= 4096
Name ("has space") must be non-empty and contain no whitespace
`, err.Error())

	// A capacity whose padded columns would not fit in an int is rejected
	// rather than wrapping around to a tiny arena.
	for _, capacity := range []int{math.MaxInt, math.MaxInt / 8, maxCapacity + 1} {
		o := &Options{Name: "huge", Capacity: capacity, VectorWidth: 16, CacheLine: 64}
		require.EqualError(t, o.Validate(),
			fmt.Sprintf("Capacity (%d) must be <= %d\n", capacity, maxCapacity))
	}
	o = &Options{Name: "largest", Capacity: maxCapacity, VectorWidth: maxVectorWidth, CacheLine: maxCacheLine}
	require.NoError(t, o.Validate())
}

func TestOptionsParse(t *testing.T) {
	o := &Options{Name: "doors", Capacity: 100, VectorWidth: 32, CacheLine: 64}
	require.Equal(t, `[Table]
  name=doors
  capacity=100
  vector_width=32
  cache_line=64
`, o.String())

	var parsed Options
	require.NoError(t, parsed.Parse(o.String()))
	require.Equal(t, *o, parsed)

	var partial Options
	require.NoError(t, partial.Parse("# comment\n[Table]\n  capacity = 7\n; another\n"))
	require.Equal(t, Options{Capacity: 7}, partial)

	testCases := []struct {
		input string
		err   string
	}{
		{"[Options]\n", `simddb: unknown section: "Options"`},
		{"capacity=1\n", `simddb: option outside of a section: "capacity=1"`},
		{"[Table]\ncapacity\n", `simddb: invalid key=value syntax: "capacity"`},
		{"[Table]\ncolor=blue\n", `simddb: unknown option: Table.color`},
		{"[Table]\ncapacity=lots\n", `simddb: parsing Table.capacity: strconv.Atoi: parsing "lots": invalid syntax`},
	}
	for _, tc := range testCases {
		var o Options
		require.EqualError(t, o.Parse(tc.input), tc.err, tc.input)
	}
}
