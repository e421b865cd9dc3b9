// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package layout

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestAllocatedCapacity(t *testing.T) {
	for _, elemSize := range []uintptr{1, 2, 4, 8} {
		for _, vectorWidth := range []uintptr{16, 32, 64} {
			for _, capacity := range []uintptr{0, 1, 7, 31, 32, 100, 1000} {
				n := AllocatedCapacity(vectorWidth, capacity, elemSize)
				require.Zerof(t, (n*elemSize)%vectorWidth,
					"elem=%d width=%d capacity=%d: %d elements not a whole number of vectors",
					elemSize, vectorWidth, capacity, n)
				require.GreaterOrEqual(t, n, capacity)
				// The padding never exceeds a single vector.
				require.Less(t, (n-capacity)*elemSize, vectorWidth)
				step := VectorStep(vectorWidth, elemSize)
				require.Equal(t, vectorWidth/elemSize, step)
				require.Zero(t, n%step)
			}
		}
	}
}

func TestAllocatedCapacityExamples(t *testing.T) {
	require.Equal(t, uintptr(8), AllocatedCapacity(32, 5, 4))
	require.Equal(t, uintptr(0), AllocatedCapacity(32, 0, 4))
	require.Equal(t, uintptr(32), AllocatedCapacity(32, 32, 4))
	require.Equal(t, uintptr(40), AllocatedCapacity(32, 33, 4))
	// A vector width that is not a multiple of the element size requires the
	// second rounding step: 16 bytes round up to 24, which is not a whole
	// number of 16-byte elements.
	require.Equal(t, uintptr(2), AllocatedCapacity(24, 1, 16))
}

func TestAllocatedCapacityProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("padded byte length is a whole number of vectors and elements", prop.ForAll(
		func(elemShift, widthShift uint, capacity int) bool {
			elemSize := uintptr(1) << elemShift
			vectorWidth := uintptr(1) << widthShift
			n := AllocatedCapacity(vectorWidth, uintptr(capacity), elemSize)
			bytes := RoundUp(RoundUp(uintptr(capacity)*elemSize, vectorWidth), elemSize)
			return n >= uintptr(capacity) &&
				(n*elemSize)%vectorWidth == 0 &&
				bytes%elemSize == 0 &&
				n*elemSize == bytes
		},
		gen.UIntRange(0, 3),
		gen.UIntRange(3, 7),
		gen.IntRange(0, 1<<16),
	))

	properties.TestingRun(t)
}

func TestPlanAlignment(t *testing.T) {
	for _, cacheLine := range []uintptr{32, 64, 128} {
		for _, capacity := range []uintptr{0, 1, 7, 31, 32, 100, 1000} {
			p := MakePlan(32, cacheLine, capacity)
			for i, elemSize := range []uintptr{4, 1, 8, 2, 4} {
				p.Add(fmt.Sprintf("c%d", i), elemSize)
			}
			var prevEnd uintptr
			for _, c := range p.Columns {
				require.Zero(t, c.Offset%cacheLine)
				require.GreaterOrEqual(t, c.Offset, prevEnd)
				prevEnd = c.Offset + c.Bytes()
			}
			require.LessOrEqual(t, prevEnd, p.Size())
			require.Zero(t, p.Size()%cacheLine)
			require.GreaterOrEqual(t, p.Size(), cacheLine)
		}
	}
}

func TestPlanOverflow(t *testing.T) {
	// capacity*8 wraps around for every uintptr width.
	huge := ^uintptr(0) / 4
	p := MakePlan(16, 64, huge)
	require.Panics(t, func() { p.Add("u64", 8) })
	// A single byte per row still fits, an arena of two such columns does not.
	p = MakePlan(16, 64, ^uintptr(0)/2)
	p.Add("a", 1)
	require.Panics(t, func() { p.Add("b", 1) })

	p = MakePlan(16, 64, 10)
	require.Panics(t, func() { p.Add("empty", 0) })
	require.Empty(t, p.Columns)
}

func TestPlan(t *testing.T) {
	var p Plan
	datadriven.RunTest(t, "testdata/plan", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "plan":
			var capacity, vectorWidth, cacheLine int
			td.ScanArgs(t, "capacity", &capacity)
			td.ScanArgs(t, "vector-width", &vectorWidth)
			td.ScanArgs(t, "cache-line", &cacheLine)
			p = MakePlan(uintptr(vectorWidth), uintptr(cacheLine), uintptr(capacity))
			for _, line := range strings.Split(td.Input, "\n") {
				fields := strings.Fields(line)
				if len(fields) == 0 {
					continue
				}
				if len(fields) != 2 {
					td.Fatalf(t, "expected <name> <elem-size>, got %q", line)
				}
				size, err := strconv.Atoi(fields[1])
				if err != nil {
					td.Fatalf(t, "%v", err)
				}
				p.Add(fields[0], uintptr(size))
			}
			var buf bytes.Buffer
			p.Describe(&buf)
			return buf.String()
		case "padding":
			return fmt.Sprintf("%d\n", p.PaddingBytes())
		default:
			td.Fatalf(t, "unknown command %q", td.Cmd)
			return ""
		}
	})
}
