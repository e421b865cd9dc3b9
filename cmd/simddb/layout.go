// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/errors"
	simddb "github.com/nutax/simd-db"
	"github.com/nutax/simd-db/internal/layout"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var layoutConfig struct {
	options     string
	capacity    int
	vectorWidth int
	cacheLine   int
}

var layoutCmd = &cobra.Command{
	Use:   "layout [<name>:]<type>...",
	Short: "print the column layout of a table",
	Long: `
Print the placement of every column of a table with the given columns. Each
argument declares one column as <name>:<type>, or just <type> in which case
the type doubles as the name. Types are the Go numeric type names: int8,
uint8, int16, uint16, int32, uint32, int64, uint64, float32, float64,
complex64 and complex128.

The table shape is taken from the flags. An options file in the format
produced by simddb.Options.String may be given with --options; values it sets
override the flags.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringVar(
		&layoutConfig.options, "options", "", "path to an options file")
	layoutCmd.Flags().IntVar(
		&layoutConfig.capacity, "capacity", 100, "maximum number of rows")
	layoutCmd.Flags().IntVar(
		&layoutConfig.vectorWidth, "vector-width", 0,
		"vector width in bytes (0 selects the running CPU's widest vector)")
	layoutCmd.Flags().IntVar(
		&layoutConfig.cacheLine, "cache-line", 0,
		"column alignment in bytes (0 selects the running CPU's cache line)")
}

var elemSizes = map[string]uintptr{
	"int8":       1,
	"uint8":      1,
	"int16":      2,
	"uint16":     2,
	"int32":      4,
	"uint32":     4,
	"float32":    4,
	"int64":      8,
	"uint64":     8,
	"float64":    8,
	"complex64":  8,
	"complex128": 16,
}

type layoutColumn struct {
	layout.Column
	typ string
}

func runLayout(cmd *cobra.Command, args []string) error {
	opts := &simddb.Options{
		Capacity:    layoutConfig.capacity,
		VectorWidth: layoutConfig.vectorWidth,
		CacheLine:   layoutConfig.cacheLine,
	}
	if layoutConfig.options != "" {
		data, err := os.ReadFile(layoutConfig.options)
		if err != nil {
			return err
		}
		if err := opts.Parse(string(data)); err != nil {
			return err
		}
	}
	opts.EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}

	plan, cols, err := planLayout(opts, args)
	if err != nil {
		return err
	}
	writeLayout(cmd.OutOrStdout(), opts, &plan, cols)
	return nil
}

// planLayout places the columns declared by args.
func planLayout(opts *simddb.Options, args []string) (layout.Plan, []layoutColumn, error) {
	plan := layout.MakePlan(uintptr(opts.VectorWidth), uintptr(opts.CacheLine), uintptr(opts.Capacity))
	cols := make([]layoutColumn, 0, len(args))
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		name, typ, ok := strings.Cut(arg, ":")
		if !ok {
			typ = name
		}
		size, ok := elemSizes[typ]
		if !ok {
			return layout.Plan{}, nil, errors.Errorf("unknown element type %q", typ)
		}
		if name == "" {
			return layout.Plan{}, nil, errors.Errorf("unnamed %s column", typ)
		}
		if seen[name] {
			return layout.Plan{}, nil, errors.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		if uintptr(opts.VectorWidth)%size != 0 {
			return layout.Plan{}, nil, errors.Errorf(
				"%s column %q: element size %d does not divide the vector width %d",
				typ, name, size, opts.VectorWidth)
		}
		cols = append(cols, layoutColumn{Column: plan.Add(name, size), typ: typ})
	}
	return plan, cols, nil
}

func writeLayout(w io.Writer, opts *simddb.Options, plan *layout.Plan, cols []layoutColumn) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Column", "Type", "Elem", "Allocated", "Step", "Offset", "Bytes", "Padding"})
	for _, c := range cols {
		tbl.Append([]string{
			c.Name,
			c.typ,
			fmt.Sprint(c.ElemSize),
			fmt.Sprint(c.Allocated),
			fmt.Sprint(c.VectorStep),
			fmt.Sprint(c.Offset),
			fmt.Sprint(c.Bytes()),
			fmt.Sprint(c.PaddingBytes()),
		})
	}
	tbl.Render()
	fmt.Fprintf(w, "capacity %d, vector width %d, cache line %d: arena %s, padding %s\n",
		opts.Capacity, opts.VectorWidth, opts.CacheLine,
		crhumanize.Bytes(uint64(plan.Size()), crhumanize.Compact, crhumanize.OmitI),
		crhumanize.Bytes(uint64(plan.PaddingBytes()), crhumanize.Compact, crhumanize.OmitI))
}
