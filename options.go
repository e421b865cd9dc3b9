// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package simddb

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/nutax/simd-db/internal/base"
	"golang.org/x/sys/cpu"
)

// Logger defines an interface for writing log messages.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger = base.DefaultLogger

const (
	// maxVectorWidth bounds the vector width to the widest SIMD register in
	// common use (AVX-512) times a generous factor for future extensions.
	maxVectorWidth = 1 << 10
	// maxCacheLine bounds the cache line size to something plausible.
	maxCacheLine = 1 << 12
	// maxElemSize is the size of the widest column element, a complex128.
	maxElemSize = 16
	// maxCapacity bounds the capacity so that the byte length of any column,
	// padded to a vector and rounded to a cache line, fits in an int.
	maxCapacity = (math.MaxInt - 2*maxVectorWidth - maxCacheLine) / maxElemSize
)

// DefaultVectorWidth returns the width in bytes of the widest SIMD register
// supported by the running CPU: 64 with AVX-512, 32 with AVX/AVX2 and 16
// otherwise (SSE2, NEON, or the scalar fallback, for which 16 bytes is a
// reasonable unrolling factor).
func DefaultVectorWidth() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 64
	case cpu.X86.HasAVX2, cpu.X86.HasAVX:
		return 32
	default:
		return 16
	}
}

// DefaultCacheLine returns the cache line size of the target architecture.
func DefaultCacheLine() int {
	return int(unsafe.Sizeof(cpu.CacheLinePad{}))
}

// Options holds the shape of a table: its row capacity, the vector width its
// columns are padded to and the alignment of each column. Options are fixed
// for the lifetime of the schema and of every table created from it.
type Options struct {
	// Name identifies the table in log messages, metrics and panics.
	Name string

	// Capacity is the maximum number of rows. Tables never grow beyond it.
	Capacity int

	// VectorWidth is the width in bytes of one vector operation. Every column
	// is padded so that its byte length is a multiple of VectorWidth. Must be
	// a power of two. Defaults to DefaultVectorWidth().
	VectorWidth int

	// CacheLine is the alignment in bytes of the base address of every
	// column. Must be a power of two. Defaults to DefaultCacheLine().
	CacheLine int

	// Logger is used to log the layout of every table created from a schema.
	// If nil, nothing is logged.
	Logger Logger
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.Name == "" {
		o.Name = "table"
	}
	if o.VectorWidth <= 0 {
		o.VectorWidth = DefaultVectorWidth()
	}
	if o.CacheLine <= 0 {
		o.CacheLine = DefaultCacheLine()
	}
	return o
}

// Validate verifies that the options are mutually consistent. It presumes
// EnsureDefaults has been called.
func (o *Options) Validate() error {
	var buf strings.Builder
	if o.Capacity < 0 {
		fmt.Fprintf(&buf, "Capacity (%d) must be >= 0\n", o.Capacity)
	} else if o.Capacity > maxCapacity {
		fmt.Fprintf(&buf, "Capacity (%d) must be <= %d\n", o.Capacity, maxCapacity)
	}
	if !isPowerOfTwo(o.VectorWidth) || o.VectorWidth > maxVectorWidth {
		fmt.Fprintf(&buf, "VectorWidth (%d) must be a power of two <= %d\n", o.VectorWidth, maxVectorWidth)
	}
	if !isPowerOfTwo(o.CacheLine) || o.CacheLine > maxCacheLine {
		fmt.Fprintf(&buf, "CacheLine (%d) must be a power of two <= %d\n", o.CacheLine, maxCacheLine)
	}
	if o.Name == "" || strings.ContainsFunc(o.Name, unicode.IsSpace) {
		fmt.Fprintf(&buf, "Name (%q) must be non-empty and contain no whitespace\n", o.Name)
	}
	if buf.Len() == 0 {
		return nil
	}
	return errors.New(buf.String())
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// String returns a textual, INI-style representation of the options which
// can be read back with Parse.
func (o *Options) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[Table]\n")
	fmt.Fprintf(&buf, "  name=%s\n", o.Name)
	fmt.Fprintf(&buf, "  capacity=%d\n", o.Capacity)
	fmt.Fprintf(&buf, "  vector_width=%d\n", o.VectorWidth)
	fmt.Fprintf(&buf, "  cache_line=%d\n", o.CacheLine)
	return buf.String()
}

// Parse parses options in the format produced by String. Blank lines and
// lines starting with '#' or ';' are ignored. Unknown sections and keys are
// rejected. Fields absent from s are left untouched.
func (o *Options) Parse(s string) error {
	var section string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' || line[0] == ';' {
			continue
		}
		n := len(line)
		if line[0] == '[' && line[n-1] == ']' {
			section = line[1 : n-1]
			if section != "Table" {
				return errors.Errorf("simddb: unknown section: %q", errors.Safe(section))
			}
			continue
		}
		if section == "" {
			return errors.Errorf("simddb: option outside of a section: %q", line)
		}
		pos := strings.Index(line, "=")
		if pos < 0 {
			const maxLen = 50
			if len(line) > maxLen {
				line = line[:maxLen-3] + "..."
			}
			return errors.Errorf("simddb: invalid key=value syntax: %q", line)
		}
		key := strings.TrimSpace(line[:pos])
		value := strings.TrimSpace(line[pos+1:])

		var err error
		switch key {
		case "name":
			o.Name = value
		case "capacity":
			o.Capacity, err = strconv.Atoi(value)
		case "vector_width":
			o.VectorWidth, err = strconv.Atoi(value)
		case "cache_line":
			o.CacheLine, err = strconv.Atoi(value)
		default:
			return errors.Errorf("simddb: unknown option: %s.%s",
				errors.Safe(section), errors.Safe(key))
		}
		if err != nil {
			return errors.Wrapf(err, "simddb: parsing %s.%s", errors.Safe(section), errors.Safe(key))
		}
	}
	return nil
}
