// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	concurrency int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "simddb [command] (flags)",
	Short: "simddb layout/benchmarking tool",
	Long:  ``,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run benchmarks over simddb tables",
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	benchCmd.AddCommand(doorsCmd)
	rootCmd.AddCommand(
		layoutCmd,
		benchCmd,
	)

	for _, cmd := range []*cobra.Command{doorsCmd} {
		cmd.Flags().IntVarP(
			&concurrency, "concurrency", "c", 1, "number of independent worlds to run concurrently")
		cmd.Flags().BoolVarP(
			&verbose, "verbose", "v", false, "log the layout of every table")
	}

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
