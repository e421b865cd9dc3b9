// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/guptarohit/asciigraph"
	simddb "github.com/nutax/simd-db"
	"github.com/nutax/simd-db/internal/sim"
	"github.com/nutax/simd-db/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	minLatency = 10 * time.Nanosecond
	maxLatency = 10 * time.Second
)

var doorsConfig struct {
	players     int
	doors       int
	frames      int
	churn       int
	seed        uint64
	vectorWidth int
	plot        bool
	plotWidth   int
	metrics     bool
}

var doorsCmd = &cobra.Command{
	Use:   "doors",
	Short: "run the open doors simulation",
	Long: `
Run the open doors simulation: players and doors are scattered at random over
a small grid, and every frame each door opens if a player of the door's team
stands within the door's radius. Each frame is a single vectorized scan of the
doors table against every player.

With --churn, every frame is followed by destroying that many random doors
and spawning as many new ones. With --concurrency, independent worlds are
simulated in parallel, each seeded differently.
`,
	Args: cobra.NoArgs,
	RunE: runDoors,
}

func init() {
	doorsCmd.Flags().IntVar(
		&doorsConfig.players, "players", sim.DefaultPlayers, "player capacity")
	doorsCmd.Flags().IntVar(
		&doorsConfig.doors, "doors", sim.DefaultDoors, "door capacity")
	doorsCmd.Flags().IntVarP(
		&doorsConfig.frames, "frames", "n", 10000, "number of frames to simulate")
	doorsCmd.Flags().IntVar(
		&doorsConfig.churn, "churn", 0, "doors respawned after every frame")
	doorsCmd.Flags().Uint64Var(
		&doorsConfig.seed, "seed", 1, "random seed")
	doorsCmd.Flags().IntVar(
		&doorsConfig.vectorWidth, "vector-width", 0,
		"vector width in bytes (0 selects the running CPU's widest vector)")
	doorsCmd.Flags().BoolVar(
		&doorsConfig.plot, "plot", false, "plot the frame latencies of the first world")
	doorsCmd.Flags().IntVar(
		&doorsConfig.plotWidth, "plot-width", 80, "number of points in the plot")
	doorsCmd.Flags().BoolVar(
		&doorsConfig.metrics, "metrics", false,
		"dump the table metrics of the first world in the Prometheus text format")
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
}

func clampLatency(d time.Duration) time.Duration {
	return min(max(d, minLatency), maxLatency)
}

// doorsRun holds the state and results of one simulated world.
type doorsRun struct {
	world *sim.World
	rng   *rand.Rand
	hist  *hdrhistogram.Histogram
	// open is the sum over all frames of the number of open doors.
	open int64
	// frames holds the latency of every frame in microseconds, if plotting.
	frames []float64
}

func (r *doorsRun) run(ctx context.Context, frames, churn int, plot bool) error {
	if plot {
		r.frames = make([]float64, 0, frames)
	}
	for i := 0; i < frames; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		start := crtime.NowMono()
		r.world.OpenDoors()
		elapsed := start.Elapsed()

		if err := r.hist.RecordValue(clampLatency(elapsed).Nanoseconds()); err != nil {
			return errors.Wrap(err, "recording frame latency")
		}
		if plot {
			r.frames = append(r.frames, float64(elapsed.Nanoseconds())/1e3)
		}
		r.open += int64(r.world.OpenCount())
		if churn > 0 {
			r.world.Respawn(r.rng, churn)
		}
	}
	return nil
}

func runDoors(cmd *cobra.Command, args []string) error {
	if doorsConfig.frames <= 0 {
		return errors.Errorf("--frames must be positive, got %d", doorsConfig.frames)
	}
	if concurrency <= 0 {
		return errors.Errorf("--concurrency must be positive, got %d", concurrency)
	}
	if doorsConfig.churn < 0 {
		return errors.Errorf("--churn must be non-negative, got %d", doorsConfig.churn)
	}

	var logger simddb.Logger
	if verbose {
		logger = simddb.DefaultLogger{}
	}
	cfg := sim.Config{
		Players:     doorsConfig.players,
		Doors:       doorsConfig.doors,
		VectorWidth: doorsConfig.vectorWidth,
		Logger:      logger,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	runs := make([]*doorsRun, concurrency)
	for i := range runs {
		rng := rand.New(rand.NewPCG(doorsConfig.seed, uint64(i)))
		w := sim.NewWorld(cfg)
		w.Generate(rng)
		runs[i] = &doorsRun{world: w, rng: rng, hist: newHistogram()}
	}

	g, ctx := errgroup.WithContext(context.Background())
	start := crtime.NowMono()
	for i, r := range runs {
		plot := doorsConfig.plot && i == 0
		g.Go(func() error {
			return r.run(ctx, doorsConfig.frames, doorsConfig.churn, plot)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := start.Elapsed()

	out := cmd.OutOrStdout()
	writeDoorsResults(out, runs, elapsed)
	if doorsConfig.plot {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "frame latency (µs), world 0")
		fmt.Fprintln(out, plotFrames(runs[0].frames, doorsConfig.plotWidth, 10))
	}
	if doorsConfig.metrics {
		fmt.Fprintln(out)
		if err := writeMetrics(out, runs[0].world.View()); err != nil {
			return err
		}
	}
	return nil
}

func writeDoorsResults(w io.Writer, runs []*doorsRun, elapsed time.Duration) {
	frames := int64(doorsConfig.frames)
	fmt.Fprintf(w, "players=%d doors=%d frames=%s churn=%d elapsed=%s\n",
		doorsConfig.players, doorsConfig.doors,
		crhumanize.Count(frames, crhumanize.Compact), doorsConfig.churn,
		elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "_____world____open(avg)__frames/sec__avg(µs)__p50(µs)__p95(µs)__p99(µs)_pMax(µs)")

	total := newHistogram()
	var open int64
	for i, r := range runs {
		writeDoorsRow(w, fmt.Sprint(i), r.hist, r.open, frames, elapsed)
		total.Merge(r.hist)
		open += r.open
	}
	if len(runs) > 1 {
		writeDoorsRow(w, "total", total, open, frames*int64(len(runs)), elapsed)
	}
}

func writeDoorsRow(
	w io.Writer, name string, h *hdrhistogram.Histogram, open, frames int64, elapsed time.Duration,
) {
	us := func(ns int64) float64 { return float64(ns) / 1e3 }
	fmt.Fprintf(w, "%10s %12.1f %11.1f %8.2f %8.2f %8.2f %8.2f %8.2f\n",
		name,
		float64(open)/float64(frames),
		float64(frames)/elapsed.Seconds(),
		h.Mean()/1e3,
		us(h.ValueAtQuantile(50)),
		us(h.ValueAtQuantile(95)),
		us(h.ValueAtQuantile(99)),
		us(h.ValueAtQuantile(100)))
}

// plotFrames averages the frame latencies into width buckets and plots them.
func plotFrames(frames []float64, width, height int) string {
	if len(frames) == 0 || width <= 0 {
		return ""
	}
	width = min(width, len(frames))
	values := make([]float64, width)
	for i := range values {
		lo, hi := i*len(frames)/width, (i+1)*len(frames)/width
		var sum float64
		for _, v := range frames[lo:hi] {
			sum += v
		}
		values[i] = sum / float64(hi-lo)
	}
	return asciigraph.Plot(values, asciigraph.Height(height))
}

func writeMetrics(w io.Writer, v *simddb.View) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector("simddb", v.Metrics))
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	total := metrics.Total(v.Metrics())
	fmt.Fprintf(w, "# %s (%.0f%% of capacity live)\n", total.String(), 100*total.Utilization())
	return nil
}
