// Copyright 2026 The simddb Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector exports the usage of a set of tables as Prometheus gauges. The
// source function is invoked on every scrape; tables are not safe for
// concurrent use, so the caller must ensure that scrapes do not race with
// mutations (e.g. by gathering between simulation steps).
type Collector struct {
	source        func() []Table
	rows          *prometheus.Desc
	capacity      *prometheus.Desc
	liveBytes     *prometheus.Desc
	reservedBytes *prometheus.Desc
	reservedSlots *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reporting the tables returned by source
// under the given metric namespace.
func NewCollector(namespace string, source func() []Table) *Collector {
	labels := []string{"table"}
	return &Collector{
		source: source,
		rows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "rows"),
			"Number of live rows.", labels, nil),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "capacity_rows"),
			"Declared maximum number of rows.", labels, nil),
		liveBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "live_bytes"),
			"Bytes occupied by live rows across all columns.", labels, nil),
		reservedBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "reserved_bytes"),
			"Bytes of the table arena, padding included.", labels, nil),
		reservedSlots: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "table", "reserved_slots"),
			"Element slots allocated across all columns, padding included.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rows
	ch <- c.capacity
	ch <- c.liveBytes
	ch <- c.reservedBytes
	ch <- c.reservedSlots
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, t := range c.source() {
		ch <- prometheus.MustNewConstMetric(c.rows, prometheus.GaugeValue, float64(t.Live.Count), t.Name)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(t.Capacity), t.Name)
		ch <- prometheus.MustNewConstMetric(c.liveBytes, prometheus.GaugeValue, float64(t.Live.Bytes), t.Name)
		ch <- prometheus.MustNewConstMetric(c.reservedBytes, prometheus.GaugeValue, float64(t.Reserved.Bytes), t.Name)
		ch <- prometheus.MustNewConstMetric(c.reservedSlots, prometheus.GaugeValue, float64(t.Reserved.Count), t.Name)
	}
}
