// FILE: lixenwraith/logship/metrics/collector.go
// Package metrics exposes logship shipping counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lixenwraith/logship"
)

// Collector reads a shared logship.Stats on every scrape
type Collector struct {
	stats *logship.Stats

	recordsEmitted  *prometheus.Desc
	recordsBuffered *prometheus.Desc
	recordsShipped  *prometheus.Desc
	recordsFallback *prometheus.Desc
	flushAttempts   *prometheus.Desc
	flushFailures   *prometheus.Desc
	flushesSkipped  *prometheus.Desc
	timersArmed     *prometheus.Desc
	bytesSent       *prometheus.Desc
	uptime          *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// New creates a collector for stats. constLabels are attached to every series.
func New(stats *logship.Stats, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("logship", "", name), help, nil, constLabels)
	}
	return &Collector{
		stats:           stats,
		recordsEmitted:  desc("records_emitted_total", "Total number of records passed to a logger."),
		recordsBuffered: desc("records_buffered_total", "Total number of records appended to a batch."),
		recordsShipped:  desc("records_shipped_total", "Total number of records confirmed by the ingestion endpoint."),
		recordsFallback: desc("records_fallback_total", "Total number of records written to the fallback channel."),
		flushAttempts:   desc("flush_attempts_total", "Total number of batch POSTs started."),
		flushFailures:   desc("flush_failures_total", "Total number of failed batch POSTs."),
		flushesSkipped:  desc("flushes_skipped_total", "Total number of flushes skipped while one was in flight."),
		timersArmed:     desc("timers_armed_total", "Total number of deferred flush timers started."),
		bytesSent:       desc("bytes_sent_total", "Total request body bytes of successful POSTs."),
		uptime:          desc("uptime_seconds", "Seconds since the stats were created."),
	}
}

// Register creates a collector and registers it
func Register(registry prometheus.Registerer, stats *logship.Stats, constLabels prometheus.Labels) (*Collector, error) {
	c := New(stats, constLabels)
	if err := registry.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.recordsEmitted
	ch <- c.recordsBuffered
	ch <- c.recordsShipped
	ch <- c.recordsFallback
	ch <- c.flushAttempts
	ch <- c.flushFailures
	ch <- c.flushesSkipped
	ch <- c.timersArmed
	ch <- c.bytesSent
	ch <- c.uptime
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.recordsEmitted, snap.RecordsEmitted)
	counter(c.recordsBuffered, snap.RecordsBuffered)
	counter(c.recordsShipped, snap.RecordsShipped)
	counter(c.recordsFallback, snap.RecordsFallback)
	counter(c.flushAttempts, snap.FlushAttempts)
	counter(c.flushFailures, snap.FlushFailures)
	counter(c.flushesSkipped, snap.FlushesSkipped)
	counter(c.timersArmed, snap.TimersArmed)
	counter(c.bytesSent, snap.BytesSent)

	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, snap.Uptime.Seconds())
}
