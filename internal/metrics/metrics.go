package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	OutcomeSent     = "sent"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeInvalid  = "invalid"

	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunSkipped   = "skipped"
)

type Metrics struct {
	registry           *prometheus.Registry
	LeadsCounter       *prometheus.CounterVec
	RunsCounter        *prometheus.CounterVec
	WatermarkGauge     prometheus.Gauge
	RunDurationSeconds prometheus.Histogram
	MemoryUsageGauge   *prometheus.GaugeVec
	CpuUsageGauge      *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LeadsCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_processed_total",
				Help: "Total number of leads processed, by outcome.",
			},
			[]string{"outcome"},
		),
		RunsCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_runs_total",
				Help: "Total number of polling runs, by result.",
			},
			[]string{"result"},
		),
		WatermarkGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leads_watermark_timestamp_seconds",
			Help: "Unix time of the last written watermark.",
		}),
		RunDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leads_run_duration_seconds",
			Help:    "Duration of a polling run.",
			Buckets: prometheus.DefBuckets,
		}),
		MemoryUsageGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "app_memory_usage_bytes",
				Help: "Amount of memory used on the host.",
			},
			[]string{"type"},
		),
		CpuUsageGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "app_cpu_usage_percent",
				Help: "CPU usage percentage.",
			},
			[]string{"cpu"},
		),
	}

	m.registry.MustRegister(
		m.LeadsCounter,
		m.RunsCounter,
		m.WatermarkGauge,
		m.RunDurationSeconds,
		m.MemoryUsageGauge,
		m.CpuUsageGauge,
	)

	return m
}

func (m *Metrics) Lead(outcome string) {
	m.LeadsCounter.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Run(result string, elapsed time.Duration) {
	m.RunsCounter.WithLabelValues(result).Inc()
	m.RunDurationSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) Watermark(t time.Time) {
	m.WatermarkGauge.Set(float64(t.UnixMilli()) / 1000)
}

// CollectMemoryAndCpu samples host memory and the total CPU usage since the last call.
func (m *Metrics) CollectMemoryAndCpu() error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("failed to read memory usage: %w", err)
	}
	m.MemoryUsageGauge.WithLabelValues("used").Set(float64(vm.Used))
	m.MemoryUsageGauge.WithLabelValues("available").Set(float64(vm.Available))

	percents, err := cpu.Percent(0, false)
	if err != nil {
		return fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percents) > 0 {
		m.CpuUsageGauge.WithLabelValues("total").Set(percents[0])
	}

	return nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
