package metrics

import (
	"testing"
	"time"

	"talos-hq/console/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Benchmark_Collector_RecordAttempt benchmarks attempt recording
func Benchmark_Collector_RecordAttempt(b *testing.B) {
	collector := NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordAttempt("gateway", "GET", 200, 15*time.Millisecond)
	}
}

// Benchmark_Collector_RecordAttempt_Parallel benchmarks parallel attempt recording
func Benchmark_Collector_RecordAttempt_Parallel(b *testing.B) {
	collector := NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordAttempt("audit", "GET", 503, 40*time.Millisecond)
		}
	})
}

// Benchmark_Collector_RecordEvent benchmarks store event counting
func Benchmark_Collector_RecordEvent(b *testing.B) {
	collector := NewCollector(&config.MetricsConfig{Enabled: true}, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordEvent("audit_events_received")
	}
}

// Benchmark_Collector_Disabled benchmarks the disabled fast path
func Benchmark_Collector_Disabled(b *testing.B) {
	collector := NewCollector(&config.MetricsConfig{Enabled: false}, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordAttempt("gateway", "GET", 200, time.Millisecond)
		collector.RecordTransition("RUNNING", "DEGRADED")
	}
}
