package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSystemMetrics() {
	r.RunDurationSeconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fedigraph_run_duration_seconds",
			Help: "Wall-clock duration of the last pipeline run in seconds",
		},
	)

	r.GoRoutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fedigraph_goroutines",
			Help: "Number of goroutines",
		},
	)

	r.MemoryAllocBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fedigraph_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)

	r.MemorySysBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fedigraph_memory_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)
}

func (r *Registry) updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
