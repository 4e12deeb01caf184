package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const SubSystem = "gpumon"

var (
	metricGPUUsedPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "gpu_used_percent",
			Help:      "tracks the gpu utilization percentage per device",
		},
		[]string{"gpu"},
	)

	metricGPUMemoryUsedPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "gpu_memory_used_percent",
			Help:      "tracks the gpu memory activity percentage per device",
		},
		[]string{"gpu"},
	)

	metricGPUPowerWatts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "gpu_power_watts",
			Help:      "tracks the gpu power draw in watts per device",
		},
		[]string{"gpu"},
	)

	metricGPUTemperatureCelsius = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "gpu_temperature_celsius",
			Help:      "tracks the gpu die temperature per device",
		},
		[]string{"gpu"},
	)

	metricCPUUsedPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "cpu_used_percent",
			Help:      "tracks the host cpu busy percentage",
		},
	)

	metricMemoryUsedPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "memory_used_percent",
			Help:      "tracks the host memory usage percentage",
		},
	)

	metricCycleSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: SubSystem,
			Name:      "cycle_seconds",
			Help:      "tracks the wall-clock time of the last sampling cycle",
		},
	)

	metricPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: SubSystem,
			Name:      "publish_failures_total",
			Help:      "tracks the number of failed CloudWatch publishes",
		},
	)
)

// RegisterCollectors registers the monitor gauges with the registry the
// HTTP server exposes.
func RegisterCollectors(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{
		metricGPUUsedPercent,
		metricGPUMemoryUsedPercent,
		metricGPUPowerWatts,
		metricGPUTemperatureCelsius,
		metricCPUUsedPercent,
		metricMemoryUsedPercent,
		metricCycleSeconds,
		metricPublishFailures,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func updateGauges(cycle Cycle) {
	for _, gpu := range cycle.GPUs {
		label := strconv.Itoa(gpu.Index)
		metricGPUUsedPercent.WithLabelValues(label).Set(gpu.GPUUsedPercent)
		metricGPUMemoryUsedPercent.WithLabelValues(label).Set(gpu.MemoryUsedPercent)
		metricGPUPowerWatts.WithLabelValues(label).Set(gpu.PowerWatts)
		metricGPUTemperatureCelsius.WithLabelValues(label).Set(gpu.TemperatureCelsius)
	}

	metricCPUUsedPercent.Set(cycle.Host.CPUUsedPercent)
	metricMemoryUsedPercent.Set(cycle.Host.MemoryUsedPercent)
}
