// Package monitor implements the sampler-publisher loop: read GPU and
// host usage on an interval and publish the readings to CloudWatch.
package monitor

import (
	"context"
	"time"

	"github.com/damionirving/gpumon-aws/pkg/cloudwatch"
	"github.com/damionirving/gpumon-aws/pkg/config"
	"github.com/damionirving/gpumon-aws/pkg/host"
	"github.com/damionirving/gpumon-aws/pkg/imds"
	"github.com/damionirving/gpumon-aws/pkg/log"
	pkgmetrics "github.com/damionirving/gpumon-aws/pkg/metrics"
	pkgnvml "github.com/damionirving/gpumon-aws/pkg/nvml"
)

type Monitor struct {
	cfg      *config.Config
	identity imds.Identity

	nvmlInstance pkgnvml.Instance
	publisher    cloudwatch.Publisher
	store        pkgmetrics.Store

	cpuUsedPercentFunc func(ctx context.Context, window time.Duration) (float64, error)
	memoryUsageFunc    func(ctx context.Context) (host.VirtualMemory, error)
	nowFunc            func() time.Time
}

// New creates a monitor. The publisher may be nil for dry runs, the store
// may be nil when no local history is kept.
func New(cfg *config.Config, identity imds.Identity, nvmlInstance pkgnvml.Instance, publisher cloudwatch.Publisher, store pkgmetrics.Store) *Monitor {
	return &Monitor{
		cfg:      cfg,
		identity: identity,

		nvmlInstance: nvmlInstance,
		publisher:    publisher,
		store:        store,

		cpuUsedPercentFunc: host.CPUUsedPercent,
		memoryUsageFunc:    host.MemoryUsage,
		nowFunc:            time.Now,
	}
}

// Run runs sampling cycles until the context is canceled.
func (m *Monitor) Run(ctx context.Context) {
	log.Logger.Infow("starting monitor",
		"sampleInterval", m.cfg.SampleInterval,
		"storageResolution", m.cfg.StorageResolution,
		"namespace", m.cfg.Namespace,
		"instanceID", m.identity.InstanceID,
		"instanceType", m.identity.InstanceType,
		"region", m.identity.Region,
	)

	for {
		cycleStart := m.nowFunc()

		cycle := m.collect(ctx)
		m.report(ctx, cycle)

		elapsed := m.nowFunc().Sub(cycleStart)
		metricCycleSeconds.Set(elapsed.Seconds())

		select {
		case <-ctx.Done():
			log.Logger.Infow("monitor stopped", "reason", ctx.Err())
			return
		case <-time.After(sleepDuration(m.cfg.SampleInterval, elapsed)):
		}
	}
}

// sleepDuration returns the remaining time of the cycle interval,
// never negative.
func sleepDuration(interval time.Duration, elapsed time.Duration) time.Duration {
	d := interval - elapsed
	if d < 0 {
		return 0
	}
	return d
}

// collect reads one cycle's worth of GPU and host samples. Individual
// sensor failures are defaulted and logged, never fatal.
func (m *Monitor) collect(ctx context.Context) Cycle {
	cycle := Cycle{
		Timestamp: m.nowFunc(),
	}

	gpuStart := m.nowFunc()
	for _, dev := range m.nvmlInstance.Devices() {
		cycle.GPUs = append(cycle.GPUs, m.collectDevice(dev))
	}
	cycle.GPUCollectionTime = m.nowFunc().Sub(gpuStart)
	log.Logger.Debugw("collected gpu metrics", "devices", len(cycle.GPUs), "elapsed", cycle.GPUCollectionTime)

	// size the CPU sampling window by the GPU pass so both cover roughly
	// the same wall-clock span
	window := host.CPUSampleWindow(cycle.GPUCollectionTime)
	cpuUsed, err := m.cpuUsedPercentFunc(ctx, window)
	if err != nil {
		log.Logger.Warnw("failed to get cpu usage, defaulting to 0", "error", err)
		cpuUsed = 0
	}
	cycle.Host.CPUUsedPercent = cpuUsed

	vm, err := m.memoryUsageFunc(ctx)
	if err != nil {
		log.Logger.Warnw("failed to get memory usage, defaulting to 0", "error", err)
	}
	cycle.Host.MemoryUsedPercent = vm.UsedPercent

	return cycle
}

// collectDevice reads the per-device sensors, defaulting each failed
// field to zero.
func (m *Monitor) collectDevice(dev pkgnvml.Device) GPUSample {
	sample := GPUSample{
		Index: dev.Index,
		UUID:  dev.UUID,
	}

	util, err := pkgnvml.GetUtilization(dev.UUID, dev.Handle())
	if err != nil {
		log.Logger.Warnw("failed to get gpu utilization, defaulting to 0", "gpu", dev.Index, "error", err)
	} else if util.Supported {
		sample.GPUUsedPercent = float64(util.GPUUsedPercent)
		sample.MemoryUsedPercent = float64(util.MemoryUsedPercent)
	}

	power, err := pkgnvml.GetPower(dev.UUID, dev.Handle())
	if err != nil {
		log.Logger.Warnw("failed to get gpu power usage, defaulting to 0", "gpu", dev.Index, "error", err)
	} else if power.GetPowerUsageSupported {
		sample.PowerWatts = power.UsageWatts()
	}

	temp, err := pkgnvml.GetTemperature(dev.UUID, dev.Handle())
	if err != nil {
		log.Logger.Warnw("failed to get gpu temperature, defaulting to 0", "gpu", dev.Index, "error", err)
	} else if temp.Supported {
		sample.TemperatureCelsius = float64(temp.CurrentCelsius)
	}

	return sample
}

// report publishes the cycle to CloudWatch, records it in the local
// history, and mirrors it to the prometheus gauges. Failures are logged
// and the next cycle retries implicitly.
func (m *Monitor) report(ctx context.Context, cycle Cycle) {
	updateGauges(cycle)

	if m.publisher != nil {
		data := m.buildDatums(cycle)
		if err := m.publisher.Publish(ctx, data); err != nil {
			metricPublishFailures.Inc()
			log.Logger.Errorw("failed to publish metrics", "error", err)
		} else {
			log.Logger.Infow("published metrics", "data", len(data), "namespace", m.cfg.Namespace)
		}
	}

	if m.store != nil {
		if err := m.store.Record(ctx, m.buildStoreMetrics(cycle)...); err != nil {
			log.Logger.Errorw("failed to record metrics", "error", err)
		}
		purged, err := m.store.Purge(ctx, cycle.Timestamp.Add(-m.cfg.RetentionPeriod))
		if err != nil {
			log.Logger.Errorw("failed to purge metrics", "error", err)
		} else if purged > 0 {
			log.Logger.Debugw("purged metrics", "purged", purged)
		}
	}
}
