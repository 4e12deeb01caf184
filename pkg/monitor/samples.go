package monitor

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	aws_cloudwatch "github.com/aws/aws-sdk-go/service/cloudwatch"

	pkgmetrics "github.com/damionirving/gpumon-aws/pkg/metrics"
)

// CloudWatch metric names, kept compatible with the widely deployed
// EC2 gpumon dashboards.
const (
	MetricGPUUsage       = "GPU Usage"
	MetricGPUMemoryUsage = "Memory Usage (GPU)"
	MetricPowerUsage     = "Power Usage (Watts)"
	MetricTemperature    = "Temperature (C)"
	MetricCPUUsage       = "CPU Usage"
	MetricHostMemory     = "Memory Usage (EC2)"
)

// Dimension names for the published metric data.
const (
	DimensionInstanceID   = "InstanceId"
	DimensionImageID      = "ImageId"
	DimensionInstanceType = "InstanceType"
	DimensionGPUNumber    = "GPUNumber"
)

// GPUSample is one device's readings for a cycle. Failed fields are zero.
type GPUSample struct {
	Index int    `json:"index"`
	UUID  string `json:"uuid"`

	GPUUsedPercent     float64 `json:"gpu_used_percent"`
	MemoryUsedPercent  float64 `json:"memory_used_percent"`
	PowerWatts         float64 `json:"power_watts"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
}

// HostSample is the host CPU/memory readings for a cycle.
type HostSample struct {
	CPUUsedPercent    float64 `json:"cpu_used_percent"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

// Cycle is everything one sampling cycle collected.
type Cycle struct {
	Timestamp time.Time `json:"timestamp"`

	GPUs []GPUSample `json:"gpus"`
	Host HostSample  `json:"host"`

	// GPUCollectionTime is the wall-clock time of the GPU read pass,
	// used to size the CPU sampling window.
	GPUCollectionTime time.Duration `json:"gpu_collection_time"`
}

// buildDatums converts the cycle into CloudWatch metric data. GPU metrics
// carry the GPUNumber dimension on top of the instance identity; host
// metrics carry the identity only.
func (m *Monitor) buildDatums(cycle Cycle) []*aws_cloudwatch.MetricDatum {
	baseDimensions := []*aws_cloudwatch.Dimension{
		{Name: aws.String(DimensionInstanceID), Value: aws.String(m.identity.InstanceID)},
		{Name: aws.String(DimensionImageID), Value: aws.String(m.identity.ImageID)},
		{Name: aws.String(DimensionInstanceType), Value: aws.String(m.identity.InstanceType)},
	}

	resolution := aws.Int64(int64(m.cfg.StorageResolution))
	timestamp := aws.Time(cycle.Timestamp)

	datum := func(name string, unit string, value float64, dimensions []*aws_cloudwatch.Dimension) *aws_cloudwatch.MetricDatum {
		return &aws_cloudwatch.MetricDatum{
			MetricName:        aws.String(name),
			Dimensions:        dimensions,
			Unit:              aws.String(unit),
			Value:             aws.Float64(value),
			Timestamp:         timestamp,
			StorageResolution: resolution,
		}
	}

	data := make([]*aws_cloudwatch.MetricDatum, 0, len(cycle.GPUs)*4+2)
	for _, gpu := range cycle.GPUs {
		gpuDimensions := make([]*aws_cloudwatch.Dimension, 0, len(baseDimensions)+1)
		gpuDimensions = append(gpuDimensions, baseDimensions...)
		gpuDimensions = append(gpuDimensions, &aws_cloudwatch.Dimension{
			Name:  aws.String(DimensionGPUNumber),
			Value: aws.String(strconv.Itoa(gpu.Index)),
		})

		data = append(data,
			datum(MetricGPUUsage, aws_cloudwatch.StandardUnitPercent, gpu.GPUUsedPercent, gpuDimensions),
			datum(MetricGPUMemoryUsage, aws_cloudwatch.StandardUnitPercent, gpu.MemoryUsedPercent, gpuDimensions),
			datum(MetricPowerUsage, aws_cloudwatch.StandardUnitNone, gpu.PowerWatts, gpuDimensions),
			datum(MetricTemperature, aws_cloudwatch.StandardUnitNone, gpu.TemperatureCelsius, gpuDimensions),
		)
	}

	data = append(data,
		datum(MetricCPUUsage, aws_cloudwatch.StandardUnitPercent, cycle.Host.CPUUsedPercent, baseDimensions),
		datum(MetricHostMemory, aws_cloudwatch.StandardUnitPercent, cycle.Host.MemoryUsedPercent, baseDimensions),
	)

	return data
}

// buildStoreMetrics converts the cycle into local history rows.
func (m *Monitor) buildStoreMetrics(cycle Cycle) []pkgmetrics.Metric {
	ts := cycle.Timestamp.UnixMilli()

	ms := make([]pkgmetrics.Metric, 0, len(cycle.GPUs)*4+2)
	for _, gpu := range cycle.GPUs {
		label := strconv.Itoa(gpu.Index)
		ms = append(ms,
			pkgmetrics.Metric{UnixMilliseconds: ts, Component: "gpu", Name: MetricGPUUsage, Label: label, Value: gpu.GPUUsedPercent},
			pkgmetrics.Metric{UnixMilliseconds: ts, Component: "gpu", Name: MetricGPUMemoryUsage, Label: label, Value: gpu.MemoryUsedPercent},
			pkgmetrics.Metric{UnixMilliseconds: ts, Component: "gpu", Name: MetricPowerUsage, Label: label, Value: gpu.PowerWatts},
			pkgmetrics.Metric{UnixMilliseconds: ts, Component: "gpu", Name: MetricTemperature, Label: label, Value: gpu.TemperatureCelsius},
		)
	}

	ms = append(ms,
		pkgmetrics.Metric{UnixMilliseconds: ts, Component: "host", Name: MetricCPUUsage, Value: cycle.Host.CPUUsedPercent},
		pkgmetrics.Metric{UnixMilliseconds: ts, Component: "host", Name: MetricHostMemory, Value: cycle.Host.MemoryUsedPercent},
	)

	return ms
}
