package config

import "time"

const (
	// DefaultSampleInterval is the default time between two sampling cycles.
	DefaultSampleInterval = 10 * time.Second

	// DefaultStorageResolution stores the published metrics at the regular
	// 60-second CloudWatch resolution.
	DefaultStorageResolution = 60

	// DefaultNamespace is the default CloudWatch namespace.
	DefaultNamespace = "UsageMetrics"

	// DefaultRetentionPeriod is the default local history retention.
	DefaultRetentionPeriod = 24 * time.Hour
)

func DefaultConfig() *Config {
	return &Config{
		SampleInterval:    DefaultSampleInterval,
		StorageResolution: DefaultStorageResolution,
		Namespace:         DefaultNamespace,
		RetentionPeriod:   DefaultRetentionPeriod,
	}
}
