// Package config provides the gpumon configuration data.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config provides gpumon configuration data for the monitor.
type Config struct {
	// Interval between two sampling cycles.
	SampleInterval time.Duration `json:"sample_interval"`

	// CloudWatch storage resolution in seconds, 1 to 60.
	// 1 stores the metrics as high-resolution; 60 as regular resolution.
	StorageResolution int `json:"storage_resolution"`

	// CloudWatch namespace the metrics are published under.
	Namespace string `json:"namespace"`

	// Amount of time to retain the local sample history for.
	// Once elapsed, old rows are purged.
	RetentionPeriod time.Duration `json:"retention_period"`

	// Address for the /healthz and /metrics HTTP server to listen on.
	// If empty, the server is not started.
	ListenAddress string `json:"listen_address"`

	// DBFile is the sqlite file that keeps the local sample history.
	// If empty, samples are not persisted.
	DBFile string `json:"db_file"`

	// Set true to collect and log samples without publishing to CloudWatch.
	DryRun bool `json:"dry_run"`
}

var (
	ErrInvalidSampleInterval    = errors.New("sample_interval must be positive")
	ErrInvalidStorageResolution = errors.New("storage_resolution must be between 1 and 60 seconds")
	ErrEmptyNamespace           = errors.New("namespace is required")
)

func (config *Config) Validate() error {
	if config.SampleInterval <= 0 {
		return ErrInvalidSampleInterval
	}
	if config.StorageResolution < 1 || config.StorageResolution > 60 {
		return fmt.Errorf("%w, got %d", ErrInvalidStorageResolution, config.StorageResolution)
	}
	if config.Namespace == "" {
		return ErrEmptyNamespace
	}
	if config.RetentionPeriod < time.Minute {
		return fmt.Errorf("retention_period must be at least 1 minute, got %v", config.RetentionPeriod)
	}
	return nil
}
