// Package metrics defines the sample types the monitor collects and the
// store interface for the local sample history.
package metrics

import (
	"context"
	"time"
)

// Metric represents a metric row in the local history table.
type Metric struct {
	// UnixMilliseconds represents the Unix timestamp of the metric.
	UnixMilliseconds int64 `json:"unix_milliseconds"`
	// Component represents the name of the component this metric belongs to.
	Component string `json:"component"`
	// Name represents the name of the metric.
	Name string `json:"name"`
	// Label is a secondary metric name such as the GPU index.
	Label string `json:"label,omitempty"`
	// Value represents the numeric value of the metric.
	Value float64 `json:"value"`
}

// Metrics is a slice of Metric.
type Metrics []Metric

// Store defines the metrics store interface.
type Store interface {
	// Record records metric data points.
	Record(ctx context.Context, ms ...Metric) error

	// Read returns all the data points since the given time.
	Read(ctx context.Context, since time.Time) (Metrics, error)

	// Purge purges the metrics data points before the given time.
	Purge(ctx context.Context, before time.Time) (int, error)
}
