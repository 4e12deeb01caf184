package nvml

import (
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/NVIDIA/go-nvml/pkg/nvml/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUtilization(t *testing.T) {
	dev := &mock.Device{
		GetUtilizationRatesFunc: func() (nvml.Utilization, nvml.Return) {
			return nvml.Utilization{Gpu: 87, Memory: 42}, nvml.SUCCESS
		},
	}

	util, err := GetUtilization("test-uuid", dev)
	require.NoError(t, err)
	assert.True(t, util.Supported)
	assert.Equal(t, uint32(87), util.GPUUsedPercent)
	assert.Equal(t, uint32(42), util.MemoryUsedPercent)
	assert.Equal(t, "test-uuid", util.UUID)
}

func TestGetUtilizationNotSupported(t *testing.T) {
	dev := &mock.Device{
		GetUtilizationRatesFunc: func() (nvml.Utilization, nvml.Return) {
			return nvml.Utilization{}, nvml.ERROR_NOT_SUPPORTED
		},
	}

	util, err := GetUtilization("test-uuid", dev)
	require.NoError(t, err)
	assert.False(t, util.Supported)
	assert.Zero(t, util.GPUUsedPercent)
}

func TestGetUtilizationError(t *testing.T) {
	dev := &mock.Device{
		GetUtilizationRatesFunc: func() (nvml.Utilization, nvml.Return) {
			return nvml.Utilization{}, nvml.ERROR_UNKNOWN
		},
	}

	_, err := GetUtilization("test-uuid", dev)
	assert.Error(t, err)
}

func TestGetUtilizationGPULost(t *testing.T) {
	dev := &mock.Device{
		GetUtilizationRatesFunc: func() (nvml.Utilization, nvml.Return) {
			return nvml.Utilization{}, nvml.ERROR_GPU_IS_LOST
		},
	}

	_, err := GetUtilization("test-uuid", dev)
	assert.ErrorIs(t, err, ErrGPULost)
}
