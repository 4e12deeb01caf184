package nvml

import (
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/NVIDIA/go-nvml/pkg/nvml/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPower(t *testing.T) {
	dev := &mock.Device{
		GetPowerUsageFunc: func() (uint32, nvml.Return) {
			return 250_000, nvml.SUCCESS
		},
		GetEnforcedPowerLimitFunc: func() (uint32, nvml.Return) {
			return 400_000, nvml.SUCCESS
		},
	}

	power, err := GetPower("test-uuid", dev)
	require.NoError(t, err)
	assert.True(t, power.GetPowerUsageSupported)
	assert.Equal(t, uint32(250_000), power.UsageMilliWatts)
	assert.InDelta(t, 250.0, power.UsageWatts(), 0.001)
	assert.Equal(t, "62.50", power.UsedPercent)
}

func TestGetPowerUsageNotSupported(t *testing.T) {
	dev := &mock.Device{
		GetPowerUsageFunc: func() (uint32, nvml.Return) {
			return 0, nvml.ERROR_NOT_SUPPORTED
		},
		GetEnforcedPowerLimitFunc: func() (uint32, nvml.Return) {
			return 0, nvml.ERROR_NOT_SUPPORTED
		},
	}

	power, err := GetPower("test-uuid", dev)
	require.NoError(t, err)
	assert.False(t, power.GetPowerUsageSupported)
	assert.False(t, power.GetPowerLimitSupported)
	assert.Zero(t, power.UsageMilliWatts)
	assert.Equal(t, "0.0", power.UsedPercent)
}

func TestGetPowerError(t *testing.T) {
	dev := &mock.Device{
		GetPowerUsageFunc: func() (uint32, nvml.Return) {
			return 0, nvml.ERROR_UNKNOWN
		},
	}

	_, err := GetPower("test-uuid", dev)
	assert.Error(t, err)
}

func TestGetPowerGPULost(t *testing.T) {
	dev := &mock.Device{
		GetPowerUsageFunc: func() (uint32, nvml.Return) {
			return 0, nvml.ERROR_GPU_IS_LOST
		},
	}

	_, err := GetPower("test-uuid", dev)
	assert.ErrorIs(t, err, ErrGPULost)
}
