package nvml

import (
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/NVIDIA/go-nvml/pkg/nvml/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTemperature(t *testing.T) {
	dev := &mock.Device{
		GetTemperatureFunc: func(sensor nvml.TemperatureSensors) (uint32, nvml.Return) {
			if sensor != nvml.TEMPERATURE_GPU {
				return 0, nvml.ERROR_INVALID_ARGUMENT
			}
			return 71, nvml.SUCCESS
		},
	}

	temp, err := GetTemperature("test-uuid", dev)
	require.NoError(t, err)
	assert.True(t, temp.Supported)
	assert.Equal(t, uint32(71), temp.CurrentCelsius)
}

func TestGetTemperatureNotSupported(t *testing.T) {
	dev := &mock.Device{
		GetTemperatureFunc: func(sensor nvml.TemperatureSensors) (uint32, nvml.Return) {
			return 0, nvml.ERROR_NOT_SUPPORTED
		},
	}

	temp, err := GetTemperature("test-uuid", dev)
	require.NoError(t, err)
	assert.False(t, temp.Supported)
	assert.Zero(t, temp.CurrentCelsius)
}

func TestGetTemperatureGPULost(t *testing.T) {
	dev := &mock.Device{
		GetTemperatureFunc: func(sensor nvml.TemperatureSensors) (uint32, nvml.Return) {
			return 0, nvml.ERROR_GPU_IS_LOST
		},
	}

	_, err := GetTemperature("test-uuid", dev)
	assert.ErrorIs(t, err, ErrGPULost)
}
