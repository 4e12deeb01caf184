package nvml

import (
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/NVIDIA/go-nvml/pkg/nvml/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMemory(t *testing.T) {
	dev := &mock.Device{
		GetMemoryInfoFunc: func() (nvml.Memory, nvml.Return) {
			return nvml.Memory{Total: 1000, Used: 250, Free: 750}, nvml.SUCCESS
		},
	}

	mem, err := GetMemory("test-uuid", dev)
	require.NoError(t, err)
	assert.True(t, mem.Supported)
	assert.Equal(t, uint64(1000), mem.TotalBytes)
	assert.Equal(t, uint64(250), mem.UsedBytes)
	assert.InDelta(t, 25.0, mem.UsedPercent(), 0.001)
}

func TestGetMemoryZeroTotal(t *testing.T) {
	mem := Memory{UUID: "test-uuid"}
	assert.Zero(t, mem.UsedPercent())
}

func TestGetMemoryNotSupported(t *testing.T) {
	dev := &mock.Device{
		GetMemoryInfoFunc: func() (nvml.Memory, nvml.Return) {
			return nvml.Memory{}, nvml.ERROR_NOT_SUPPORTED
		},
	}

	mem, err := GetMemory("test-uuid", dev)
	require.NoError(t, err)
	assert.False(t, mem.Supported)
}

func TestGetMemoryGPULost(t *testing.T) {
	dev := &mock.Device{
		GetMemoryInfoFunc: func() (nvml.Memory, nvml.Return) {
			return nvml.Memory{}, nvml.ERROR_GPU_IS_LOST
		},
	}

	_, err := GetMemory("test-uuid", dev)
	assert.ErrorIs(t, err, ErrGPULost)
}
