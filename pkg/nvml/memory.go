package nvml

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Memory represents the data from the nvmlDeviceGetMemoryInfo API.
// ref. https://docs.nvidia.com/deploy/nvml-api/group__nvmlDeviceQueries.html#group__nvmlDeviceQueries_1g2dfeb1db82aa1de91aa6edf941c85ca8
type Memory struct {
	// Represents the GPU UUID.
	UUID string `json:"uuid"`

	TotalBytes uint64 `json:"total_bytes"`
	UsedBytes  uint64 `json:"used_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`

	// Supported is true if the memory info is supported by the device.
	Supported bool `json:"supported"`
}

// UsedPercent returns the used device memory as a percentage of the total.
func (mem Memory) UsedPercent() float64 {
	if mem.TotalBytes == 0 {
		return 0
	}
	return float64(mem.UsedBytes) / float64(mem.TotalBytes) * 100
}

func GetMemory(uuid string, dev nvml.Device) (Memory, error) {
	mem := Memory{
		UUID:      uuid,
		Supported: true,
	}

	info, ret := dev.GetMemoryInfo()
	if IsNotSupportError(ret) {
		mem.Supported = false
		return mem, nil
	}
	if ret != nvml.SUCCESS {
		if IsGPULostError(ret) {
			return mem, ErrGPULost
		}
		return mem, fmt.Errorf("failed to get device memory info: %v", nvml.ErrorString(ret))
	}

	mem.TotalBytes = info.Total
	mem.UsedBytes = info.Used
	mem.FreeBytes = info.Free

	return mem, nil
}
