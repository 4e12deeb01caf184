package nvml

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Utilization represents the data from the nvmlDeviceGetUtilizationRates API.
// ref. https://docs.nvidia.com/deploy/nvml-api/group__nvmlDeviceQueries.html#group__nvmlDeviceQueries_1g540824faa6cef45500e0d1dc2f50b321
type Utilization struct {
	// Represents the GPU UUID.
	UUID string `json:"uuid"`

	// GPUUsedPercent is the percent of time over the past sample period
	// during which one or more kernels was executing on the GPU.
	GPUUsedPercent uint32 `json:"gpu_used_percent"`

	// MemoryUsedPercent is the percent of time over the past sample period
	// during which global (device) memory was being read or written.
	MemoryUsedPercent uint32 `json:"memory_used_percent"`

	// Supported is true if the utilization rates are supported by the device.
	Supported bool `json:"supported"`
}

func GetUtilization(uuid string, dev nvml.Device) (Utilization, error) {
	util := Utilization{
		UUID:      uuid,
		Supported: true,
	}

	rates, ret := dev.GetUtilizationRates()
	if IsNotSupportError(ret) {
		util.Supported = false
		return util, nil
	}
	if ret != nvml.SUCCESS {
		if IsGPULostError(ret) {
			return util, ErrGPULost
		}
		return util, fmt.Errorf("failed to get device utilization rates: %v", nvml.ErrorString(ret))
	}

	util.GPUUsedPercent = rates.Gpu
	util.MemoryUsedPercent = rates.Memory

	return util, nil
}
