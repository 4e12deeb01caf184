package nvml

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Power represents the data from the nvmlDeviceGetPowerUsage API.
// ref. https://docs.nvidia.com/deploy/nvml-api/group__nvmlDeviceQueries.html#group__nvmlDeviceQueries_1g7ef7dff0ff14238d08a19ad7fb23fc87
type Power struct {
	// Represents the GPU UUID.
	UUID string `json:"uuid"`

	UsageMilliWatts         uint32 `json:"usage_milli_watts"`
	EnforcedLimitMilliWatts uint32 `json:"enforced_limit_milli_watts"`

	UsedPercent string `json:"used_percent"`

	// GetPowerUsageSupported is true if the power usage is supported by the device.
	GetPowerUsageSupported bool `json:"get_power_usage_supported"`

	// GetPowerLimitSupported is true if the power limit is supported by the device.
	GetPowerLimitSupported bool `json:"get_power_limit_supported"`
}

// UsageWatts converts the NVML milliwatt reading to watts.
func (power Power) UsageWatts() float64 {
	return float64(power.UsageMilliWatts) / 1000.0
}

func GetPower(uuid string, dev nvml.Device) (Power, error) {
	power := Power{
		UUID:                   uuid,
		GetPowerUsageSupported: true,
		GetPowerLimitSupported: true,
	}

	powerUsage, ret := dev.GetPowerUsage()
	if IsNotSupportError(ret) {
		power.GetPowerUsageSupported = false
	} else if ret != nvml.SUCCESS { // not a "not supported" error, not a success return, thus return an error here
		if IsGPULostError(ret) {
			return power, ErrGPULost
		}
		return power, fmt.Errorf("failed to get device power usage: %v", nvml.ErrorString(ret))
	} else {
		power.UsageMilliWatts = powerUsage
	}

	// ref. https://docs.nvidia.com/deploy/nvml-api/group__nvmlDeviceQueries.html#group__nvmlDeviceQueries_1g263b5bf552d5ec7fcd29a088264d10ad
	enforcedLimit, ret := dev.GetEnforcedPowerLimit()
	if IsNotSupportError(ret) {
		power.GetPowerLimitSupported = false
	} else if ret != nvml.SUCCESS { // not a "not supported" error, not a success return, thus return an error here
		if IsGPULostError(ret) {
			return power, ErrGPULost
		}
		return power, fmt.Errorf("failed to get device power limit: %v", nvml.ErrorString(ret))
	} else {
		power.EnforcedLimitMilliWatts = enforcedLimit
	}

	if power.EnforcedLimitMilliWatts > 0 {
		power.UsedPercent = fmt.Sprintf("%.2f", float64(power.UsageMilliWatts)/float64(power.EnforcedLimitMilliWatts)*100)
	} else {
		power.UsedPercent = "0.0"
	}

	return power, nil
}
