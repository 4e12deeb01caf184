package nvml

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Temperature represents the data from the nvmlDeviceGetTemperature API.
// ref. https://docs.nvidia.com/deploy/nvml-api/group__nvmlDeviceQueries.html#group__nvmlDeviceQueries_1g92d1c5182a14dd4be7090e3c1480b121
type Temperature struct {
	// Represents the GPU UUID.
	UUID string `json:"uuid"`

	// CurrentCelsius is the current temperature reading for the die.
	CurrentCelsius uint32 `json:"current_celsius"`

	// Supported is true if the temperature sensor is supported by the device.
	Supported bool `json:"supported"`
}

func GetTemperature(uuid string, dev nvml.Device) (Temperature, error) {
	temp := Temperature{
		UUID:      uuid,
		Supported: true,
	}

	cur, ret := dev.GetTemperature(nvml.TEMPERATURE_GPU)
	if IsNotSupportError(ret) {
		temp.Supported = false
		return temp, nil
	}
	if ret != nvml.SUCCESS {
		if IsGPULostError(ret) {
			return temp, ErrGPULost
		}
		return temp, fmt.Errorf("failed to get device temperature: %v", nvml.ErrorString(ret))
	}

	temp.CurrentCelsius = cur

	return temp, nil
}
