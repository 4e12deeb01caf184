// Package nvml connects to the NVIDIA management library to read
// per-device GPU telemetry.
package nvml

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/damionirving/gpumon-aws/pkg/log"
)

var _ Instance = &instance{}

// Instance is the interface for the NVML library connector.
type Instance interface {
	// NVMLExists returns true if the NVML library is installed.
	NVMLExists() bool

	// DriverVersion returns the driver version of the GPU.
	DriverVersion() string

	// CUDAVersion returns the CUDA version of the GPU driver.
	CUDAVersion() string

	// Devices returns the devices in the system in index order.
	Devices() []Device

	// Shutdown shuts down the NVML library.
	Shutdown() error
}

// Device is a cached handle to a single GPU, resolved once at startup.
type Device struct {
	Index int
	UUID  string
	Name  string

	dev nvml.Device
}

// Handle returns the underlying NVML device handle.
func (d Device) Handle() nvml.Device {
	return d.dev
}

// NewDevice wraps an existing NVML device handle.
func NewDevice(index int, uuid string, name string, dev nvml.Device) Device {
	return Device{
		Index: index,
		UUID:  uuid,
		Name:  name,
		dev:   dev,
	}
}

// New creates a new instance of the NVML library.
// If NVML is not installed, it returns a no-op instance so that the
// monitor can still report host metrics.
func New() (Instance, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		if IsNotFoundError(ret) {
			log.Logger.Warnw("nvml library not found, gpu metrics disabled", "error", nvml.ErrorString(ret))
			return NewNoOp(), nil
		}
		return nil, fmt.Errorf("failed to initialize nvml: %v", nvml.ErrorString(ret))
	}

	driverVersion, ret := nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to get driver version: %v", nvml.ErrorString(ret))
	}

	cudaVersion := ""
	if v, ret := nvml.SystemGetCudaDriverVersion(); ret == nvml.SUCCESS {
		cudaVersion = fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to get device count: %v", nvml.ErrorString(ret))
	}

	devices := make([]Device, 0, count)
	for i := 0; i < count; i++ {
		dev, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			// "NVIDIA Xid 79: GPU has fallen off the bus" may fail this
			// syscall with "Unknown Error"
			return nil, fmt.Errorf("failed to get device handle for index %d: %v", i, nvml.ErrorString(ret))
		}

		uuid, ret := dev.GetUUID()
		if ret != nvml.SUCCESS {
			return nil, fmt.Errorf("failed to get device uuid for index %d: %v", i, nvml.ErrorString(ret))
		}

		name := ""
		if n, ret := dev.GetName(); ret == nvml.SUCCESS {
			name = n
		}

		devices = append(devices, Device{
			Index: i,
			UUID:  uuid,
			Name:  name,
			dev:   dev,
		})
	}

	log.Logger.Infow("successfully initialized nvml",
		"driverVersion", driverVersion,
		"cudaVersion", cudaVersion,
		"devices", len(devices),
	)

	return &instance{
		driverVersion: driverVersion,
		cudaVersion:   cudaVersion,
		devices:       devices,
	}, nil
}

type instance struct {
	driverVersion string
	cudaVersion   string
	devices       []Device
}

func (inst *instance) NVMLExists() bool {
	return true
}

func (inst *instance) DriverVersion() string {
	return inst.driverVersion
}

func (inst *instance) CUDAVersion() string {
	return inst.cudaVersion
}

func (inst *instance) Devices() []Device {
	return inst.devices
}

func (inst *instance) Shutdown() error {
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to shutdown nvml: %v", nvml.ErrorString(ret))
	}
	return nil
}
