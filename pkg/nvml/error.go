package nvml

import (
	"errors"
	"strings"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// ErrGPULost is returned when the GPU has fallen off the bus or is
// otherwise inaccessible.
var ErrGPULost = errors.New("gpu lost")

// IsNotSupportError returns true if the error indicates that the operation is not supported.
func IsNotSupportError(ret nvml.Return) bool {
	if ret == nvml.ERROR_NOT_SUPPORTED {
		return true
	}

	e := normalizeNVMLReturnString(ret)
	return strings.Contains(e, "not supported")
}

// IsGPULostError returns true if the error indicates that the GPU is lost.
func IsGPULostError(ret nvml.Return) bool {
	if ret == nvml.ERROR_GPU_IS_LOST {
		return true
	}

	e := normalizeNVMLReturnString(ret)
	return strings.Contains(e, "gpu lost") || strings.Contains(e, "gpu_is_lost")
}

// IsNotFoundError returns true if the error indicates that the library
// itself is not installed on the host.
func IsNotFoundError(ret nvml.Return) bool {
	if ret == nvml.ERROR_LIBRARY_NOT_FOUND || ret == nvml.ERROR_DRIVER_NOT_LOADED {
		return true
	}

	e := normalizeNVMLReturnString(ret)
	return strings.Contains(e, "not found") || strings.Contains(e, "not_found")
}

// normalizeNVMLReturnString normalizes an NVML return to a string.
func normalizeNVMLReturnString(ret nvml.Return) string {
	s := nvml.ErrorString(ret)
	return strings.ToLower(strings.TrimSpace(s))
}
