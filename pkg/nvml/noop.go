package nvml

var _ Instance = &noOpInstance{}

// NewNoOp returns an instance that reports no devices, for hosts
// without the NVML library.
func NewNoOp() Instance {
	return &noOpInstance{}
}

type noOpInstance struct{}

func (inst *noOpInstance) NVMLExists() bool      { return false }
func (inst *noOpInstance) DriverVersion() string { return "" }
func (inst *noOpInstance) CUDAVersion() string   { return "" }
func (inst *noOpInstance) Devices() []Device     { return nil }
func (inst *noOpInstance) Shutdown() error       { return nil }
