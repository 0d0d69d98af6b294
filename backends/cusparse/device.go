package cusparse

import (
	"fmt"

	"github.com/google/uuid"
)

// DeviceProperties describes the active GPU, the subset of the C device
// properties struct the descriptor layer cares about.
type DeviceProperties struct {
	// Name of the device, e.g. "NVIDIA A100".
	Name string

	// UUID of the device.
	UUID uuid.UUID

	// Major and Minor compute-capability numbers.
	Major, Minor int

	// TotalGlobalMem is the device memory in bytes.
	TotalGlobalMem uint64
}

// ComputeCapability returns the capability pair formatted the usual way, e.g. "8.0".
func (p DeviceProperties) ComputeCapability() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

// atLeastComputeCapability reports whether the device's compute capability is
// >= major.minor. Minor versions are single digits, so the usual 10*major+minor
// comparison applies.
func (p DeviceProperties) atLeastComputeCapability(major, minor int) bool {
	return 10*p.Major+p.Minor >= 10*major+minor
}
