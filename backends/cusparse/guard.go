package cusparse

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// checkSupportedDType verifies the active device supports the element type in
// sparse routines. If a specific GPU model does not provide native support
// for a data type, the native routines fail with
// CUSPARSE_STATUS_ARCH_MISMATCH; this check turns that into a descriptive,
// recoverable error before any handle is created.
//
// Only the two reduced-precision types are restricted; every other element
// type skips the check. The bfloat16 restriction only exists on libraries
// that know the type at all (CUDA >= 11).
func checkSupportedDType(lib Library, dtype dtypes.DType) error {
	switch dtype {
	case dtypes.Float16:
		prop := lib.DeviceProperties()
		if !(prop.Major >= 5 && prop.atLeastComputeCapability(5, 3)) {
			return errors.Errorf(
				"sparse operations with CUDA tensors of Float16 type are not supported on GPUs with compute capability < 5.3 (current: %d.%d)",
				prop.Major, prop.Minor)
		}
	case dtypes.BFloat16:
		if !lib.Version().AtLeast(11, 0, 0) {
			return nil
		}
		prop := lib.DeviceProperties()
		if prop.Major < 8 {
			return errors.Errorf(
				"sparse operations with CUDA tensors of BFloat16 type are not supported on GPUs with compute capability < 8.0 (current: %d.%d)",
				prop.Major, prop.Minor)
		}
	}
	return nil
}
