package cusparse

import "fmt"

// Status is the raw result code of a native library call, mirroring the
// cusparseStatus_t enum values of the C API.
type Status int32

const (
	StatusSuccess                Status = 0
	StatusNotInitialized         Status = 1
	StatusAllocFailed            Status = 2
	StatusInvalidValue           Status = 3
	StatusArchMismatch           Status = 4
	StatusMappingError           Status = 5
	StatusExecutionFailed        Status = 6
	StatusInternalError          Status = 7
	StatusMatrixTypeNotSupported Status = 8
	StatusZeroPivot              Status = 9
	StatusNotSupported           Status = 10
	StatusInsufficientResources  Status = 11
)

// Ok reports whether the status is StatusSuccess.
func (s Status) Ok() bool { return s == StatusSuccess }

// statusNames are the canonical diagnostic strings of the C API
// (cusparseGetErrorString), kept verbatim so errors carry the library's own
// vocabulary.
var statusNames = map[Status]string{
	StatusSuccess:                "CUSPARSE_STATUS_SUCCESS",
	StatusNotInitialized:         "CUSPARSE_STATUS_NOT_INITIALIZED",
	StatusAllocFailed:            "CUSPARSE_STATUS_ALLOC_FAILED",
	StatusInvalidValue:           "CUSPARSE_STATUS_INVALID_VALUE",
	StatusArchMismatch:           "CUSPARSE_STATUS_ARCH_MISMATCH",
	StatusMappingError:           "CUSPARSE_STATUS_MAPPING_ERROR",
	StatusExecutionFailed:        "CUSPARSE_STATUS_EXECUTION_FAILED",
	StatusInternalError:          "CUSPARSE_STATUS_INTERNAL_ERROR",
	StatusMatrixTypeNotSupported: "CUSPARSE_STATUS_MATRIX_TYPE_NOT_SUPPORTED",
	StatusZeroPivot:              "CUSPARSE_STATUS_ZERO_PIVOT",
	StatusNotSupported:           "CUSPARSE_STATUS_NOT_SUPPORTED",
	StatusInsufficientResources:  "CUSPARSE_STATUS_INSUFFICIENT_RESOURCES",
}

// String implements fmt.Stringer, returning the canonical C API status name.
func (s Status) String() string {
	if name, found := statusNames[s]; found {
		return name
	}
	return fmt.Sprintf("cusparseStatus_t(%d)", int32(s))
}
