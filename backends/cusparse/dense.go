package cusparse

import (
	"github.com/gomlx/exceptions"
	"github.com/mpalrocks/pytorch/types/tensors"
)

// DnMatDescriptor describes a dense (strided) matrix for consumption by
// sparse routines.
type DnMatDescriptor struct {
	Descriptor
}

// NewDnMatDescriptor creates a dense-matrix descriptor from a strided tensor
// of rank >= 2 that is either row-major or column-major BLAS compatible.
// The leading dimension is taken from the non-unit stride. For rank > 2 the
// leading axes are attached as a strided batch.
//
// The descriptor stores the raw address of the tensor's storage: the tensor
// must outlive the descriptor.
func NewDnMatDescriptor(lib Library, input *tensors.Tensor) (*DnMatDescriptor, error) {
	if input.Layout() != tensors.Strided {
		exceptions.Panicf("cusparse: dense-matrix descriptor requires a Strided tensor, got %s", input)
	}
	ndim := input.Rank()
	if ndim < 2 {
		exceptions.Panicf("cusparse: dense-matrix descriptor requires rank >= 2, got shape %s", input.Shape())
	}
	rows := int64(input.Dim(-2))
	cols := int64(input.Dim(-1))

	isColumnMajor := input.IsColumnMajorOrder()
	isRowMajor := input.IsRowMajorOrder()
	if !isColumnMajor && !isRowMajor {
		exceptions.Panicf("cusparse: expected either row or column major contiguous input, got shape %s with strides %v",
			input.Shape(), input.Strides())
	}
	var leadingDimension int64
	var order Order
	if isRowMajor {
		leadingDimension = int64(input.Stride(-2))
		order = OrderRow
	} else {
		leadingDimension = int64(input.Stride(-1))
		order = OrderCol
	}

	valueType := input.DType()
	if err := checkSupportedDType(lib, valueType); err != nil {
		return nil, err
	}

	raw, status := lib.CreateDnMat(rows, cols, leadingDimension, input.DataPointer(), valueType, order)
	if err := checkStatus(status, "cusparseCreateDnMat"); err != nil {
		return nil, err
	}
	d := &DnMatDescriptor{newDescriptor("DnMat", raw, lib.DestroyDnMat)}

	if ndim > 2 {
		batchCount := input.BatchCount()
		batchStride := int64(input.Stride(-3))
		if status := lib.DnMatSetStridedBatch(raw, batchCount, batchStride); !status.Ok() {
			d.Free()
			return nil, checkStatus(status, "cusparseDnMatSetStridedBatch")
		}
	}
	return d, nil
}

// DnVecDescriptor describes a dense contiguous vector for consumption by
// sparse routines.
type DnVecDescriptor struct {
	Descriptor
}

// NewDnVecDescriptor creates a dense-vector descriptor from a fully
// contiguous tensor of rank 1, or rank 2 with a trailing unit dimension.
// Batched vectors are not supported by the native library.
//
// The descriptor stores the raw address of the tensor's storage: the tensor
// must outlive the descriptor.
func NewDnVecDescriptor(lib Library, input *tensors.Tensor) (*DnVecDescriptor, error) {
	if input.Layout() != tensors.Strided {
		exceptions.Panicf("cusparse: dense-vector descriptor requires a Strided tensor, got %s", input)
	}
	if !(input.Rank() == 1 || (input.Rank() == 2 && input.Dim(-1) == 1)) {
		exceptions.Panicf("cusparse: dense-vector descriptor requires rank 1 (or rank 2 with trailing unit dimension), got shape %s",
			input.Shape())
	}
	if !input.IsContiguous() {
		exceptions.Panicf("cusparse: dense-vector descriptor requires a contiguous tensor, got shape %s with strides %v",
			input.Shape(), input.Strides())
	}

	valueType := input.DType()
	if err := checkSupportedDType(lib, valueType); err != nil {
		return nil, err
	}

	raw, status := lib.CreateDnVec(int64(input.Size()), input.DataPointer(), valueType)
	if err := checkStatus(status, "cusparseCreateDnVec"); err != nil {
		return nil, err
	}
	return &DnVecDescriptor{newDescriptor("DnVec", raw, lib.DestroyDnVec)}, nil
}
