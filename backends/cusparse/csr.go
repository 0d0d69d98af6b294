package cusparse

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/mpalrocks/pytorch/types/tensors"
	"github.com/pkg/errors"
)

// IndexTypeFor maps the row-offsets element type to the native index-type
// tag. Exactly two integer widths are supported; anything else is a bug in
// upstream validation and panics.
func IndexTypeFor(dtype dtypes.DType) IndexType {
	switch dtype {
	case dtypes.Int32:
		return Index32I
	case dtypes.Int64:
		return Index64I
	}
	exceptions.Panicf("cusparse: cannot convert type %s to an index type", dtype)
	return 0
}

// SpMatCsrDescriptor describes a compressed-sparse-row matrix, optionally
// batched. Unlike the dense descriptors it keeps a reference to its Library,
// needed by the post-construction mutations and the size query.
type SpMatCsrDescriptor struct {
	Descriptor
	lib Library
}

// NewSpMatCsrDescriptor creates a CSR sparse-matrix descriptor from a
// SparseCsr tensor of rank >= 2 whose three backing arrays are contiguous.
// Indexing is always zero-based. For rank > 2 the batch counts of the parent
// and all three backing arrays must agree, and the row-offsets and values
// per-batch strides are attached as a strided batch (the column-indices batch
// stride is implied).
//
// The descriptor stores the raw addresses of the backing arrays: the tensor
// must outlive the descriptor (or be rebound first, see SetTensor).
func NewSpMatCsrDescriptor(lib Library, input *tensors.Tensor) (*SpMatCsrDescriptor, error) {
	if !input.IsSparseCsr() {
		exceptions.Panicf("cusparse: CSR descriptor requires a SparseCsr tensor, got %s", input)
	}
	ndim := input.Rank()
	if ndim < 2 {
		exceptions.Panicf("cusparse: CSR descriptor requires rank >= 2, got shape %s", input.Shape())
	}
	rows := int64(input.Dim(-2))
	cols := int64(input.Dim(-1))
	nnz := int64(input.Nnz())

	crowIndices := input.CrowIndices()
	colIndices := input.ColIndices()
	values := input.Values()
	assertCsrPartsContiguous(crowIndices, colIndices, values)

	indexType := IndexTypeFor(crowIndices.DType())
	valueType := input.DType()
	if err := checkSupportedDType(lib, valueType); err != nil {
		return nil, err
	}

	raw, status := lib.CreateCsr(
		rows, cols, nnz,
		crowIndices.DataPointer(), // row offsets of the sparse matrix, size = rows + 1
		colIndices.DataPointer(),  // column indices of the sparse matrix, size = nnz
		values.DataPointer(),      // values of the sparse matrix, size = nnz
		indexType, valueType, IndexBaseZero)
	if err := checkStatus(status, "cusparseCreateCsr"); err != nil {
		return nil, err
	}
	d := &SpMatCsrDescriptor{Descriptor: newDescriptor("SpMatCsr", raw, lib.DestroySpMat), lib: lib}

	if ndim > 2 {
		if !lib.Capabilities().StridedBatch {
			d.Free()
			return nil, errors.Errorf("cusparse: batched CSR descriptors require CUDA >= 11.0, library version is %s", lib.Version())
		}
		batchCount := input.BatchCount()
		for _, part := range []*tensors.Tensor{crowIndices, colIndices, values} {
			if partBatch := part.Size() / part.Dim(-1); partBatch != batchCount {
				exceptions.Panicf("cusparse: CSR backing array %s has batch count %d, parent %s has %d",
					part, partBatch, input.Shape(), batchCount)
			}
		}
		crowIndicesBatchStride := int64(crowIndices.Stride(-2))
		valuesBatchStride := int64(values.Stride(-2))
		if status := lib.CsrSetStridedBatch(raw, batchCount, crowIndicesBatchStride, valuesBatchStride); !status.Ok() {
			d.Free()
			return nil, checkStatus(status, "cusparseCsrSetStridedBatch")
		}
	}
	return d, nil
}

// GetSize returns the current (rows, cols, nnz) triple, asking the native
// library directly rather than any cached value, so it reflects prior
// mutations of the descriptor.
func (d *SpMatCsrDescriptor) GetSize() (rows, cols, nnz int64, err error) {
	rows, cols, nnz, status := d.lib.SpMatGetSize(d.Raw())
	err = checkStatus(status, "cusparseSpMatGetSize")
	return
}

// SetTensor replaces the three backing pointers of the descriptor in place,
// for reuse across calls with different underlying buffers of identical
// shape. The matrix topology (rows, cols, nnz) is not altered.
func (d *SpMatCsrDescriptor) SetTensor(input *tensors.Tensor) error {
	if !input.IsSparseCsr() {
		exceptions.Panicf("cusparse: SetTensor requires a SparseCsr tensor, got %s", input)
	}
	crowIndices := input.CrowIndices()
	colIndices := input.ColIndices()
	values := input.Values()
	assertCsrPartsContiguous(crowIndices, colIndices, values)
	status := d.lib.CsrSetPointers(d.Raw(), crowIndices.DataPointer(), colIndices.DataPointer(), values.DataPointer())
	return checkStatus(status, "cusparseCsrSetPointers")
}

// SetFillMode declares which triangle of the matrix is stored, for
// triangular-solve routines.
func (d *SpMatCsrDescriptor) SetFillMode(upper bool) error {
	if !d.lib.Capabilities().TriangularSolve {
		return errors.Errorf("cusparse: sparse-matrix fill-mode attribute requires CUDA >= 11.3, library version is %s", d.lib.Version())
	}
	fillMode := FillModeLower
	if upper {
		fillMode = FillModeUpper
	}
	status := d.lib.SpMatSetAttribute(d.Raw(), SpMatFillMode, int32(fillMode))
	return checkStatus(status, "cusparseSpMatSetAttribute(FILL_MODE)")
}

// SetDiagType declares whether the matrix diagonal is implicit ones, for
// triangular-solve routines.
func (d *SpMatCsrDescriptor) SetDiagType(unit bool) error {
	if !d.lib.Capabilities().TriangularSolve {
		return errors.Errorf("cusparse: sparse-matrix diag-type attribute requires CUDA >= 11.3, library version is %s", d.lib.Version())
	}
	diagType := DiagTypeNonUnit
	if unit {
		diagType = DiagTypeUnit
	}
	status := d.lib.SpMatSetAttribute(d.Raw(), SpMatDiagType, int32(diagType))
	return checkStatus(status, "cusparseSpMatSetAttribute(DIAG_TYPE)")
}

func assertCsrPartsContiguous(crowIndices, colIndices, values *tensors.Tensor) {
	for name, part := range map[string]*tensors.Tensor{
		"crowIndices": crowIndices,
		"colIndices":  colIndices,
		"values":      values,
	} {
		if !part.IsContiguous() {
			exceptions.Panicf("cusparse: CSR backing array %s must be contiguous, got shape %s with strides %v",
				name, part.Shape(), part.Strides())
		}
	}
}
