package tensors

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/mpalrocks/pytorch/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrides(t *testing.T) {
	require.Equal(t, []int{1467, 1}, RowMajorStrides(10, 1467))
	require.Equal(t, []int{1, 10}, ColumnMajorStrides(10, 1467))
	require.Equal(t, []int{12, 4, 1}, RowMajorStrides(2, 3, 4))
	require.Empty(t, RowMajorStrides())
}

func TestFromShape(t *testing.T) {
	tensor := FromShape(shapes.Make(dtypes.Float32, 10, 1467))
	require.Equal(t, Strided, tensor.Layout())
	require.Equal(t, 2, tensor.Rank())
	require.Equal(t, []int{1467, 1}, tensor.Strides())
	require.Equal(t, 10*1467, tensor.Size())
	require.True(t, tensor.IsContiguous())
	require.NotNil(t, tensor.DataPointer())
	require.Len(t, FlatData[float32](tensor), 10*1467)

	require.Panics(t, func() { FromShape(shapes.Invalid()) })
	require.Panics(t, func() { FlatData[float64](tensor) })
}

func TestFromFlatDataAndStrides(t *testing.T) {
	data := make([]float32, 6)
	for i := range data {
		data[i] = float32(i)
	}

	rowMajor := FromFlatDataAndDimensions(data, 2, 3)
	require.True(t, rowMajor.IsContiguous())
	require.True(t, rowMajor.IsRowMajorOrder())
	require.False(t, rowMajor.IsColumnMajorOrder())
	require.Equal(t, 3, rowMajor.Stride(0))
	require.Equal(t, 1, rowMajor.Stride(-1))

	colMajor := FromFlatDataAndStrides(data, []int{2, 3}, ColumnMajorStrides(2, 3))
	require.False(t, colMajor.IsContiguous())
	require.True(t, colMajor.IsColumnMajorOrder())
	require.False(t, colMajor.IsRowMajorOrder())

	// Both are views over the same flat buffer.
	require.Equal(t, rowMajor.DataPointer(), colMajor.DataPointer())
	FlatData[float32](rowMajor)[0] = 42
	require.Equal(t, float32(42), FlatData[float32](colMajor)[0])

	// Strides that address beyond the flat data are rejected.
	require.Panics(t, func() { FromFlatDataAndStrides(data, []int{2, 3}, []int{4, 1}) })
	require.Panics(t, func() { FromFlatDataAndStrides(data, []int{2, 3}, []int{3}) })
	require.Panics(t, func() { FromFlatDataAndStrides(data, []int{2, 3}, []int{-3, 1}) })
}

func TestOrderChecks(t *testing.T) {
	// A tensor sliced out of a larger buffer: neither row- nor column-major.
	data := make([]float32, 100)
	neither := FromFlatDataAndStrides(data, []int{3, 3}, []int{10, 2})
	require.False(t, neither.IsRowMajorOrder())
	require.False(t, neither.IsColumnMajorOrder())

	// Row-major with padding between rows is still BLAS compatible.
	padded := FromFlatDataAndStrides(data, []int{3, 3}, []int{10, 1})
	require.True(t, padded.IsRowMajorOrder())
	require.False(t, padded.IsContiguous())

	vector := FromFlatDataAndDimensions(data, 100)
	require.Panics(t, func() { vector.IsRowMajorOrder() })
}

func TestBatchCount(t *testing.T) {
	assert.Equal(t, 1, FromShape(shapes.Make(dtypes.Float32, 7)).BatchCount())
	assert.Equal(t, 1, FromShape(shapes.Make(dtypes.Float32, 10, 20)).BatchCount())
	assert.Equal(t, 5, FromShape(shapes.Make(dtypes.Float32, 5, 10, 20)).BatchCount())
	assert.Equal(t, 6, FromShape(shapes.Make(dtypes.Float32, 2, 3, 10, 20)).BatchCount())
}

func TestBatchedStridedView(t *testing.T) {
	// Rank-3 batch: batch stride is the outermost-but-one axis stride.
	tensor := FromShape(shapes.Make(dtypes.Float32, 4, 10, 20))
	require.Equal(t, 4, tensor.BatchCount())
	require.Equal(t, 200, tensor.Stride(-3))
}

func TestSparseCsrFromParts(t *testing.T) {
	crow := FromFlatDataAndDimensions([]int32{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20}, 11)
	col := FromFlatDataAndDimensions(make([]int32, 20), 20)
	values := FromFlatDataAndDimensions(make([]float32, 20), 20)

	csr := SparseCsrFromParts(crow, col, values, 10, 20)
	require.True(t, csr.IsSparseCsr())
	require.Equal(t, SparseCsr, csr.Layout())
	require.Equal(t, dtypes.Float32, csr.DType())
	require.Equal(t, 2, csr.Rank())
	require.Equal(t, 10, csr.Dim(-2))
	require.Equal(t, 20, csr.Dim(-1))
	require.Equal(t, 20, csr.Nnz())
	require.Same(t, crow, csr.CrowIndices())
	require.Same(t, col, csr.ColIndices())
	require.Same(t, values, csr.Values())

	// Strided-only accessors are not defined for CSR.
	require.Panics(t, func() { csr.Strides() })
	require.Panics(t, func() { csr.DataPointer() })
	require.Panics(t, func() { csr.IsContiguous() })

	// Sparse accessors are not defined for strided tensors.
	require.Panics(t, func() { values.Nnz() })
	require.Panics(t, func() { values.CrowIndices() })
}

func TestSparseCsrFromPartsValidation(t *testing.T) {
	crow := FromFlatDataAndDimensions(make([]int32, 11), 11)
	col := FromFlatDataAndDimensions(make([]int32, 20), 20)
	col64 := FromFlatDataAndDimensions(make([]int64, 20), 20)
	values := FromFlatDataAndDimensions(make([]float32, 20), 20)

	require.Panics(t, func() { SparseCsrFromParts(nil, col, values, 10, 20) })
	require.Panics(t, func() { SparseCsrFromParts(crow, col, values, 20) })
	require.Panics(t, func() { SparseCsrFromParts(crow, col64, values, 10, 20) })
	// crowIndices must have rows+1 entries.
	require.Panics(t, func() { SparseCsrFromParts(crow, col, values, 12, 20) })
}

func TestBatchedSparseCsr(t *testing.T) {
	const batch, rows, cols, nnz = 3, 4, 5, 6
	crow := FromFlatDataAndDimensions(make([]int32, batch*(rows+1)), batch, rows+1)
	col := FromFlatDataAndDimensions(make([]int32, batch*nnz), batch, nnz)
	values := FromFlatDataAndDimensions(make([]float32, batch*nnz), batch, nnz)

	csr := SparseCsrFromParts(crow, col, values, batch, rows, cols)
	require.Equal(t, 3, csr.Rank())
	require.Equal(t, batch, csr.BatchCount())
	require.Equal(t, nnz, csr.Nnz())
	require.Equal(t, rows+1, csr.CrowIndices().Stride(-2))
	require.Equal(t, nnz, csr.Values().Stride(-2))

	// Batch axes of the parts must agree with the parent.
	badValues := FromFlatDataAndDimensions(make([]float32, 2*nnz), 2, nnz)
	require.Panics(t, func() { SparseCsrFromParts(crow, col, badValues, batch, rows, cols) })
}
