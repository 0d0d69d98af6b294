package tensors

import (
	"github.com/gomlx/exceptions"
)

// SparseCsrFromParts returns a SparseCsr tensor of the given dimensions,
// composed of the three CSR backing arrays:
//
//   - crowIndices: the row offsets, last dimension rows+1;
//   - colIndices: the column indices, last dimension nnz;
//   - values: the stored values, last dimension nnz.
//
// The dimensions are [batch..., rows, cols]: for rank > 2 the leading axes
// are a batch, and each backing array carries the same batch axes ahead of
// its own last dimension. The tensor's DType is the values' DType; the two
// index arrays must share a single (integer) DType -- the width restriction
// to 32- or 64-bit indices is enforced downstream, where the indices are
// consumed.
//
// The backing arrays are aliased, not copied.
func SparseCsrFromParts(crowIndices, colIndices, values *Tensor, dimensions ...int) *Tensor {
	if crowIndices == nil || colIndices == nil || values == nil {
		exceptions.Panicf("tensors.SparseCsrFromParts: nil backing tensor given")
	}
	if len(dimensions) < 2 {
		exceptions.Panicf("tensors.SparseCsrFromParts: CSR tensors require rank >= 2, got dimensions %v", dimensions)
	}
	for _, part := range []*Tensor{crowIndices, colIndices, values} {
		if part.layout != Strided {
			exceptions.Panicf("tensors.SparseCsrFromParts: backing tensor %s must be Strided", part)
		}
	}
	if crowIndices.DType() != colIndices.DType() {
		exceptions.Panicf("tensors.SparseCsrFromParts: crowIndices dtype %s != colIndices dtype %s",
			crowIndices.DType(), colIndices.DType())
	}

	batchDims := dimensions[:len(dimensions)-2]
	rows := dimensions[len(dimensions)-2]
	nnz := values.Dim(-1)
	checkPartDims := func(name string, part *Tensor, lastDim int) {
		if part.Rank() != len(batchDims)+1 {
			exceptions.Panicf("tensors.SparseCsrFromParts: %s has rank %d, want %d (batch axes %v plus one)",
				name, part.Rank(), len(batchDims)+1, batchDims)
		}
		for axis, dim := range batchDims {
			if part.Dim(axis) != dim {
				exceptions.Panicf("tensors.SparseCsrFromParts: %s batch axis %d has dimension %d, want %d",
					name, axis, part.Dim(axis), dim)
			}
		}
		if part.Dim(-1) != lastDim {
			exceptions.Panicf("tensors.SparseCsrFromParts: %s last dimension is %d, want %d",
				name, part.Dim(-1), lastDim)
		}
	}
	checkPartDims("crowIndices", crowIndices, rows+1)
	checkPartDims("colIndices", colIndices, nnz)
	checkPartDims("values", values, nnz)

	shape := values.Shape().Clone()
	shape.Dimensions = append([]int{}, dimensions...)
	return &Tensor{
		shape:       shape,
		layout:      SparseCsr,
		crowIndices: crowIndices,
		colIndices:  colIndices,
		values:      values,
	}
}

// IsSparseCsr reports whether the tensor has the SparseCsr layout.
func (t *Tensor) IsSparseCsr() bool { return t.layout == SparseCsr }

// CrowIndices returns the CSR row-offsets array. It panics for non-CSR tensors.
func (t *Tensor) CrowIndices() *Tensor {
	t.assertSparseCsr("CrowIndices")
	return t.crowIndices
}

// ColIndices returns the CSR column-indices array. It panics for non-CSR tensors.
func (t *Tensor) ColIndices() *Tensor {
	t.assertSparseCsr("ColIndices")
	return t.colIndices
}

// Values returns the CSR stored-values array. It panics for non-CSR tensors.
func (t *Tensor) Values() *Tensor {
	t.assertSparseCsr("Values")
	return t.values
}

// Nnz is the number of stored (nonzero) values per batch item. It panics for
// non-CSR tensors.
func (t *Tensor) Nnz() int {
	t.assertSparseCsr("Nnz")
	return t.values.Dim(-1)
}

func (t *Tensor) assertSparseCsr(op string) {
	if t.layout != SparseCsr {
		exceptions.Panicf("Tensor.%s is only defined for SparseCsr layout (shape=%s, layout=%s)", op, t.shape, t.layout)
	}
}
