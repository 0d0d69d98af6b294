// Package tensors implements a host-resident Tensor: a multidimensional array
// with explicit per-axis strides and a layout tag.
//
// Two layouts are supported:
//
//   - Strided: the usual dense layout, a flat slice of the underlying DType
//     indexed through per-axis strides. Row-major ("C order") strides are the
//     default, but arbitrary strides can be given to express column-major or
//     batched views over a shared buffer.
//   - SparseCsr: compressed-sparse-row, composed of three strided sub-tensors
//     (row offsets, column indices and values). See csr.go.
//
// Tensors here are measurement and descriptor substrate: they are consumed by
// the cusparse descriptor wrappers (see backends/cusparse), which store raw
// addresses into the tensor's flat storage. A tensor must therefore outlive
// any descriptor built from it.
package tensors

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/mpalrocks/pytorch/types/shapes"
)

// Layout is the memory layout tag of a Tensor.
type Layout int

const (
	// Strided is the dense layout: flat storage addressed through per-axis strides.
	Strided Layout = iota

	// SparseCsr is the compressed-sparse-row layout.
	SparseCsr
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case Strided:
		return "Strided"
	case SparseCsr:
		return "SparseCsr"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Tensor is a multidimensional array with a shape, explicit strides and a
// layout tag. It is always stored as a flat (1D) Go slice of the DType's Go
// type.
//
// Tensors do not own device memory nor synchronize access to their storage:
// callers sharing a tensor across goroutines must serialize mutation
// themselves.
type Tensor struct {
	shape   shapes.Shape
	strides []int
	layout  Layout

	// flat is a slice of the underlying data type (shape.DType).
	// It is nil for SparseCsr tensors, whose storage lives in the three
	// backing sub-tensors.
	flat any

	// SparseCsr backing arrays. See SparseCsrFromParts.
	crowIndices *Tensor
	colIndices  *Tensor
	values      *Tensor
}

// RowMajorStrides returns the contiguous row-major ("C order") strides for the
// given dimensions.
func RowMajorStrides(dimensions ...int) []int {
	strides := make([]int, len(dimensions))
	stride := 1
	for axis := len(dimensions) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= dimensions[axis]
	}
	return strides
}

// ColumnMajorStrides returns the contiguous column-major ("Fortran order")
// strides for the given dimensions.
func ColumnMajorStrides(dimensions ...int) []int {
	strides := make([]int, len(dimensions))
	stride := 1
	for axis := 0; axis < len(dimensions); axis++ {
		strides[axis] = stride
		stride *= dimensions[axis]
	}
	return strides
}

// FromShape returns a Strided tensor of the given shape, with zero-initialized
// storage and row-major strides.
func FromShape(shape shapes.Shape) *Tensor {
	if !shape.Ok() {
		exceptions.Panicf("tensors.FromShape: invalid shape %s", shape)
	}
	size := shape.Size()
	flat := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), size, size).Interface()
	return &Tensor{
		shape:   shape,
		strides: RowMajorStrides(shape.Dimensions...),
		layout:  Strided,
		flat:    flat,
	}
}

// FromFlatDataAndDimensions returns a Strided tensor with the given dimensions
// and row-major strides, backed by the given flat data.
//
// The data is not copied: the tensor aliases it.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Tensor {
	return FromFlatDataAndStrides(data, dimensions, RowMajorStrides(dimensions...))
}

// FromFlatDataAndStrides returns a Strided tensor with the given dimensions
// and explicit per-axis strides, backed by the given flat data.
//
// The data is not copied: the tensor aliases it, and multiple tensors may view
// the same flat slice (e.g. a column-major view, or per-batch views). Element
// overlap between strided positions is not checked.
func FromFlatDataAndStrides[T dtypes.Supported](data []T, dimensions, strides []int) *Tensor {
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dimensions...)
	if len(strides) != len(dimensions) {
		exceptions.Panicf("tensors.FromFlatDataAndStrides: %d strides given for %d dimensions", len(strides), len(dimensions))
	}
	// The largest addressable flat offset must fit in the data.
	span := 0
	for axis, dim := range dimensions {
		if strides[axis] < 0 {
			exceptions.Panicf("tensors.FromFlatDataAndStrides: negative stride %d for axis %d", strides[axis], axis)
		}
		span += (dim - 1) * strides[axis]
	}
	if shape.Size() > 0 && span >= len(data) {
		exceptions.Panicf("tensors.FromFlatDataAndStrides: strides %v with dimensions %v address offset %d, but only %d elements given",
			strides, dimensions, span, len(data))
	}
	return &Tensor{
		shape:   shape,
		strides: slices.Clone(strides),
		layout:  Strided,
		flat:    data,
	}
}

// Shape of the tensor. It implements shapes.HasShape.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType of the tensor's elements.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Layout of the tensor: Strided or SparseCsr.
func (t *Tensor) Layout() Layout { return t.layout }

// Rank of the tensor.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// Dim returns the dimension of the given axis. Negative axes count from the
// end, so Dim(-1) is the last axis.
func (t *Tensor) Dim(axis int) int { return t.shape.Dim(axis) }

// Size is the number of elements addressed by the shape, the product of all
// dimensions. For SparseCsr it is the logical (dense) element count, not the
// number of stored values -- see Nnz.
func (t *Tensor) Size() int { return t.shape.Size() }

// Stride returns the stride of the given axis. Negative axes count from the
// end, so Stride(-1) is the stride of the last axis.
//
// Strides are only defined for Strided tensors; it panics for SparseCsr.
func (t *Tensor) Stride(axis int) int {
	t.assertStrided("Stride")
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += t.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= t.Rank() {
		exceptions.Panicf("Tensor.Stride(%d) out-of-bounds for rank %d (shape=%s)", axis, t.Rank(), t.shape)
	}
	return t.strides[adjustedAxis]
}

// Strides returns a copy of the per-axis strides. It panics for SparseCsr.
func (t *Tensor) Strides() []int {
	t.assertStrided("Strides")
	return slices.Clone(t.strides)
}

// IsContiguous reports whether the tensor is row-major contiguous: the last
// axis has stride 1 and every other axis stride is the product of the
// dimensions after it. Axes of dimension 1 are ignored. It panics for
// SparseCsr.
func (t *Tensor) IsContiguous() bool {
	t.assertStrided("IsContiguous")
	expected := 1
	for axis := t.Rank() - 1; axis >= 0; axis-- {
		dim := t.shape.Dimensions[axis]
		if dim != 1 && t.strides[axis] != expected {
			return false
		}
		expected *= dim
	}
	return true
}

// IsRowMajorOrder reports whether the tensor's trailing two axes form a
// BLAS-compatible row-major matrix: the last axis has stride 1 and the
// second-to-last axis stride covers at least one full row. Requires rank >= 2.
func (t *Tensor) IsRowMajorOrder() bool {
	t.assertStrided("IsRowMajorOrder")
	if t.Rank() < 2 {
		exceptions.Panicf("Tensor.IsRowMajorOrder requires rank >= 2, got shape %s", t.shape)
	}
	cols := t.Dim(-1)
	return t.Stride(-1) == 1 && t.Stride(-2) >= max(1, cols)
}

// IsColumnMajorOrder reports whether the tensor's trailing two axes form a
// BLAS-compatible column-major matrix: the second-to-last axis has stride 1
// and the last axis stride covers at least one full column. Requires rank >= 2.
func (t *Tensor) IsColumnMajorOrder() bool {
	t.assertStrided("IsColumnMajorOrder")
	if t.Rank() < 2 {
		exceptions.Panicf("Tensor.IsColumnMajorOrder requires rank >= 2, got shape %s", t.shape)
	}
	rows := t.Dim(-2)
	return t.Stride(-2) == 1 && t.Stride(-1) >= max(1, rows)
}

// BatchCount treats all leading axes but the trailing two as a batch and
// returns their dimension product. It is 1 for rank <= 2.
func (t *Tensor) BatchCount() int {
	count := 1
	for axis := 0; axis < t.Rank()-2; axis++ {
		count *= t.shape.Dimensions[axis]
	}
	return count
}

// DataPointer returns the raw address of the tensor's flat storage, or nil
// for an empty tensor.
//
// The address is only valid while the tensor (and the flat data it aliases)
// is alive: holders of the pointer -- descriptors in particular -- must not
// outlive the tensor. It panics for SparseCsr, whose storage lives in the
// backing sub-tensors.
func (t *Tensor) DataPointer() unsafe.Pointer {
	t.assertStrided("DataPointer")
	flatV := reflect.ValueOf(t.flat)
	if flatV.Len() == 0 {
		return nil
	}
	return unsafe.Pointer(flatV.Pointer())
}

// FlatData returns the flat storage slice of a Strided tensor.
//
// The returned slice aliases the tensor's storage: mutations are visible to
// every view of the same buffer.
func FlatData[T dtypes.Supported](t *Tensor) []T {
	t.assertStrided("FlatData")
	flat, ok := t.flat.([]T)
	if !ok {
		exceptions.Panicf("tensors.FlatData[%T] is incompatible with Tensor's dtype %s", flat, t.DType())
	}
	return flat
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	if t.layout == SparseCsr {
		return fmt.Sprintf("%s (SparseCsr, nnz=%d)", t.shape, t.Nnz())
	}
	return t.shape.String()
}

func (t *Tensor) assertStrided(op string) {
	if t.layout != Strided {
		exceptions.Panicf("Tensor.%s is not defined for %s layout (shape=%s)", op, t.layout, t.shape)
	}
}
