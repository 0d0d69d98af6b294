package ops

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/mpalrocks/pytorch/types/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// signedLog1pInput builds a rows x cols tensor mixing positive, negative and
// zero values.
func signedLog1pInput(rows, cols int) *tensors.Tensor {
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = float32(i%101-50) * 0.37
	}
	return tensors.FromFlatDataAndDimensions(data, rows, cols)
}

func TestSignedLog1p(t *testing.T) {
	input := signedLog1pInput(3, 4)
	got := tensors.FlatData[float32](SignedLog1p[float32](input))
	for i, x := range tensors.FlatData[float32](input) {
		want := math.Copysign(math.Log1p(math.Abs(float64(x))), float64(x))
		assert.InDelta(t, want, float64(got[i]), 1e-6, "element %d, input %v", i, x)
	}
}

func TestSignedLog1pFusedMatchesEager(t *testing.T) {
	input := signedLog1pInput(10, 1467)
	eager := tensors.FlatData[float32](SignedLog1p[float32](input))
	fused := tensors.FlatData[float32](SignedLog1pFused[float32](input))
	require.Len(t, fused, len(eager))

	// The fused kernel runs the exact same per-element arithmetic, so this is
	// equality, not allclose.
	for i := range eager {
		if eager[i] != fused[i] {
			t.Fatalf("element %d: eager=%v fused=%v", i, eager[i], fused[i])
		}
	}
}

func TestSignedLog1pFloat64(t *testing.T) {
	data := []float64{-2.5, -1, -0.25, 0, 0.25, 1, 2.5}
	input := tensors.FromFlatDataAndDimensions(data, len(data))
	eager := tensors.FlatData[float64](SignedLog1p[float64](input))
	fused := tensors.FlatData[float64](SignedLog1pFused[float64](input))
	for i, x := range data {
		want := math.Copysign(math.Log1p(math.Abs(x)), x)
		assert.Equal(t, want, eager[i], "eager element %d, input %v", i, x)
		assert.Equal(t, want, fused[i], "fused element %d, input %v", i, x)
	}
}

func TestSignedLog1pEdgeValues(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	input := tensors.FromFlatDataAndDimensions(
		[]float32{0, negZero, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))}, 5)
	got := tensors.FlatData[float32](SignedLog1pFused[float32](input))
	assert.Equal(t, float32(0), got[0])
	assert.Equal(t, negZero, got[1])
	assert.True(t, math.IsNaN(float64(got[2])))
	assert.True(t, math.IsInf(float64(got[3]), 1))
	assert.True(t, math.IsInf(float64(got[4]), -1))
}

func TestSignedLog1pFloat16(t *testing.T) {
	values := []float32{-3, -0.5, 0, 0.5, 3}
	data := make([]float16.Float16, len(values))
	for i, v := range values {
		data[i] = float16.Fromfloat32(v)
	}
	input := tensors.FromFlatDataAndDimensions(data, len(data))
	got := tensors.FlatData[float16.Float16](SignedLog1pFloat16(input))
	for i, v := range values {
		want := math.Copysign(math.Log1p(math.Abs(float64(v))), float64(v))
		assert.InDelta(t, want, float64(got[i].Float32()), 1e-2, "element %d, input %v", i, v)
	}
}

func TestSignedLog1pBFloat16(t *testing.T) {
	values := []float32{-3, -0.5, 0, 0.5, 3}
	data := make([]bfloat16.BFloat16, len(values))
	for i, v := range values {
		data[i] = bfloat16.FromFloat32(v)
	}
	input := tensors.FromFlatDataAndDimensions(data, len(data))
	got := tensors.FlatData[bfloat16.BFloat16](SignedLog1pBFloat16(input))
	for i, v := range values {
		want := math.Copysign(math.Log1p(math.Abs(float64(v))), float64(v))
		assert.InDelta(t, want, float64(got[i].Float32()), 1e-1, "element %d, input %v", i, v)
	}
}

func TestKernelPreconditions(t *testing.T) {
	input := signedLog1pInput(2, 3)
	require.Panics(t, func() { Abs[float64](input) }, "element type mismatch")
	require.Panics(t, func() {
		Mul[float32](input, signedLog1pInput(3, 2))
	}, "shape mismatch")

	strided := tensors.FromFlatDataAndStrides(make([]float32, 12), []int{2, 3}, []int{6, 2})
	require.Panics(t, func() { Sign[float32](strided) }, "non-contiguous input")
}
