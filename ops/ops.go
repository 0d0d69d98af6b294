// Package ops implements eager elementwise kernels over dense float tensors,
// plus a fused signed-log1p used to measure what one-pass execution buys over
// the eager op-at-a-time path.
//
// signedlog1p(x) = sign(x) * log1p(|x|)
//
// The eager path materializes one intermediate tensor per op; the fused path
// computes the same per-element expression in a single pass, so the two agree
// bit for bit and differ only in memory traffic.
package ops

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/mpalrocks/pytorch/types/tensors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Float are the native float types the generic kernels instantiate for:
// the intersection of the ordered float types and the tensor element types.
type Float interface {
	constraints.Float
	dtypes.Supported
}

// input returns the flat data of t checked against the element type T.
// Kernels are written for contiguous storage only.
func input[T Float](t *tensors.Tensor) []T {
	want := dtypes.FromGenericsType[T]()
	if t.DType() != want {
		exceptions.Panicf("ops: kernel for %s applied to %s tensor", want, t.DType())
	}
	if !t.IsContiguous() {
		exceptions.Panicf("ops: kernels require contiguous tensors, got strides %v for shape %s",
			t.Strides(), t.Shape())
	}
	return tensors.FlatData[T](t)
}

// unaryOp allocates the result tensor and applies fn element by element.
func unaryOp[T Float](t *tensors.Tensor, fn func(T) T) *tensors.Tensor {
	in := input[T](t)
	out := tensors.FromShape(t.Shape())
	outData := tensors.FlatData[T](out)
	for i, v := range in {
		outData[i] = fn(v)
	}
	return out
}

func signOf[T Float](v T) T {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v // preserves ±0 and propagates NaN
}

func log1p[T Float](v T) T {
	return T(math.Log1p(float64(v)))
}

func absOf[T Float](v T) T {
	return T(math.Abs(float64(v)))
}

// Abs returns a new tensor with |t| computed element by element.
func Abs[T Float](t *tensors.Tensor) *tensors.Tensor {
	return unaryOp(t, absOf[T])
}

// Sign returns a new tensor with -1, 0 or 1 per element, matching the sign of t.
func Sign[T Float](t *tensors.Tensor) *tensors.Tensor {
	return unaryOp(t, signOf[T])
}

// Log1p returns a new tensor with log(1+x) computed element by element.
func Log1p[T Float](t *tensors.Tensor) *tensors.Tensor {
	return unaryOp(t, log1p[T])
}

// Mul returns the elementwise product of two same-shaped tensors.
func Mul[T Float](a, b *tensors.Tensor) *tensors.Tensor {
	if !a.Shape().Equal(b.Shape()) {
		exceptions.Panicf("ops: Mul of mismatched shapes %s and %s", a.Shape(), b.Shape())
	}
	aData := input[T](a)
	bData := input[T](b)
	out := tensors.FromShape(a.Shape())
	outData := tensors.FlatData[T](out)
	for i, v := range aData {
		outData[i] = v * bData[i]
	}
	return out
}

// SignedLog1p computes sign(t) * log1p(|t|) the eager way, one pass and one
// intermediate tensor per op.
func SignedLog1p[T Float](t *tensors.Tensor) *tensors.Tensor {
	sign := Sign[T](t)
	abs := Abs[T](t)
	logAbs := Log1p[T](abs)
	return Mul[T](sign, logAbs)
}

// SignedLog1pFused computes sign(t) * log1p(|t|) in a single pass with no
// intermediate tensors. The per-element arithmetic is identical to the eager
// path, so the results match exactly.
func SignedLog1pFused[T Float](t *tensors.Tensor) *tensors.Tensor {
	return unaryOp(t, func(v T) T {
		return signOf(v) * log1p(absOf(v))
	})
}

// SignedLog1pFloat16 is the fused kernel for Float16 tensors. Arithmetic runs
// in float32 and rounds once at the end, the usual reduced-precision contract.
func SignedLog1pFloat16(t *tensors.Tensor) *tensors.Tensor {
	if t.DType() != dtypes.Float16 {
		exceptions.Panicf("ops: SignedLog1pFloat16 applied to %s tensor", t.DType())
	}
	if !t.IsContiguous() {
		exceptions.Panicf("ops: kernels require contiguous tensors, got strides %v for shape %s",
			t.Strides(), t.Shape())
	}
	in := tensors.FlatData[float16.Float16](t)
	out := tensors.FromShape(t.Shape())
	outData := tensors.FlatData[float16.Float16](out)
	for i, v := range in {
		f := v.Float32()
		outData[i] = float16.Fromfloat32(signOf(f) * log1p(absOf(f)))
	}
	return out
}

// SignedLog1pBFloat16 is the fused kernel for BFloat16 tensors.
func SignedLog1pBFloat16(t *tensors.Tensor) *tensors.Tensor {
	if t.DType() != dtypes.BFloat16 {
		exceptions.Panicf("ops: SignedLog1pBFloat16 applied to %s tensor", t.DType())
	}
	if !t.IsContiguous() {
		exceptions.Panicf("ops: kernels require contiguous tensors, got strides %v for shape %s",
			t.Strides(), t.Shape())
	}
	in := tensors.FlatData[bfloat16.BFloat16](t)
	out := tensors.FromShape(t.Shape())
	outData := tensors.FlatData[bfloat16.BFloat16](out)
	for i, v := range in {
		f := v.Float32()
		outData[i] = bfloat16.FromFloat32(signOf(f) * log1p(absOf(f)))
	}
	return out
}
