package ops

import (
	"fmt"
	"testing"

	"github.com/mpalrocks/pytorch/types/tensors"
)

// BenchmarkSignedLog1p compares the eager op-at-a-time path with the fused
// single-pass kernel. Bytes per iteration counts one read plus one write of
// the tensor, so the reported MB/s is effective memory bandwidth.
func BenchmarkSignedLog1p(b *testing.B) {
	sizes := []struct {
		rows, cols int
	}{
		{10, 1467},
		{100, 1467},
		{1000, 1467},
	}

	for _, size := range sizes {
		input := signedLog1pInput(size.rows, size.cols)
		bytes := int64(2 * input.Shape().Memory())

		b.Run(fmt.Sprintf("eager_%dx%d", size.rows, size.cols), func(b *testing.B) {
			b.SetBytes(bytes)
			for range b.N {
				SignedLog1p[float32](input)
			}
		})
		b.Run(fmt.Sprintf("fused_%dx%d", size.rows, size.cols), func(b *testing.B) {
			b.SetBytes(bytes)
			for range b.N {
				SignedLog1pFused[float32](input)
			}
		})
	}
}

// BenchmarkSignedLog1pFloat64 measures the double-precision kernels on the
// base shape only.
func BenchmarkSignedLog1pFloat64(b *testing.B) {
	const rows, cols = 10, 1467
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i%101-50) * 0.37
	}
	input := tensors.FromFlatDataAndDimensions(data, rows, cols)
	bytes := int64(2 * input.Shape().Memory())

	b.Run("eager", func(b *testing.B) {
		b.SetBytes(bytes)
		for range b.N {
			SignedLog1p[float64](input)
		}
	})
	b.Run("fused", func(b *testing.B) {
		b.SetBytes(bytes)
		for range b.N {
			SignedLog1pFused[float64](input)
		}
	})
}
