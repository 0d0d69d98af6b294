package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	require.False(t, invalidShape.Ok())

	shape0 := Make(dtypes.Float64)
	require.True(t, shape0.Ok())
	require.True(t, shape0.IsScalar())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, 8, int(shape0.Memory()))

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Len(t, shape1.Dimensions, 3)
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 4*4*3*2, int(shape1.Memory()))

	require.Equal(t, 2, shape1.Dim(-1))
	require.Equal(t, 3, shape1.Dim(1))
	require.Panics(t, func() { shape1.Dim(3) })
	require.Panics(t, func() { shape1.Dim(-4) })

	require.Panics(t, func() { Make(dtypes.Float32, 3, 0) })
}

func TestShapeEqual(t *testing.T) {
	s1 := Make(dtypes.Float32, 10, 1467)
	s2 := Make(dtypes.Float32, 10, 1467)
	s3 := Make(dtypes.Float64, 10, 1467)
	s4 := Make(dtypes.Float32, 1467, 10)
	require.True(t, s1.Equal(s2))
	require.False(t, s1.Equal(s3))
	require.False(t, s1.Equal(s4))
	require.True(t, s1.EqualDimensions(s3))

	clone := s1.Clone()
	require.True(t, s1.Equal(clone))
	clone.Dimensions[0] = 11
	require.Equal(t, 10, s1.Dimensions[0])
}

func TestScalar(t *testing.T) {
	s := Scalar[float32]()
	require.Equal(t, dtypes.Float32, s.DType)
	require.True(t, s.IsScalar())
}
