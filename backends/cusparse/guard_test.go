package cusparse_test

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/janpfeifer/must"
	"github.com/mpalrocks/pytorch/backends/cusparse"
	"github.com/mpalrocks/pytorch/backends/cusparse/simsparse"
	"github.com/mpalrocks/pytorch/types/shapes"
	"github.com/mpalrocks/pytorch/types/tensors"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// simLibrary builds a simulated library for the given config, failing the
// test on configuration errors.
func simLibrary(t *testing.T, config string) *simsparse.Library {
	t.Helper()
	lib, err := simsparse.New(config)
	require.NoError(t, err)
	t.Cleanup(lib.Finalize)
	return lib
}

func TestGuardUnrestrictedTypes(t *testing.T) {
	// Even an ancient device accepts the unrestricted element types: the
	// capability check never fires for them.
	lib := simLibrary(t, "cc=3.5,cuda=11.0")
	for _, dtype := range []dtypes.DType{dtypes.Float32, dtypes.Float64, dtypes.Int32, dtypes.Int64} {
		t.Run(dtype.String(), func(t *testing.T) {
			input := tensors.FromShape(shapes.Make(dtype, 4, 4))
			descriptor := must.M1(cusparse.NewDnMatDescriptor(lib, input))
			descriptor.Free()
		})
	}
	require.Equal(t, 0, lib.NumLiveHandles())
}

func TestGuardFloat16(t *testing.T) {
	data := make([]float16.Float16, 16)
	for i := range data {
		data[i] = float16.Fromfloat32(float32(i))
	}
	input := tensors.FromFlatDataAndDimensions(data, 4, 4)

	// Below the 5.3 threshold construction fails naming both capabilities.
	lib := simLibrary(t, "cc=5.2")
	_, err := cusparse.NewDnMatDescriptor(lib, input)
	require.Error(t, err)
	require.Contains(t, err.Error(), "compute capability < 5.3")
	require.Contains(t, err.Error(), "current: 5.2")
	require.Equal(t, 0, lib.NumLiveHandles(), "failed construction must not leak handles")

	// On or above the threshold it succeeds.
	for _, cc := range []string{"5.3", "7.5", "8.0"} {
		lib := simLibrary(t, fmt.Sprintf("cc=%s", cc))
		descriptor := must.M1(cusparse.NewDnMatDescriptor(lib, input))
		descriptor.Free()
	}
}

func TestGuardBFloat16(t *testing.T) {
	data := make([]bfloat16.BFloat16, 16)
	for i := range data {
		data[i] = bfloat16.FromFloat32(float32(i))
	}
	input := tensors.FromFlatDataAndDimensions(data, 4, 4)

	lib := simLibrary(t, "cc=7.5")
	_, err := cusparse.NewDnMatDescriptor(lib, input)
	require.Error(t, err)
	require.Contains(t, err.Error(), "compute capability < 8.0")
	require.Contains(t, err.Error(), "current: 7.5")

	lib = simLibrary(t, "cc=8.0")
	descriptor := must.M1(cusparse.NewDnMatDescriptor(lib, input))
	descriptor.Free()

	// Vector descriptors run the same guard.
	vector := tensors.FromFlatDataAndDimensions(data, 16)
	lib = simLibrary(t, "cc=7.0")
	_, err = cusparse.NewDnVecDescriptor(lib, vector)
	require.Error(t, err)
	require.Contains(t, err.Error(), "BFloat16")
}
