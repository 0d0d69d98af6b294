package cusparse_test

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/mpalrocks/pytorch/backends/cusparse"
	"github.com/stretchr/testify/require"
)

func TestSpSVDescriptor(t *testing.T) {
	lib := simLibrary(t, "cuda=11.3")
	descriptor := must.M1(cusparse.NewSpSVDescriptor(lib))
	require.True(t, descriptor.IsValid())
	descriptor.Free()
	require.False(t, descriptor.IsValid())
	require.Equal(t, 0, lib.NumLiveHandles())

	oldLib := simLibrary(t, "cuda=11.2")
	_, err := cusparse.NewSpSVDescriptor(oldLib)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CUDA >= 11.3")
}

func TestSpSMDescriptor(t *testing.T) {
	lib := simLibrary(t, "cuda=11.3.1")
	descriptor := must.M1(cusparse.NewSpSMDescriptor(lib))
	descriptor.Free()
	require.Equal(t, 0, lib.NumLiveHandles())

	// 11.3.0 carries SpSV but not yet SpSM.
	oldLib := simLibrary(t, "cuda=11.3")
	_, err := cusparse.NewSpSMDescriptor(oldLib)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CUDA >= 11.3.1")
	_, err = cusparse.NewSpSVDescriptor(oldLib)
	require.NoError(t, err)
}

func TestSpGEMMDescriptor(t *testing.T) {
	lib := simLibrary(t, "cuda=11.0")
	descriptor := must.M1(cusparse.NewSpGEMMDescriptor(lib))
	descriptor.Free()
	require.Equal(t, 0, lib.NumLiveHandles())

	oldLib := simLibrary(t, "cuda=10.2")
	_, err := cusparse.NewSpGEMMDescriptor(oldLib)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CUDA >= 11.0")
}

func TestMatDescriptor(t *testing.T) {
	// The legacy matrix descriptor predates the generic API and works on any
	// library version.
	for _, cuda := range []string{"cuda=10.1", "cuda=10.2", "cuda=12.2"} {
		lib := simLibrary(t, cuda)
		descriptor := must.M1(cusparse.NewMatDescriptor(lib))
		require.True(t, descriptor.IsValid())
		descriptor.Free()
		require.Equal(t, 0, lib.NumLiveHandles())
	}
}
