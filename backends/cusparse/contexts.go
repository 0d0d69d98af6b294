package cusparse

import "github.com/pkg/errors"

// The descriptors below carry opaque per-operation working state the native
// library needs across a multi-call sequence (e.g. analyze-then-solve). They
// take no parameters, hold no invariants beyond "valid between creation and
// Free", and are consumed opaquely by external routines.

// SpSVDescriptor is working state for a triangular solve with a vector
// right-hand side.
type SpSVDescriptor struct {
	Descriptor
}

// NewSpSVDescriptor allocates triangular-solve working state. It fails if the
// library version predates the SpSV API.
func NewSpSVDescriptor(lib Library) (*SpSVDescriptor, error) {
	if !lib.Capabilities().TriangularSolve {
		return nil, errors.Errorf("cusparse: SpSV descriptors require CUDA >= 11.3, library version is %s", lib.Version())
	}
	raw, status := lib.SpSVCreateDescr()
	if err := checkStatus(status, "cusparseSpSV_createDescr"); err != nil {
		return nil, err
	}
	return &SpSVDescriptor{newDescriptor("SpSV", raw, lib.SpSVDestroyDescr)}, nil
}

// SpSMDescriptor is working state for a triangular solve with a matrix
// right-hand side.
type SpSMDescriptor struct {
	Descriptor
}

// NewSpSMDescriptor allocates the SpSM working state. It fails if the library
// version predates the SpSM API.
func NewSpSMDescriptor(lib Library) (*SpSMDescriptor, error) {
	if !lib.Capabilities().TriangularSolveMatrix {
		return nil, errors.Errorf("cusparse: SpSM descriptors require CUDA >= 11.3.1, library version is %s", lib.Version())
	}
	raw, status := lib.SpSMCreateDescr()
	if err := checkStatus(status, "cusparseSpSM_createDescr"); err != nil {
		return nil, err
	}
	return &SpSMDescriptor{newDescriptor("SpSM", raw, lib.SpSMDestroyDescr)}, nil
}

// SpGEMMDescriptor is working state for a generic sparse-matrix multiply.
type SpGEMMDescriptor struct {
	Descriptor
}

// NewSpGEMMDescriptor allocates the SpGEMM working state. It fails if the
// library version predates the SpGEMM API.
func NewSpGEMMDescriptor(lib Library) (*SpGEMMDescriptor, error) {
	if !lib.Capabilities().SpGEMM {
		return nil, errors.Errorf("cusparse: SpGEMM descriptors require CUDA >= 11.0, library version is %s", lib.Version())
	}
	raw, status := lib.SpGEMMCreateDescr()
	if err := checkStatus(status, "cusparseSpGEMM_createDescr"); err != nil {
		return nil, err
	}
	return &SpGEMMDescriptor{newDescriptor("SpGEMM", raw, lib.SpGEMMDestroyDescr)}, nil
}

// MatDescriptor is the legacy (pre-generic-API) matrix descriptor, still
// required by a few non-generic routines. Available at every library version.
type MatDescriptor struct {
	Descriptor
}

// NewMatDescriptor allocates a legacy matrix descriptor.
func NewMatDescriptor(lib Library) (*MatDescriptor, error) {
	raw, status := lib.CreateMatDescr()
	if err := checkStatus(status, "cusparseCreateMatDescr"); err != nil {
		return nil, err
	}
	return &MatDescriptor{newDescriptor("MatDescr", raw, lib.DestroyMatDescr)}, nil
}
