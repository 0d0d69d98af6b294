package cusparse

import "fmt"

// Version of the CUDA toolkit a Library implementation was built against.
type Version struct {
	Major, Minor, Patch int
}

// String implements fmt.Stringer, e.g. "11.3.1".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether the version is >= major.minor.patch.
func (v Version) AtLeast(major, minor, patch int) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// Capabilities reports which descriptor types and attribute operations a
// Library supports at its version. The C library gates these behind
// compile-time version macros; here they are runtime flags so callers can
// probe instead of being compiled out.
type Capabilities struct {
	// GenericAPI: the generic sparse descriptor API (dense and CSR
	// descriptors) is available. Without it only the legacy MatDescriptor
	// form exists.
	GenericAPI bool

	// StridedBatch: batched descriptors, CSR pointer rebinds and size
	// queries are available.
	StridedBatch bool

	// TriangularSolve: SpSV working-state descriptors and the
	// fill-mode/diagonal-type attributes are available.
	TriangularSolve bool

	// TriangularSolveMatrix: SpSM working-state descriptors are available.
	TriangularSolveMatrix bool

	// SpGEMM: sparse-matrix-multiply working-state descriptors are available.
	SpGEMM bool
}

// CapabilitiesForVersion derives the capability flags from a CUDA toolkit
// version, following the version gates of the C API: the generic API appears
// in 10.2, batched CSR and SpGEMM in 11.0, SpSV in 11.3 and SpSM in 11.3.1.
func CapabilitiesForVersion(v Version) Capabilities {
	return Capabilities{
		GenericAPI:            v.AtLeast(10, 2, 0),
		StridedBatch:          v.AtLeast(11, 0, 0),
		TriangularSolve:       v.AtLeast(11, 3, 0),
		TriangularSolveMatrix: v.AtLeast(11, 3, 1),
		SpGEMM:                v.AtLeast(11, 0, 0),
	}
}
