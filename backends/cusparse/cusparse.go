// Package cusparse wraps the opaque descriptor handles of a CUDA sparse
// linear-algebra library behind owning Go types.
//
// The native call surface is the Library interface: handle creation and
// destruction, attribute setters, pointer rebinds and size queries, each
// returning a raw Status the way the C API does. Implementations register
// themselves with Register; the in-process simulated implementation lives in
// the simsparse sub-package, and a cgo-backed one can be plugged in without
// touching this package.
//
// On top of Library, the package builds the descriptor wrappers consumed by
// sparse routines:
//
//   - DnMatDescriptor / DnVecDescriptor: dense strided matrices and vectors;
//   - SpMatCsrDescriptor: compressed-sparse-row matrices, optionally batched,
//     with pointer-rebind and triangular-solve attribute mutations;
//   - SpSVDescriptor, SpSMDescriptor, SpGEMMDescriptor, MatDescriptor:
//     opaque per-operation working state.
//
// Every descriptor owns exactly one native handle and releases it exactly
// once through Free. Descriptors store raw addresses into the originating
// tensor's storage and never own it: the tensor must outlive the descriptor.
//
// Error handling follows three tiers: caller bugs (wrong rank, non-contiguous
// buffers, unsupported index widths) panic with a stack trace via
// github.com/gomlx/exceptions; device-capability failures return descriptive
// errors the caller can recover from; any non-success Status from the native
// library is returned as an error carrying the library's own status text --
// except at destruction time, where it is promoted to a panic.
package cusparse

import (
	"os"
	"strings"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// DescriptorHandle is an opaque native descriptor token. For a cgo-backed
// Library it is the native pointer value; the simulated library hands out
// synthetic tokens. Zero is never a valid handle.
type DescriptorHandle uintptr

// Library is the native call surface of the sparse linear-algebra library.
//
// Every call is synchronous and returns a raw Status, never a Go error: the
// descriptor wrappers in this package do the converting. Creation and
// destruction calls may serialize against a device-wide context internally;
// the Library itself performs no synchronization over the memory the handles
// point to.
type Library interface {
	// Name returns the short name the implementation was registered under.
	Name() string

	// Description is a longer description of the library implementation that can be used to pretty-print.
	Description() string

	// Version of the underlying CUDA toolkit the library was built against.
	Version() Version

	// Capabilities reports which descriptor types and attribute operations
	// are available at this library version.
	Capabilities() Capabilities

	// DeviceProperties describes the active device, including its compute capability.
	DeviceProperties() DeviceProperties

	// CreateDnMat creates a dense-matrix descriptor over the given strided storage.
	CreateDnMat(rows, cols, leadingDimension int64, values unsafe.Pointer, valueType dtypes.DType, order Order) (DescriptorHandle, Status)

	// DestroyDnMat releases a dense-matrix descriptor.
	DestroyDnMat(handle DescriptorHandle) Status

	// DnMatSetStridedBatch attaches a strided-batch attribute to a dense-matrix descriptor.
	DnMatSetStridedBatch(handle DescriptorHandle, batchCount int, batchStride int64) Status

	// CreateDnVec creates a dense-vector descriptor over the given contiguous storage.
	CreateDnVec(size int64, values unsafe.Pointer, valueType dtypes.DType) (DescriptorHandle, Status)

	// DestroyDnVec releases a dense-vector descriptor.
	DestroyDnVec(handle DescriptorHandle) Status

	// CreateCsr creates a sparse-matrix descriptor in CSR format.
	CreateCsr(rows, cols, nnz int64, crowIndices, colIndices, values unsafe.Pointer,
		indexType IndexType, valueType dtypes.DType, indexBase IndexBase) (DescriptorHandle, Status)

	// DestroySpMat releases a sparse-matrix descriptor.
	DestroySpMat(handle DescriptorHandle) Status

	// CsrSetStridedBatch attaches a strided-batch attribute to a CSR descriptor.
	// The column-indices batch stride is implied by the values batch stride.
	CsrSetStridedBatch(handle DescriptorHandle, batchCount int, crowIndicesBatchStride, valuesBatchStride int64) Status

	// CsrSetPointers replaces the three backing pointers of a CSR descriptor in place.
	CsrSetPointers(handle DescriptorHandle, crowIndices, colIndices, values unsafe.Pointer) Status

	// SpMatGetSize returns the (rows, cols, nnz) triple of a sparse-matrix descriptor.
	SpMatGetSize(handle DescriptorHandle) (rows, cols, nnz int64, status Status)

	// SpMatSetAttribute sets one attribute of a sparse-matrix descriptor atomically.
	SpMatSetAttribute(handle DescriptorHandle, attribute SpMatAttribute, value int32) Status

	// SpSVCreateDescr allocates opaque triangular-solve working state.
	SpSVCreateDescr() (DescriptorHandle, Status)

	// SpSVDestroyDescr releases triangular-solve working state.
	SpSVDestroyDescr(handle DescriptorHandle) Status

	// SpSMCreateDescr allocates opaque triangular-solve working state for matrix right-hand sides.
	SpSMCreateDescr() (DescriptorHandle, Status)

	// SpSMDestroyDescr releases the SpSM working state.
	SpSMDestroyDescr(handle DescriptorHandle) Status

	// SpGEMMCreateDescr allocates opaque sparse-matrix-multiply working state.
	SpGEMMCreateDescr() (DescriptorHandle, Status)

	// SpGEMMDestroyDescr releases the SpGEMM working state.
	SpGEMMDestroyDescr(handle DescriptorHandle) Status

	// CreateMatDescr creates a legacy (non-generic API) matrix descriptor.
	CreateMatDescr() (DescriptorHandle, Status)

	// DestroyMatDescr releases a legacy matrix descriptor.
	DestroyMatDescr(handle DescriptorHandle) Status

	// Finalize releases all the associated resources immediately, and makes the library invalid.
	Finalize()
}

// Constructor takes a config string (optionally empty) and returns a Library.
type Constructor func(config string) (Library, error)

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register a Library implementation with the given name, and a default
// constructor that takes as input a configuration string that is passed along
// to the implementation's constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// DefaultConfig is the library configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// EnvLibraryConfig is the environment variable with the default library
// configuration to use.
//
// The format of config is "<library_name>:<library_configuration>".
// The "<library_name>" is the name of a registered implementation (e.g.: "sim")
// and "<library_configuration>" is implementation specific.
const EnvLibraryConfig = "PYTORCH_SPARSE_BACKEND"

// New returns a new Library with the default configuration.
//
// The default is:
//
// 1. The environment PYTORCH_SPARSE_BACKEND is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered implementation is used with an empty configuration.
//
// It panics if no implementation was registered.
func New() (Library, error) {
	config, found := os.LookupEnv(EnvLibraryConfig)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig creates a Library from a configuration string formatted as
// "<library_name>:<library_configuration>".
//
// The "<library_name>" is the name of a registered implementation (e.g.: "sim")
// and "<library_configuration>" is implementation specific.
func NewWithConfig(config string) (Library, error) {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf(`no registered cuSPARSE implementations -- maybe import the simulated one with import _ "github.com/mpalrocks/pytorch/backends/cusparse/simsparse"?`)
	}
	libraryName := firstRegistered
	libraryConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		libraryName = config[:idx]
		libraryConfig = config[idx+1:]
	}
	constructor, found := registeredConstructors[libraryName]
	if !found {
		exceptions.Panicf("can't find cuSPARSE implementation %q for configuration %q given", libraryName, config)
	}
	return constructor(libraryConfig)
}
