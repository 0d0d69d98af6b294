package simsparse

import (
	"sync"
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/mpalrocks/pytorch/backends/cusparse"
)

// handleKind tags what a synthetic handle stands for, so destroying a handle
// through the wrong routine is caught, as the real library does.
type handleKind string

const (
	kindDnMat    handleKind = "DnMat"
	kindDnVec    handleKind = "DnVec"
	kindSpMat    handleKind = "SpMat"
	kindSpSV     handleKind = "SpSV"
	kindSpSM     handleKind = "SpSM"
	kindSpGEMM   handleKind = "SpGEMM"
	kindMatDescr handleKind = "MatDescr"
)

// handleState is everything the simulation records behind one handle.
type handleState struct {
	kind handleKind

	rows, cols, nnz  int64
	valueType        dtypes.DType
	order            cusparse.Order
	leadingDimension int64
	size             int64 // dense vectors

	values      unsafe.Pointer
	crowIndices unsafe.Pointer
	colIndices  unsafe.Pointer

	indexType cusparse.IndexType
	indexBase cusparse.IndexBase

	batchCount             int
	batchStride            int64 // dense matrices
	crowIndicesBatchStride int64 // CSR
	valuesBatchStride      int64 // CSR

	fillMode    cusparse.FillMode
	fillModeSet bool
	diagType    cusparse.DiagType
	diagTypeSet bool
}

// handleTable hands out and tracks synthetic descriptor handles. Token zero
// is never issued.
type handleTable struct {
	mu     sync.Mutex
	next   cusparse.DescriptorHandle
	states map[cusparse.DescriptorHandle]*handleState
}

func (t *handleTable) init() {
	t.next = 1
	t.states = make(map[cusparse.DescriptorHandle]*handleState)
}

func (t *handleTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}

func (t *handleTable) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[cusparse.DescriptorHandle]*handleState)
}

func (t *handleTable) insert(state *handleState) cusparse.DescriptorHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	handle := t.next
	t.next++
	t.states[handle] = state
	return handle
}

func (t *handleTable) lookup(handle cusparse.DescriptorHandle, kind handleKind) *handleState {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.states[handle]
	if state == nil || state.kind != kind {
		return nil
	}
	return state
}

func (t *handleTable) remove(handle cusparse.DescriptorHandle, kind handleKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.states[handle]
	if state == nil || state.kind != kind {
		return false
	}
	delete(t.states, handle)
	return true
}

// CreateDnMat creates a dense-matrix descriptor over the given strided storage.
func (l *Library) CreateDnMat(rows, cols, leadingDimension int64, values unsafe.Pointer,
	valueType dtypes.DType, order cusparse.Order) (cusparse.DescriptorHandle, cusparse.Status) {
	if !l.caps.GenericAPI {
		return 0, cusparse.StatusNotSupported
	}
	if rows <= 0 || cols <= 0 {
		return 0, cusparse.StatusInvalidValue
	}
	switch order {
	case cusparse.OrderRow:
		if leadingDimension < cols {
			return 0, cusparse.StatusInvalidValue
		}
	case cusparse.OrderCol:
		if leadingDimension < rows {
			return 0, cusparse.StatusInvalidValue
		}
	default:
		return 0, cusparse.StatusInvalidValue
	}
	if values == nil {
		return 0, cusparse.StatusInvalidValue
	}
	if !l.archSupports(valueType) {
		return 0, cusparse.StatusArchMismatch
	}
	handle := l.handles.insert(&handleState{
		kind:             kindDnMat,
		rows:             rows,
		cols:             cols,
		leadingDimension: leadingDimension,
		values:           values,
		valueType:        valueType,
		order:            order,
		batchCount:       1,
	})
	return handle, cusparse.StatusSuccess
}

// DestroyDnMat releases a dense-matrix descriptor.
func (l *Library) DestroyDnMat(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindDnMat) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// DnMatSetStridedBatch attaches a strided-batch attribute to a dense-matrix descriptor.
func (l *Library) DnMatSetStridedBatch(handle cusparse.DescriptorHandle, batchCount int, batchStride int64) cusparse.Status {
	state := l.handles.lookup(handle, kindDnMat)
	if state == nil {
		return cusparse.StatusInvalidValue
	}
	if batchCount <= 0 || batchStride < 0 {
		return cusparse.StatusInvalidValue
	}
	state.batchCount = batchCount
	state.batchStride = batchStride
	return cusparse.StatusSuccess
}

// CreateDnVec creates a dense-vector descriptor over the given contiguous storage.
func (l *Library) CreateDnVec(size int64, values unsafe.Pointer, valueType dtypes.DType) (cusparse.DescriptorHandle, cusparse.Status) {
	if !l.caps.GenericAPI {
		return 0, cusparse.StatusNotSupported
	}
	if size <= 0 || values == nil {
		return 0, cusparse.StatusInvalidValue
	}
	if !l.archSupports(valueType) {
		return 0, cusparse.StatusArchMismatch
	}
	handle := l.handles.insert(&handleState{
		kind:      kindDnVec,
		size:      size,
		values:    values,
		valueType: valueType,
	})
	return handle, cusparse.StatusSuccess
}

// DestroyDnVec releases a dense-vector descriptor.
func (l *Library) DestroyDnVec(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindDnVec) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// CreateCsr creates a sparse-matrix descriptor in CSR format.
func (l *Library) CreateCsr(rows, cols, nnz int64, crowIndices, colIndices, values unsafe.Pointer,
	indexType cusparse.IndexType, valueType dtypes.DType, indexBase cusparse.IndexBase) (cusparse.DescriptorHandle, cusparse.Status) {
	if !l.caps.GenericAPI {
		return 0, cusparse.StatusNotSupported
	}
	if rows <= 0 || cols <= 0 || nnz < 0 {
		return 0, cusparse.StatusInvalidValue
	}
	if crowIndices == nil || (nnz > 0 && (colIndices == nil || values == nil)) {
		return 0, cusparse.StatusInvalidValue
	}
	if indexType != cusparse.Index32I && indexType != cusparse.Index64I {
		return 0, cusparse.StatusInvalidValue
	}
	if indexBase != cusparse.IndexBaseZero && indexBase != cusparse.IndexBaseOne {
		return 0, cusparse.StatusInvalidValue
	}
	if !l.archSupports(valueType) {
		return 0, cusparse.StatusArchMismatch
	}
	handle := l.handles.insert(&handleState{
		kind:        kindSpMat,
		rows:        rows,
		cols:        cols,
		nnz:         nnz,
		crowIndices: crowIndices,
		colIndices:  colIndices,
		values:      values,
		indexType:   indexType,
		indexBase:   indexBase,
		valueType:   valueType,
		batchCount:  1,
	})
	return handle, cusparse.StatusSuccess
}

// DestroySpMat releases a sparse-matrix descriptor.
func (l *Library) DestroySpMat(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindSpMat) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// CsrSetStridedBatch attaches a strided-batch attribute to a CSR descriptor.
func (l *Library) CsrSetStridedBatch(handle cusparse.DescriptorHandle, batchCount int,
	crowIndicesBatchStride, valuesBatchStride int64) cusparse.Status {
	if !l.caps.StridedBatch {
		return cusparse.StatusNotSupported
	}
	state := l.handles.lookup(handle, kindSpMat)
	if state == nil {
		return cusparse.StatusInvalidValue
	}
	if batchCount <= 0 || crowIndicesBatchStride < 0 || valuesBatchStride < 0 {
		return cusparse.StatusInvalidValue
	}
	state.batchCount = batchCount
	state.crowIndicesBatchStride = crowIndicesBatchStride
	state.valuesBatchStride = valuesBatchStride
	return cusparse.StatusSuccess
}

// CsrSetPointers replaces the three backing pointers of a CSR descriptor in
// place. The topology (rows, cols, nnz) recorded at creation is untouched.
func (l *Library) CsrSetPointers(handle cusparse.DescriptorHandle, crowIndices, colIndices, values unsafe.Pointer) cusparse.Status {
	if !l.caps.StridedBatch {
		return cusparse.StatusNotSupported
	}
	state := l.handles.lookup(handle, kindSpMat)
	if state == nil {
		return cusparse.StatusInvalidValue
	}
	if crowIndices == nil || (state.nnz > 0 && (colIndices == nil || values == nil)) {
		return cusparse.StatusInvalidValue
	}
	state.crowIndices = crowIndices
	state.colIndices = colIndices
	state.values = values
	return cusparse.StatusSuccess
}

// SpMatGetSize returns the (rows, cols, nnz) triple of a sparse-matrix descriptor.
func (l *Library) SpMatGetSize(handle cusparse.DescriptorHandle) (rows, cols, nnz int64, status cusparse.Status) {
	if !l.caps.StridedBatch {
		return 0, 0, 0, cusparse.StatusNotSupported
	}
	state := l.handles.lookup(handle, kindSpMat)
	if state == nil {
		return 0, 0, 0, cusparse.StatusInvalidValue
	}
	return state.rows, state.cols, state.nnz, cusparse.StatusSuccess
}

// SpMatSetAttribute sets one attribute of a sparse-matrix descriptor atomically.
func (l *Library) SpMatSetAttribute(handle cusparse.DescriptorHandle, attribute cusparse.SpMatAttribute, value int32) cusparse.Status {
	if !l.caps.TriangularSolve {
		return cusparse.StatusNotSupported
	}
	state := l.handles.lookup(handle, kindSpMat)
	if state == nil {
		return cusparse.StatusInvalidValue
	}
	switch attribute {
	case cusparse.SpMatFillMode:
		fillMode := cusparse.FillMode(value)
		if fillMode != cusparse.FillModeLower && fillMode != cusparse.FillModeUpper {
			return cusparse.StatusInvalidValue
		}
		state.fillMode = fillMode
		state.fillModeSet = true
	case cusparse.SpMatDiagType:
		diagType := cusparse.DiagType(value)
		if diagType != cusparse.DiagTypeNonUnit && diagType != cusparse.DiagTypeUnit {
			return cusparse.StatusInvalidValue
		}
		state.diagType = diagType
		state.diagTypeSet = true
	default:
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// SpSVCreateDescr allocates opaque triangular-solve working state.
func (l *Library) SpSVCreateDescr() (cusparse.DescriptorHandle, cusparse.Status) {
	if !l.caps.TriangularSolve {
		return 0, cusparse.StatusNotSupported
	}
	return l.handles.insert(&handleState{kind: kindSpSV}), cusparse.StatusSuccess
}

// SpSVDestroyDescr releases triangular-solve working state.
func (l *Library) SpSVDestroyDescr(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindSpSV) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// SpSMCreateDescr allocates opaque triangular-solve working state for matrix right-hand sides.
func (l *Library) SpSMCreateDescr() (cusparse.DescriptorHandle, cusparse.Status) {
	if !l.caps.TriangularSolveMatrix {
		return 0, cusparse.StatusNotSupported
	}
	return l.handles.insert(&handleState{kind: kindSpSM}), cusparse.StatusSuccess
}

// SpSMDestroyDescr releases the SpSM working state.
func (l *Library) SpSMDestroyDescr(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindSpSM) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// SpGEMMCreateDescr allocates opaque sparse-matrix-multiply working state.
func (l *Library) SpGEMMCreateDescr() (cusparse.DescriptorHandle, cusparse.Status) {
	if !l.caps.SpGEMM {
		return 0, cusparse.StatusNotSupported
	}
	return l.handles.insert(&handleState{kind: kindSpGEMM}), cusparse.StatusSuccess
}

// SpGEMMDestroyDescr releases the SpGEMM working state.
func (l *Library) SpGEMMDestroyDescr(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindSpGEMM) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}

// CreateMatDescr creates a legacy (non-generic API) matrix descriptor.
// It predates the generic API and is available at every simulated version.
func (l *Library) CreateMatDescr() (cusparse.DescriptorHandle, cusparse.Status) {
	return l.handles.insert(&handleState{kind: kindMatDescr}), cusparse.StatusSuccess
}

// DestroyMatDescr releases a legacy matrix descriptor.
func (l *Library) DestroyMatDescr(handle cusparse.DescriptorHandle) cusparse.Status {
	if !l.handles.remove(handle, kindMatDescr) {
		return cusparse.StatusInvalidValue
	}
	return cusparse.StatusSuccess
}
