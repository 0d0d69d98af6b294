package simsparse

import (
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/mpalrocks/pytorch/backends/cusparse"
)

// HandleInfo is a read-only snapshot of the state recorded behind a live
// handle. The real library keeps this opaque; the simulation exposes it as a
// debugging aid, and tests use it to assert what the wrappers actually passed
// down.
type HandleInfo struct {
	Kind string

	Rows, Cols, Nnz  int64
	Size             int64
	ValueType        dtypes.DType
	Order            cusparse.Order
	LeadingDimension int64

	Values      unsafe.Pointer
	CrowIndices unsafe.Pointer
	ColIndices  unsafe.Pointer

	IndexType cusparse.IndexType
	IndexBase cusparse.IndexBase

	BatchCount             int
	BatchStride            int64
	CrowIndicesBatchStride int64
	ValuesBatchStride      int64

	FillMode    cusparse.FillMode
	FillModeSet bool
	DiagType    cusparse.DiagType
	DiagTypeSet bool
}

// Inspect returns a snapshot of a live handle's recorded state, or false if
// the handle is unknown (destroyed or never issued).
func (l *Library) Inspect(handle cusparse.DescriptorHandle) (HandleInfo, bool) {
	l.handles.mu.Lock()
	defer l.handles.mu.Unlock()
	state := l.handles.states[handle]
	if state == nil {
		return HandleInfo{}, false
	}
	return HandleInfo{
		Kind:                   string(state.kind),
		Rows:                   state.rows,
		Cols:                   state.cols,
		Nnz:                    state.nnz,
		Size:                   state.size,
		ValueType:              state.valueType,
		Order:                  state.order,
		LeadingDimension:       state.leadingDimension,
		Values:                 state.values,
		CrowIndices:            state.crowIndices,
		ColIndices:             state.colIndices,
		IndexType:              state.indexType,
		IndexBase:              state.indexBase,
		BatchCount:             state.batchCount,
		BatchStride:            state.batchStride,
		CrowIndicesBatchStride: state.crowIndicesBatchStride,
		ValuesBatchStride:      state.valuesBatchStride,
		FillMode:               state.fillMode,
		FillModeSet:            state.fillModeSet,
		DiagType:               state.diagType,
		DiagTypeSet:            state.diagTypeSet,
	}, true
}
