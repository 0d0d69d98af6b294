package cusparse

// Enums below mirror the corresponding C API constants 1:1 so a cgo-backed
// Library can pass them through unchanged.

// Order is the storage order of a dense-matrix descriptor.
type Order int32

const (
	OrderCol Order = 1
	OrderRow Order = 2
)

// String implements fmt.Stringer.
func (o Order) String() string {
	switch o {
	case OrderCol:
		return "CUSPARSE_ORDER_COL"
	case OrderRow:
		return "CUSPARSE_ORDER_ROW"
	}
	return "CUSPARSE_ORDER(?)"
}

// IndexType is the integer width of the CSR index arrays. Exactly two widths
// are supported.
type IndexType int32

const (
	Index32I IndexType = 2
	Index64I IndexType = 3
)

// String implements fmt.Stringer.
func (t IndexType) String() string {
	switch t {
	case Index32I:
		return "CUSPARSE_INDEX_32I"
	case Index64I:
		return "CUSPARSE_INDEX_64I"
	}
	return "CUSPARSE_INDEX(?)"
}

// IndexBase is the base of the CSR index arrays. Descriptors in this package
// always use zero-based indexing.
type IndexBase int32

const (
	IndexBaseZero IndexBase = 0
	IndexBaseOne  IndexBase = 1
)

// FillMode selects which triangle of a triangular matrix is stored.
type FillMode int32

const (
	FillModeLower FillMode = 0
	FillModeUpper FillMode = 1
)

// String implements fmt.Stringer.
func (m FillMode) String() string {
	switch m {
	case FillModeLower:
		return "CUSPARSE_FILL_MODE_LOWER"
	case FillModeUpper:
		return "CUSPARSE_FILL_MODE_UPPER"
	}
	return "CUSPARSE_FILL_MODE(?)"
}

// DiagType declares whether the diagonal of a triangular matrix is implicit ones.
type DiagType int32

const (
	DiagTypeNonUnit DiagType = 0
	DiagTypeUnit    DiagType = 1
)

// String implements fmt.Stringer.
func (d DiagType) String() string {
	switch d {
	case DiagTypeNonUnit:
		return "CUSPARSE_DIAG_TYPE_NON_UNIT"
	case DiagTypeUnit:
		return "CUSPARSE_DIAG_TYPE_UNIT"
	}
	return "CUSPARSE_DIAG_TYPE(?)"
}

// SpMatAttribute identifies a settable sparse-matrix descriptor attribute.
type SpMatAttribute int32

const (
	SpMatFillMode SpMatAttribute = 0
	SpMatDiagType SpMatAttribute = 1
)

// String implements fmt.Stringer.
func (a SpMatAttribute) String() string {
	switch a {
	case SpMatFillMode:
		return "CUSPARSE_SPMAT_FILL_MODE"
	case SpMatDiagType:
		return "CUSPARSE_SPMAT_DIAG_TYPE"
	}
	return "CUSPARSE_SPMAT_ATTRIBUTE(?)"
}
