package exec

import "errors"

// Sentinel errors for the executor error taxonomy: join-column-missing and
// group-by-index-out-of-bounds (unknown-column is ErrUnknownColumn, in
// filter.go).
var (
	ErrJoinColumnMissing  = errors.New("exec: join column missing from schema")
	ErrGroupByOutOfBounds = errors.New("exec: group-by index out of bounds")
)
