package exec

import (
	"fmt"

	"tupledb/internal/ast"
	"tupledb/internal/schema"
	"tupledb/internal/store"
)

// ErrUnknownColumn reports a WHERE/ORDER BY/projection reference to a
// column absent from the current result schema.
var ErrUnknownColumn = fmt.Errorf("exec: unknown column")

// buildFilter turns a WHERE predicate into a store.Filter. Every comparison
// is done as strings, including on INT columns, so "9" > "10" holds.
func buildFilter(sch schema.Table, pred *ast.Predicate) (store.Filter, error) {
	if pred == nil {
		return nil, nil
	}
	idx := sch.ColumnIndex(pred.Column)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, pred.Column)
	}
	return func(record []byte) bool {
		values, err := Unpack(sch, record)
		if err != nil {
			return false
		}
		return compare(values[idx], pred.Op, pred.Value)
	}, nil
}

func compare(field string, op ast.Op, value string) bool {
	switch op {
	case ast.Eq:
		return field == value
	case ast.Neq:
		return field != value
	case ast.Gt:
		return field > value
	case ast.Lt:
		return field < value
	case ast.Ge:
		return field >= value
	case ast.Le:
		return field <= value
	default:
		return false
	}
}
