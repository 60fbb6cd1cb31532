package store

import (
	"encoding/binary"
	"fmt"

	"tupledb/internal/schema"
)

// indexKey computes the canonical string form of a record's first-column
// value, the key the hash index buckets on. Any other column 0 type is
// unsupported and the operation that requested the key fails softly (the
// caller treats a non-nil error as "skip indexing this record").
func indexKey(sch schema.Table, record []byte) (string, error) {
	if len(sch.Columns) == 0 {
		return "", fmt.Errorf("%w: table %s has no columns", ErrUnsupportedType, sch.Name)
	}
	col := sch.Columns[0]
	switch col.Type {
	case schema.Int:
		if len(record) < 4 {
			return "", fmt.Errorf("%w: record too short for INT index key", ErrSchemaMismatch)
		}
		v := int32(binary.LittleEndian.Uint32(record[0:4]))
		return fmt.Sprintf("%d", v), nil
	case schema.Varchar:
		if len(record) < 2 {
			return "", fmt.Errorf("%w: record too short for VARCHAR index key", ErrSchemaMismatch)
		}
		l := binary.LittleEndian.Uint16(record[0:2])
		if len(record) < int(2+l) {
			return "", fmt.Errorf("%w: record too short for VARCHAR index key", ErrSchemaMismatch)
		}
		return string(record[2 : 2+l]), nil
	default:
		return "", fmt.Errorf("%w: column type %v", ErrUnsupportedType, col.Type)
	}
}
