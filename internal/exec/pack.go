// Package exec implements the query executor: schema-aware packing and
// unpacking of tuples into the paged record store's byte format, predicate
// evaluation, hash join and grouped aggregation over scan results.
package exec

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"tupledb/internal/schema"
	"tupledb/internal/store"
)

// Pack serializes values positionally under sch: INT columns contribute
// exactly 4 little-endian bytes, VARCHAR columns a 2-byte little-endian
// length prefix followed by that many payload bytes. VARCHAR values longer
// than the column's declared length are truncated. Missing trailing values
// are treated as empty string / 0.
func Pack(sch schema.Table, values []string) []byte {
	var out []byte
	for i, col := range sch.Columns {
		var raw string
		if i < len(values) {
			raw = values[i]
		}
		switch col.Type {
		case schema.Int:
			n := 0
			if raw != "" {
				n, _ = strconv.Atoi(raw)
			}
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(int32(n)))
			out = append(out, buf...)
		case schema.Varchar:
			b := []byte(raw)
			if uint32(len(b)) > col.Length {
				b = b[:col.Length]
			}
			lenBuf := make([]byte, 2)
			binary.LittleEndian.PutUint16(lenBuf, uint16(len(b)))
			out = append(out, lenBuf...)
			out = append(out, b...)
		}
	}
	return out
}

// Unpack is pack's inverse: it yields one string per schema column, INT as
// its decimal representation, VARCHAR as its raw payload bytes. It fails
// with store.ErrSchemaMismatch if record is too short for the schema.
func Unpack(sch schema.Table, record []byte) ([]string, error) {
	out := make([]string, len(sch.Columns))
	offset := 0
	for i, col := range sch.Columns {
		switch col.Type {
		case schema.Int:
			if offset+4 > len(record) {
				return nil, fmt.Errorf("%w: column %s", store.ErrSchemaMismatch, col.Name)
			}
			v := int32(binary.LittleEndian.Uint32(record[offset : offset+4]))
			out[i] = strconv.Itoa(int(v))
			offset += 4
		case schema.Varchar:
			if offset+2 > len(record) {
				return nil, fmt.Errorf("%w: column %s", store.ErrSchemaMismatch, col.Name)
			}
			l := binary.LittleEndian.Uint16(record[offset : offset+2])
			offset += 2
			if offset+int(l) > len(record) {
				return nil, fmt.Errorf("%w: column %s", store.ErrSchemaMismatch, col.Name)
			}
			out[i] = string(record[offset : offset+int(l)])
			offset += int(l)
		}
	}
	return out, nil
}
