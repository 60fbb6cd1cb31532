package store

import "fmt"

// Filter is a predicate over a record's raw bytes, applied before Callback.
type Filter func(record []byte) bool

// Callback is invoked with each record surviving Filter; returning false
// excludes the record from Scan's output without stopping iteration.
type Callback func(id RecordID, record []byte) bool

// Scan iterates pages 0..N-1 and, within each, slots 0..slot_count-1,
// skipping unallocated and tombstoned slots. filter and callback may each
// be nil. projection, if non-nil, is a list of absolute byte indices into
// the packed record (not column indices); out-of-range
// indices are logged and skipped rather than erroring the whole scan. If
// limit > 0, collection stops as soon as that many records have been
// collected - including mid-page, per the original's scan-loop LIMIT
// accounting (see SPEC_FULL.md's LIMIT open-question resolution).
func (s *Store) Scan(tableName string, filter Filter, callback Callback, projection []int, limit int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, ErrNotOpen
	}
	t, ok := s.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	total, err := t.file.totalPages()
	if err != nil {
		return nil, err
	}

	var results [][]byte
pages:
	for p := uint32(0); p < total; p++ {
		page, err := t.file.readPage(p)
		if err != nil {
			return nil, err
		}
		slotCount, _ := readPageHeader(page)
		for slot := uint16(0); slot < slotCount; slot++ {
			offset := readSlot(page, slot)
			if offset == slotUnallocated || offset == slotTombstone {
				continue
			}
			body, err := readRecordAt(page, offset)
			if err != nil {
				return nil, err
			}
			if filter != nil && !filter(body) {
				continue
			}
			id := NewRecordID(uint16(p), slot)
			if callback != nil && !callback(id, body) {
				continue
			}
			results = append(results, s.projectBytes(tableName, body, projection))
			if limit > 0 && len(results) >= limit {
				break pages
			}
		}
	}
	return results, nil
}

func (s *Store) projectBytes(tableName string, body []byte, projection []int) []byte {
	if projection == nil {
		return body
	}
	out := make([]byte, 0, len(projection))
	for _, idx := range projection {
		if idx < 0 || idx >= len(body) {
			s.log.WithField("table", tableName).WithField("index", idx).
				Debug("scan projection index out of range, skipping")
			continue
		}
		out = append(out, body[idx])
	}
	return out
}

// Find returns a copy of the bucket the given index key hashes into,
// verbatim. The caller must validate each returned identifier with Get:
// the bucket can contain ids for records since deleted or updated past the
// point where their key changed.
func (s *Store) Find(tableName, key string) ([]RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, ErrNotOpen
	}
	t, ok := s.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	ids := t.index.Lookup(key)
	out := make([]RecordID, len(ids))
	for i, id := range ids {
		out[i] = RecordID(id)
	}
	return out, nil
}
