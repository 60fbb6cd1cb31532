package store

import "fmt"

// Get splits id into page/slot, validates the slot is in range and live,
// and returns the record body. A tombstoned or never-allocated slot, or an
// out-of-range slot, is reported as "not found" rather than an error, per
// the storage layer's boolean/empty-result propagation policy.
func (s *Store) Get(tableName string, id RecordID) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, false, ErrNotOpen
	}
	t, ok := s.tables[tableName]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	return getFromTable(t, id)
}

// getFromTable is the lock-free core Get and Update share; the caller must
// already hold s.mu.
func getFromTable(t *table, id RecordID) ([]byte, bool, error) {
	pageNum, slot := id.Split()
	total, err := t.file.totalPages()
	if err != nil {
		return nil, false, err
	}
	if uint32(pageNum) >= total {
		return nil, false, nil
	}

	page, err := t.file.readPage(uint32(pageNum))
	if err != nil {
		return nil, false, err
	}
	slotCount, _ := readPageHeader(page)
	if slot >= slotCount {
		return nil, false, nil
	}

	offset := readSlot(page, slot)
	if offset == slotUnallocated || offset == slotTombstone {
		return nil, false, nil
	}

	body, err := readRecordAt(page, offset)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}
