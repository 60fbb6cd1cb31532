package store

import "fmt"

// Delete rewrites the slot entry with the tombstone marker and removes id
// from whichever of the 1024 buckets currently contains it, matching the
// original's approach of scanning the buckets rather than recomputing the
// deleted record's key (the record body may already be unreadable by the
// time deletion is requested in some callers' flows).
func (s *Store) Delete(tableName string, id RecordID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return false, ErrNotOpen
	}
	t, ok := s.tables[tableName]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	pageNum, slot := id.Split()
	total, err := t.file.totalPages()
	if err != nil {
		return false, err
	}
	if uint32(pageNum) >= total {
		return false, nil
	}
	page, err := t.file.readPage(uint32(pageNum))
	if err != nil {
		return false, err
	}
	slotCount, _ := readPageHeader(page)
	if slot >= slotCount {
		return false, nil
	}
	offset := readSlot(page, slot)
	if offset == slotUnallocated {
		return false, nil
	}
	if offset == slotTombstone {
		// Already deleted: idempotent no-op success.
		return true, nil
	}

	writeSlot(page, slot, slotTombstone)
	if err := t.file.writePage(uint32(pageNum), page); err != nil {
		return false, err
	}

	t.index.RemoveAnywhere(uint32(id))
	return true, nil
}
