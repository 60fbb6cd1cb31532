package store

import (
	"fmt"

	"tupledb/internal/hashindex"
)

// Insert finds the first page with enough free space for
// record (or allocates a new one), appends a slot and the record body, and
// indexes the new record under its first-column key. VACUUM is not
// triggered automatically here; see SPEC_FULL.md's eager-VACUUM decision.
func (s *Store) Insert(tableName string, record []byte) (RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, ErrNotOpen
	}
	t, ok := s.tables[tableName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	return s.insertIntoTable(tableName, t, record)
}

// insertIntoTable is the lock-free core of Insert, reused by Vacuum's
// rebuild loop which already holds s.mu.
func (s *Store) insertIntoTable(tableName string, t *table, record []byte) (RecordID, error) {
	required := uint16(len(record)) + RecordPrefixSize + SlotSize
	if int(len(record))+RecordPrefixSize+HeaderSize+SlotSize > PageSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(record))
	}

	total, err := t.file.totalPages()
	if err != nil {
		return 0, err
	}

	var pageNum uint32
	var page []byte
	found := false
	for p := uint32(0); p < total; p++ {
		candidate, err := t.file.readPage(p)
		if err != nil {
			return 0, err
		}
		if freeSpace(candidate) >= required {
			pageNum, page, found = p, candidate, true
			break
		}
	}
	if !found {
		pageNum, err = t.file.allocatePage()
		if err != nil {
			return 0, err
		}
		page, err = t.file.readPage(pageNum)
		if err != nil {
			return 0, err
		}
	}

	slotCount, freeOffset := readPageHeader(page)
	newOffset := freeOffset - (RecordPrefixSize + uint16(len(record)))
	writeRecordAt(page, newOffset, record)

	slotNum := slotCount
	writeSlot(page, slotNum, newOffset)
	writePageHeader(page, slotCount+1, newOffset)

	if err := t.file.writePage(pageNum, page); err != nil {
		return 0, err
	}

	rid := NewRecordID(uint16(pageNum), slotNum)

	if key, err := indexKey(t.schema, record); err == nil {
		b := hashindex.Bucket(key)
		t.index.Add(b, uint32(rid))
	} else {
		s.log.WithField("table", tableName).WithError(err).Debug("skipping index update")
	}

	return rid, nil
}
