package store

import (
	"fmt"

	"tupledb/internal/hashindex"
)

// Update overwrites the record at id with newBody. If newBody is no longer
// than the existing body it is written in place; if the page has room it is
// reallocated within the same page (the old bytes become garbage reclaimed
// only by VACUUM); otherwise Update fails and the caller must delete+insert.
// On success, if the first-column key changed, the record moves buckets.
func (s *Store) Update(tableName string, id RecordID, newBody []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return false, ErrNotOpen
	}
	t, ok := s.tables[tableName]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	oldBody, found, err := getFromTable(t, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	oldKey, oldKeyErr := indexKey(t.schema, oldBody)

	pageNum, slot := id.Split()
	page, err := t.file.readPage(uint32(pageNum))
	if err != nil {
		return false, err
	}
	offset := readSlot(page, slot)

	if len(newBody) <= len(oldBody) {
		writeRecordAt(page, offset, newBody)
	} else {
		slotCount, freeOffset := readPageHeader(page)
		used := usedSpace(slotCount)
		available := int(freeOffset) - int(used)
		needed := RecordPrefixSize + len(newBody)
		if available < needed {
			return false, fmt.Errorf("%w: table %s id %d", ErrPageFullOnUpdate, tableName, id)
		}
		newOffset := freeOffset - uint16(needed)
		writeRecordAt(page, newOffset, newBody)
		writeSlot(page, slot, newOffset)
		writePageHeader(page, slotCount, newOffset)
	}

	if err := t.file.writePage(uint32(pageNum), page); err != nil {
		return false, err
	}

	newKey, newKeyErr := indexKey(t.schema, newBody)
	if oldKeyErr == nil && newKeyErr == nil && newKey != oldKey {
		oldBucket := hashindex.Bucket(oldKey)
		t.index.RemoveFromBucket(oldBucket, uint32(id))
		newBucket := hashindex.Bucket(newKey)
		t.index.Add(newBucket, uint32(id))
	}

	return true, nil
}
