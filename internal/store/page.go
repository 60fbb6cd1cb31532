package store

import (
	"encoding/binary"
	"fmt"
)

// newEmptyPage returns a zeroed page with slot_count=0 and
// free_space_offset=PageSize.
func newEmptyPage() []byte {
	page := make([]byte, PageSize)
	writePageHeader(page, 0, PageSize)
	return page
}

func readPageHeader(page []byte) (slotCount, freeOffset uint16) {
	slotCount = binary.LittleEndian.Uint16(page[0:2])
	freeOffset = binary.LittleEndian.Uint16(page[2:4])
	return
}

func writePageHeader(page []byte, slotCount, freeOffset uint16) {
	binary.LittleEndian.PutUint16(page[0:2], slotCount)
	binary.LittleEndian.PutUint16(page[2:4], freeOffset)
}

func slotOffset(idx uint16) int {
	return HeaderSize + int(idx)*SlotSize
}

func readSlot(page []byte, idx uint16) uint16 {
	off := slotOffset(idx)
	return binary.LittleEndian.Uint16(page[off : off+2])
}

func writeSlot(page []byte, idx uint16, value uint16) {
	off := slotOffset(idx)
	binary.LittleEndian.PutUint16(page[off:off+2], value)
}

// usedSpace counts the header and slot directory only. The record-size
// prefix (and, for an insert, the new slot) is added on the caller's
// "required" side, so the fit checks in Insert and Update are exact: a
// record is accepted exactly when its prefix, body and any new slot fit.
func usedSpace(slotCount uint16) uint16 {
	return HeaderSize + slotCount*SlotSize
}

// freeSpace returns the gap between the end of the slot directory and the
// start of the record heap.
func freeSpace(page []byte) uint16 {
	slotCount, freeOffset := readPageHeader(page)
	used := usedSpace(slotCount)
	if freeOffset < used {
		return 0
	}
	return freeOffset - used
}

// readRecordAt reads the size-prefixed record body starting at offset.
func readRecordAt(page []byte, offset uint16) ([]byte, error) {
	if int(offset)+RecordPrefixSize > PageSize {
		return nil, fmt.Errorf("%w: offset %d", ErrCorruptPage, offset)
	}
	size := binary.LittleEndian.Uint32(page[offset : offset+RecordPrefixSize])
	start := int(offset) + RecordPrefixSize
	if start+int(size) > PageSize {
		return nil, fmt.Errorf("%w: size %d at offset %d", ErrCorruptPage, size, offset)
	}
	body := make([]byte, size)
	copy(body, page[start:start+int(size)])
	return body, nil
}

// writeRecordAt writes the size prefix and body at offset.
func writeRecordAt(page []byte, offset uint16, body []byte) {
	binary.LittleEndian.PutUint32(page[offset:offset+RecordPrefixSize], uint32(len(body)))
	start := int(offset) + RecordPrefixSize
	copy(page[start:start+len(body)], body)
}
