// Package store implements the paged record store: one data file, one
// schema file and one hash-index file per table, slotted pages, tombstones,
// and whole-table VACUUM compaction.
package store

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"tupledb/internal/hashindex"
	"tupledb/internal/pagecache"
	"tupledb/internal/schema"
)

// PageSize is the fixed size of every page, on disk and in memory.
const PageSize = 4096

// HeaderSize is the fixed page header: slot_count (2 bytes) followed by
// free_space_offset (2 bytes).
const HeaderSize = 4

// SlotSize is the width of one slot-directory entry.
const SlotSize = 2

// RecordPrefixSize is the width of the uint32 LE record_size prefix that
// precedes every record body in the heap.
const RecordPrefixSize = 4

const (
	slotUnallocated uint16 = 0
	slotTombstone   uint16 = 0xFFFF
)

var (
	ErrNotOpen            = errors.New("store: not open")
	ErrTableNotFound      = errors.New("store: table not found")
	ErrDuplicateTable     = errors.New("store: table already exists")
	ErrRecordNotFound     = errors.New("store: record not found")
	ErrSlotOutOfBounds    = errors.New("store: slot out of bounds")
	ErrInvalidRecordID    = errors.New("store: invalid record id")
	ErrSchemaMismatch     = errors.New("store: record too short for declared schema")
	ErrUnsupportedType    = errors.New("store: unsupported column type for indexing")
	ErrPageFullOnUpdate   = errors.New("store: update does not fit in the record's page")
	ErrRecordTooLarge     = errors.New("store: record does not fit in an empty page")
	ErrCorruptPage        = errors.New("store: record size prefix overflows page")
)

// RecordID encodes (page_number << 16 | slot_number). Stable across
// get/update/delete; only VACUUM may remap it.
type RecordID uint32

// NewRecordID packs a page/slot pair.
func NewRecordID(page, slot uint16) RecordID {
	return RecordID(uint32(page)<<16 | uint32(slot))
}

// Split unpacks a RecordID into its page and slot.
func (r RecordID) Split() (page, slot uint16) {
	return uint16(uint32(r) >> 16), uint16(uint32(r) & 0xFFFF)
}

type table struct {
	name     string
	schema   schema.Table
	file     *fileHandle
	index    *hashindex.Index
	inVacuum bool
}

// Store is an owned handle onto a storage directory, not a process-global
// singleton. Every method holds a single mutex for its whole duration, so
// calls from several goroutines run one at a time; there is no locking
// against other processes using the same directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	open   bool
	tables map[string]*table
	cache  *pagecache.Cache
	log    *logrus.Entry
}

// New constructs an unopened Store bound to dir.
func New(dir string) *Store {
	return &Store{
		dir:    dir,
		tables: make(map[string]*table),
		log:    logrus.WithField("component", "store"),
	}
}
