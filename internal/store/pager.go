package store

import (
	"fmt"
	"os"

	"tupledb/internal/pagecache"
)

// fileHandle is a table's on-disk data file, read and written one page at a
// time. Grounded on the teacher's HeapFilePager (heapfile_manager/heapfile_pager.go):
// same ReadPage/WritePage/AllocatePage/TotalPages shape, generalized to the
// page format this engine actually uses.
type fileHandle struct {
	name  string
	file  *os.File
	cache *pagecache.Cache
}

func openFileHandle(path, tableName string, cache *pagecache.Cache) (*fileHandle, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &fileHandle{name: tableName, file: f, cache: cache}, nil
}

// totalPages returns the number of PageSize-sized pages currently in the file.
func (h *fileHandle) totalPages() (uint32, error) {
	info, err := h.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("store: stat: %w", err)
	}
	return uint32(info.Size() / PageSize), nil
}

func (h *fileHandle) readPage(pageNum uint32) ([]byte, error) {
	if h.cache != nil {
		if cached, ok := h.cache.Get(h.name, pageNum); ok {
			return cached, nil
		}
	}
	page := make([]byte, PageSize)
	n, err := h.file.ReadAt(page, int64(pageNum)*PageSize)
	if err != nil && n != PageSize {
		return nil, fmt.Errorf("store: read page %d: %w", pageNum, err)
	}
	if h.cache != nil {
		h.cache.Set(h.name, pageNum, page)
	}
	return page, nil
}

func (h *fileHandle) writePage(pageNum uint32, page []byte) error {
	if len(page) != PageSize {
		return fmt.Errorf("store: writePage: page must be %d bytes, got %d", PageSize, len(page))
	}
	if _, err := h.file.WriteAt(page, int64(pageNum)*PageSize); err != nil {
		return fmt.Errorf("store: write page %d: %w", pageNum, err)
	}
	if h.cache != nil {
		h.cache.Set(h.name, pageNum, page)
	}
	return nil
}

// allocatePage appends a fresh empty page and returns its page number.
func (h *fileHandle) allocatePage() (uint32, error) {
	n, err := h.totalPages()
	if err != nil {
		return 0, err
	}
	if err := h.writePage(n, newEmptyPage()); err != nil {
		return 0, err
	}
	return n, nil
}

func (h *fileHandle) sync() error {
	return h.file.Sync()
}

func (h *fileHandle) close() error {
	if err := h.sync(); err != nil {
		return err
	}
	return h.file.Close()
}
