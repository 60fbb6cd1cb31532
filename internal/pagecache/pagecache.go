// Package pagecache wraps ristretto as an in-memory page cache sitting in
// front of the store's page reads, keyed by table name and page number.
package pagecache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache caches raw 4096-byte pages.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New builds a Cache sized for a modest number of hot pages; cost is
// measured in bytes so MaxCost bounds total cached page memory.
func New() (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     64 << 20, // 64MiB of cached pages
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("pagecache: %w", err)
	}
	return &Cache{c: c}, nil
}

func key(table string, pageNum uint32) string {
	return fmt.Sprintf("%s:%d", table, pageNum)
}

// Get returns a defensive copy of the cached page, if present.
func (c *Cache) Get(table string, pageNum uint32) ([]byte, bool) {
	v, ok := c.c.Get(key(table, pageNum))
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Set stores a defensive copy of page under (table, pageNum).
func (c *Cache) Set(table string, pageNum uint32, page []byte) {
	cp := make([]byte, len(page))
	copy(cp, page)
	c.c.SetWithTTL(key(table, pageNum), cp, int64(len(cp)), 0)
}

// Invalidate drops a single cached page. Page writes go through Set with the
// fresh bytes, so its only caller is InvalidateTable.
func (c *Cache) Invalidate(table string, pageNum uint32) {
	c.c.Del(key(table, pageNum))
}

// InvalidateTable drops every cached page belonging to table, given its
// current page count, used by DropTable and Vacuum before the file changes
// shape under the cache's feet.
func (c *Cache) InvalidateTable(table string, pageCount uint32) {
	for p := uint32(0); p < pageCount; p++ {
		c.Invalidate(table, p)
	}
}

// Close releases background goroutines ristretto owns.
func (c *Cache) Close() {
	c.c.Close()
}
