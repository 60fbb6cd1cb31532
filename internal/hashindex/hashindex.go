// Package hashindex implements the in-memory, disk-backed primary-column
// hash index: a fixed array of 1024 buckets mapping a column-0 string key
// to the record identifiers sharing that key.
package hashindex

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// BucketCount is the fixed number of buckets an index file always has,
// one line per bucket.
const BucketCount = 1024

// Index holds the in-memory bucket array for one table.
type Index struct {
	buckets [BucketCount][]uint32
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Bucket hashes key into [0, BucketCount).
func Bucket(key string) int {
	return int(xxhash.Sum64String(key) % BucketCount)
}

// Add appends id to bucket b, skipping if already present.
func (idx *Index) Add(b int, id uint32) {
	for _, existing := range idx.buckets[b] {
		if existing == id {
			return
		}
	}
	idx.buckets[b] = append(idx.buckets[b], id)
}

// RemoveFromBucket removes id from bucket b, reporting whether it was found.
func (idx *Index) RemoveFromBucket(b int, id uint32) bool {
	bucket := idx.buckets[b]
	for i, existing := range bucket {
		if existing == id {
			idx.buckets[b] = append(bucket[:i], bucket[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAnywhere scans every bucket looking for id, mirroring the original
// delete path which does not recompute the key to find the owning bucket.
func (idx *Index) RemoveAnywhere(id uint32) bool {
	for b := range idx.buckets {
		if idx.RemoveFromBucket(b, id) {
			return true
		}
	}
	return false
}

// Lookup returns a copy of bucket b's contents for the given key.
func (idx *Index) Lookup(key string) []uint32 {
	b := Bucket(key)
	out := make([]uint32, len(idx.buckets[b]))
	copy(out, idx.buckets[b])
	return out
}

// Clear empties every bucket, used before a VACUUM rebuild repopulates them.
func (idx *Index) Clear() {
	for b := range idx.buckets {
		idx.buckets[b] = nil
	}
}

// Load reads a "<table>.index" file: exactly BucketCount lines, each a
// comma-separated, deduped list of record ids. A missing file yields an
// empty index (a table may not have been flushed yet).
func Load(path string) (*Index, error) {
	idx := New()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hashindex: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	b := 0
	for sc.Scan() && b < BucketCount {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			for _, tok := range strings.Split(line, ",") {
				id, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
				if err != nil {
					return nil, fmt.Errorf("hashindex: %s: bad record id %q: %w", path, tok, err)
				}
				idx.Add(b, uint32(id))
			}
		}
		b++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("hashindex: %s: %w", path, err)
	}
	return idx, nil
}

// Save truncate-rewrites path with exactly BucketCount lines.
func Save(path string, idx *Index) error {
	var sb strings.Builder
	for b := 0; b < BucketCount; b++ {
		ids := idx.buckets[b]
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatUint(uint64(id), 10)
		}
		sb.WriteString(strings.Join(parts, ","))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("hashindex: write %s: %w", path, err)
	}
	return nil
}
