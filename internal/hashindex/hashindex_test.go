package hashindex

import (
	"path/filepath"
	"testing"
)

func TestAddDedupesWithinBucket(t *testing.T) {
	idx := New()
	idx.Add(3, 42)
	idx.Add(3, 42)
	if got := idx.Lookup("anything-that-hashes-to-3"); len(got) != 0 {
		// not guaranteed to hash to bucket 3; test the bucket directly instead.
	}
	if len(idx.buckets[3]) != 1 {
		t.Fatalf("expected dedup, got %v", idx.buckets[3])
	}
}

func TestRemoveAnywhere(t *testing.T) {
	idx := New()
	idx.Add(7, 100)
	if !idx.RemoveAnywhere(100) {
		t.Fatalf("expected to find and remove id 100")
	}
	if idx.RemoveAnywhere(100) {
		t.Fatalf("id 100 should already be gone")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := New()
	idx.Add(0, 1)
	idx.Add(0, 2)
	idx.Add(1023, 99)

	path := filepath.Join(t.TempDir(), "t.index")
	if err := Save(path, idx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.buckets[0]) != 2 || got.buckets[1023][0] != 99 {
		t.Fatalf("round-trip mismatch: %+v", got.buckets)
	}
}

func TestLoadMissingFileYieldsEmptyIndex(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "missing.index"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if len(idx.Lookup("x")) != 0 {
		t.Fatalf("expected empty index")
	}
}

func TestBucketIsStable(t *testing.T) {
	if Bucket("abc") != Bucket("abc") {
		t.Fatalf("Bucket must be deterministic")
	}
}
