package store

import (
	"bytes"
	"encoding/binary"
	"testing"

	"tupledb/internal/schema"
)

func packRow(id int32, name string) []byte {
	buf := make([]byte, 0, 4+2+len(name))
	idBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(idBytes, uint32(id))
	buf = append(buf, idBytes...)
	lenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBytes, uint16(len(name)))
	buf = append(buf, lenBytes...)
	buf = append(buf, []byte(name)...)
	return buf
}

func newUsersStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	tbl, err := schema.New("users", []schema.Column{
		{Name: "id", Type: schema.Int, Length: 4},
		{Name: "name", Type: schema.Varchar, Length: 16},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	if err := s.CreateTable("users", tbl); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	return s
}

// S1: CREATE + INSERT + GET.
func TestInsertGetRoundTrip(t *testing.T) {
	s := newUsersStore(t)

	id, err := s.Insert("users", packRow(7, "ada"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != NewRecordID(0, 0) {
		t.Fatalf("expected record id 0x00000000, got %#08x", uint32(id))
	}

	body, found, err := s.Get("users", id)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	want := packRow(7, "ada")
	if !bytes.Equal(body, want) {
		t.Fatalf("got %x, want %x", body, want)
	}
}

// S2: UPDATE in place (same size).
func TestUpdateInPlace(t *testing.T) {
	s := newUsersStore(t)
	id, _ := s.Insert("users", packRow(7, "ada"))

	ok, err := s.Update("users", id, packRow(7, "bob"))
	if err != nil || !ok {
		t.Fatalf("Update: ok=%v err=%v", ok, err)
	}
	body, found, _ := s.Get("users", id)
	if !found || !bytes.Equal(body, packRow(7, "bob")) {
		t.Fatalf("got %x after in-place update", body)
	}
}

// S3: UPDATE grows, reallocates within the page.
func TestUpdateGrowsReallocates(t *testing.T) {
	s := newUsersStore(t)
	id, _ := s.Insert("users", packRow(7, "ada"))

	ok, err := s.Update("users", id, packRow(7, "abcdefghi"))
	if err != nil || !ok {
		t.Fatalf("Update: ok=%v err=%v", ok, err)
	}
	body, found, _ := s.Get("users", id)
	if !found || !bytes.Equal(body, packRow(7, "abcdefghi")) {
		t.Fatalf("got %x after growing update", body)
	}
}

// S4: DELETE and SCAN.
func TestDeleteThenScanAndGet(t *testing.T) {
	s := newUsersStore(t)
	id, _ := s.Insert("users", packRow(7, "ada"))

	ok, err := s.Delete("users", id)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}

	rows, err := s.Scan("users", nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty scan after delete, got %d rows", len(rows))
	}

	_, found, err := s.Get("users", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatalf("expected Get to report not-found after delete")
	}
}

func TestIndexConsistencyAfterInsertAndDelete(t *testing.T) {
	s := newUsersStore(t)
	id, _ := s.Insert("users", packRow(42, "carol"))

	ids, err := s.Find("users", "42")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected bucket to contain inserted id, got %v", ids)
	}

	s.Delete("users", id)
	ids, err = s.Find("users", "42")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected id removed from bucket after delete, got %v", ids)
	}
}

func TestVacuumRemovesTombstonesAndReinserts(t *testing.T) {
	s := newUsersStore(t)
	idA, _ := s.Insert("users", packRow(1, "a"))
	_, _ = s.Insert("users", packRow(2, "b"))
	s.Delete("users", idA)

	if err := s.Vacuum("users"); err != nil {
		t.Fatalf("Vacuum: %v", err)
	}

	rows, err := s.Scan("users", nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 live row after vacuum, got %d", len(rows))
	}

	ids, err := s.Find("users", "1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("deleted key should not reappear in the index after vacuum, got %v", ids)
	}
}

func TestOpenCloseReopenPreservesData(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	tbl, _ := schema.New("users", []schema.Column{
		{Name: "id", Type: schema.Int, Length: 4},
		{Name: "name", Type: schema.Varchar, Length: 16},
	})
	if err := s.CreateTable("users", tbl); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	id, _ := s.Insert("users", packRow(9, "zed"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := New(dir)
	if err := s2.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	body, found, err := s2.Get("users", id)
	if err != nil || !found {
		t.Fatalf("Get after reopen: found=%v err=%v", found, err)
	}
	if !bytes.Equal(body, packRow(9, "zed")) {
		t.Fatalf("data lost across reopen: %x", body)
	}
}
