package schema

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	tbl, err := New("users", []Column{
		{Name: "id", Type: Int, Length: 4},
		{Name: "name", Type: Varchar, Length: 16},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := filepath.Join(t.TempDir(), "users.schema")
	if err := Save(path, tbl); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path, "users")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Columns) != 2 || got.Columns[0].Name != "id" || got.Columns[1].Length != 16 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New("t", []Column{
		{Name: "a", Type: Int, Length: 4},
		{Name: "a", Type: Varchar, Length: 8},
	})
	if err == nil {
		t.Fatalf("expected error for duplicate column name")
	}
}

func TestParseTypeLabel(t *testing.T) {
	if typ, l, err := ParseTypeLabel("INT"); err != nil || typ != Int || l != 4 {
		t.Fatalf("INT: got %v %v %v", typ, l, err)
	}
	if typ, l, err := ParseTypeLabel("VARCHAR(16)"); err != nil || typ != Varchar || l != 16 {
		t.Fatalf("VARCHAR(16): got %v %v %v", typ, l, err)
	}
	if _, _, err := ParseTypeLabel("VARCHAR()"); err == nil {
		t.Fatalf("expected error for empty VARCHAR length")
	}
}
