// Package schema describes tables as ordered lists of typed columns and
// reads/writes the plain-text ".schema" sidecar file each table keeps next
// to its data file.
package schema

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Type is a column's storage type. INT is a fixed 4-byte little-endian
// integer; Varchar is a 2-byte length-prefixed byte string up to Length.
type Type int

const (
	Int Type = 0
	Varchar Type = 1
)

func (t Type) String() string {
	if t == Int {
		return "INT"
	}
	return "VARCHAR"
}

// Column is one field of a table: a name, a type, and a byte length (4 for
// INT, the declared maximum payload size for VARCHAR).
type Column struct {
	Name   string
	Type   Type
	Length uint32
}

// Table is an ordered sequence of Columns. Column 0 is the index column
// that drives the hash index; column names must be unique within a table.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnIndex returns the position of name within t's columns, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func validate(cols []Column) error {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return fmt.Errorf("schema: duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if c.Type == Int && c.Length != 4 {
			return fmt.Errorf("schema: INT column %q must have length 4", c.Name)
		}
	}
	return nil
}

// New builds a Table, rejecting duplicate column names.
func New(name string, cols []Column) (Table, error) {
	if err := validate(cols); err != nil {
		return Table{}, err
	}
	return Table{Name: name, Columns: cols}, nil
}

// Load reads a "<table>.schema" file: line 1 is the column count, lines
// 2..N+1 are "name typeCode length" whitespace-separated.
func Load(path, tableName string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("schema: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return Table{}, fmt.Errorf("schema: %s: missing column count", path)
	}
	count, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return Table{}, fmt.Errorf("schema: %s: bad column count: %w", path, err)
	}

	cols := make([]Column, 0, count)
	for i := 0; i < count; i++ {
		if !sc.Scan() {
			return Table{}, fmt.Errorf("schema: %s: expected %d columns, found %d", path, count, i)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			return Table{}, fmt.Errorf("schema: %s: malformed column line %q", path, sc.Text())
		}
		typeCode, err := strconv.Atoi(fields[1])
		if err != nil {
			return Table{}, fmt.Errorf("schema: %s: bad type code: %w", path, err)
		}
		length, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return Table{}, fmt.Errorf("schema: %s: bad length: %w", path, err)
		}
		cols = append(cols, Column{Name: fields[0], Type: Type(typeCode), Length: uint32(length)})
	}
	if err := sc.Err(); err != nil {
		return Table{}, fmt.Errorf("schema: %s: %w", path, err)
	}
	return New(tableName, cols)
}

// Save writes t to path in the same text format Load reads.
func Save(path string, t Table) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(t.Columns))
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "%s %d %d\n", c.Name, int(c.Type), c.Length)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("schema: write %s: %w", path, err)
	}
	return nil
}

// ParseTypeLabel parses a statement-tree type label ("INT" or "VARCHAR(N)")
// into a Type and byte length.
func ParseTypeLabel(label string) (Type, uint32, error) {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if upper == "INT" {
		return Int, 4, nil
	}
	if strings.HasPrefix(upper, "VARCHAR(") && strings.HasSuffix(upper, ")") {
		inner := upper[len("VARCHAR(") : len(upper)-1]
		n, err := strconv.ParseUint(inner, 10, 32)
		if err != nil || n == 0 {
			return 0, 0, fmt.Errorf("schema: malformed type label %q", label)
		}
		return Varchar, uint32(n), nil
	}
	return 0, 0, fmt.Errorf("schema: malformed type label %q", label)
}
