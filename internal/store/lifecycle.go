package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tupledb/internal/hashindex"
	"tupledb/internal/pagecache"
	"tupledb/internal/schema"
)

func (s *Store) dataPath(name string) string   { return filepath.Join(s.dir, name+".db") }
func (s *Store) schemaPath(name string) string { return filepath.Join(s.dir, name+".schema") }
func (s *Store) indexPath(name string) string  { return filepath.Join(s.dir, name+".index") }

// Open ensures the storage directory exists, loads every "*.schema" file it
// finds, and for each known table loads (or lazily initializes) its hash
// index bucket array from "<table>.index".
func (s *Store) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", s.dir, err)
	}

	cache, err := pagecache.New()
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	s.cache = cache

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("store: readdir %s: %w", s.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".schema") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".schema")
		sch, err := schema.Load(s.schemaPath(name), name)
		if err != nil {
			return err
		}
		idx, err := hashindex.Load(s.indexPath(name))
		if err != nil {
			return err
		}
		fh, err := openFileHandle(s.dataPath(name), name, s.cache)
		if err != nil {
			return err
		}
		s.tables[name] = &table{name: name, schema: sch, file: fh, index: idx}
		s.log.WithField("table", name).Debug("loaded table")
	}

	s.open = true
	return nil
}

// Close flushes every table's bucket array to its index file and closes
// every open data file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	for name, t := range s.tables {
		if err := hashindex.Save(s.indexPath(name), t.index); err != nil {
			return err
		}
		if err := t.file.close(); err != nil {
			return err
		}
	}
	if s.cache != nil {
		s.cache.Close()
	}
	s.open = false
	return nil
}

// CreateTable fails if <name>.db or <name>.schema already exists; otherwise
// it writes an initial empty page, writes the schema file, and registers
// the table in memory with an empty index.
func (s *Store) CreateTable(name string, sch schema.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}
	if _, exists := s.tables[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, name)
	}
	if _, err := os.Stat(s.dataPath(name)); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, name)
	}
	if _, err := os.Stat(s.schemaPath(name)); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, name)
	}

	fh, err := openFileHandle(s.dataPath(name), name, s.cache)
	if err != nil {
		return err
	}
	if err := fh.writePage(0, newEmptyPage()); err != nil {
		return err
	}
	if err := schema.Save(s.schemaPath(name), sch); err != nil {
		return err
	}

	s.tables[name] = &table{name: name, schema: sch, file: fh, index: hashindex.New()}
	s.log.WithField("table", name).Debug("created table")
	return nil
}

// DropTable removes all three of a table's files and forgets it in memory.
// The index file may legitimately be absent (a fresh table never mutated);
// its absence is not an error.
func (s *Store) DropTable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNotOpen
	}
	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	pages, _ := t.file.totalPages()
	if err := t.file.close(); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateTable(name, pages)
	}
	if err := os.Remove(s.dataPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", s.dataPath(name), err)
	}
	if err := os.Remove(s.schemaPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", s.schemaPath(name), err)
	}
	if err := os.Remove(s.indexPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove %s: %w", s.indexPath(name), err)
	}
	delete(s.tables, name)
	return nil
}

// ListTables returns every known table name, unsorted-stable order not
// guaranteed beyond map iteration.
func (s *Store) ListTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	return names
}

// TableSchema returns the schema for an open table.
func (s *Store) TableSchema(name string) (schema.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return schema.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t.schema, nil
}
