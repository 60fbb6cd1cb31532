package exec

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"tupledb/internal/ast"
	"tupledb/internal/schema"
	"tupledb/internal/store"
)

// Executor binds the statement tree to a live Store, implementing the five
// statement shapes' runtime semantics.
type Executor struct {
	store *store.Store
	log   *logrus.Entry
}

// New builds an Executor over an already-open Store.
func New(s *store.Store) *Executor {
	return &Executor{store: s, log: logrus.WithField("component", "exec")}
}

// CreateTable parses each column's type label and registers the table.
func (e *Executor) CreateTable(stmt *ast.CreateTable) error {
	cols := make([]schema.Column, 0, len(stmt.Columns))
	for _, c := range stmt.Columns {
		typ, length, err := schema.ParseTypeLabel(c.TypeLabel)
		if err != nil {
			return err
		}
		cols = append(cols, schema.Column{Name: c.Name, Type: typ, Length: length})
	}
	sch, err := schema.New(stmt.TableName, cols)
	if err != nil {
		return err
	}
	return e.store.CreateTable(stmt.TableName, sch)
}

// Insert packs stmt's values under the target table's schema and stores the
// resulting record.
func (e *Executor) Insert(stmt *ast.Insert) (store.RecordID, error) {
	sch, err := e.store.TableSchema(stmt.TableName)
	if err != nil {
		return 0, err
	}
	record := Pack(sch, stmt.Values)
	return e.store.Insert(stmt.TableName, record)
}

// Delete scans the target table's matching records and removes each one.
func (e *Executor) Delete(stmt *ast.Delete) (int, error) {
	sch, err := e.store.TableSchema(stmt.TableName)
	if err != nil {
		return 0, err
	}
	filter, err := buildFilter(sch, stmt.Where)
	if err != nil {
		return 0, err
	}

	var ids []store.RecordID
	_, err = e.store.Scan(stmt.TableName, filter, func(id store.RecordID, _ []byte) bool {
		ids = append(ids, id)
		return true
	}, nil, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		ok, err := e.store.Delete(stmt.TableName, id)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// Select runs the full query pipeline: filtered+limited base scan, optional
// hash join, optional single-aggregate grouping, scalar function evaluation,
// projection, and ORDER BY - in that order, preserving the documented quirks
// recorded in SPEC_FULL.md (LIMIT truncates the base scan; ORDER BY looks up
// the same mutable projection list the aggregate/scalar steps extend).
func (e *Executor) Select(stmt *ast.Select) ([]string, [][]string, error) {
	baseSchema, err := e.store.TableSchema(stmt.TableName)
	if err != nil {
		return nil, nil, err
	}
	filter, err := buildFilter(baseSchema, stmt.Where)
	if err != nil {
		return nil, nil, err
	}

	leftRaws, err := e.store.Scan(stmt.TableName, filter, nil, nil, stmt.Limit)
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	var resultSchema []string

	if stmt.JoinTable != "" {
		rows, resultSchema, err = e.runJoin(stmt, baseSchema, leftRaws)
		if err != nil {
			return nil, nil, err
		}
	} else {
		rows, err = unpackAll(baseSchema, leftRaws)
		if err != nil {
			return nil, nil, err
		}
		resultSchema = columnNames(baseSchema)
	}

	if len(stmt.AggregateFunctions) > 0 {
		rows, resultSchema, err = applyAggregate(rows, resultSchema, stmt.GroupBy, stmt.AggregateFunctions[0])
		if err != nil {
			return nil, nil, err
		}
	}

	for _, call := range stmt.ScalarFunctions {
		var name string
		rows, name, err = applyScalar(rows, resultSchema, call)
		if err != nil {
			return nil, nil, err
		}
		resultSchema = append(resultSchema, name)
	}

	// columns is the projection list: the lowering step already names
	// fn(col) entries identically to resultSchema's aggregate/scalar
	// columns, so no further appends happen here.
	columns := stmt.Columns
	outSchema, outRows, err := project(resultSchema, rows, columns)
	if err != nil {
		return nil, nil, err
	}

	if stmt.OrderBy != "" {
		// A SELECT * (empty projection list) still orders against the full
		// result schema when there is no join. A join's qualified column
		// names never make it into the projection list, so an empty list
		// stays empty there and the lookup still misses, preserving the
		// join-qualified-name quirk.
		lookup := columns
		if len(lookup) == 0 && stmt.JoinTable == "" {
			lookup = outSchema
		}
		idx := indexOf(lookup, stmt.OrderBy)
		if idx >= 0 {
			sort.SliceStable(outRows, func(i, j int) bool {
				return outRows[i][idx] < outRows[j][idx]
			})
		}
	}

	return outSchema, outRows, nil
}

func (e *Executor) runJoin(stmt *ast.Select, baseSchema schema.Table, leftRaws [][]byte) ([][]string, []string, error) {
	joinSchema, err := e.store.TableSchema(stmt.JoinTable)
	if err != nil {
		return nil, nil, err
	}
	rightRaws, err := e.store.Scan(stmt.JoinTable, nil, nil, nil, 0)
	if err != nil {
		return nil, nil, err
	}

	leftRows, err := unpackAll(baseSchema, leftRaws)
	if err != nil {
		return nil, nil, err
	}
	rightRows, err := unpackAll(joinSchema, rightRaws)
	if err != nil {
		return nil, nil, err
	}

	leftJoinIdx := baseSchema.ColumnIndex(stmt.JoinLeftColumn)
	if leftJoinIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrJoinColumnMissing, stmt.JoinLeftColumn)
	}
	rightJoinIdx := joinSchema.ColumnIndex(stmt.JoinRightColumn)
	if rightJoinIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrJoinColumnMissing, stmt.JoinRightColumn)
	}

	rows := hashJoin(leftRows, rightRows, leftJoinIdx, rightJoinIdx)

	schemaNames := make([]string, 0, len(baseSchema.Columns)+len(joinSchema.Columns))
	for _, c := range baseSchema.Columns {
		schemaNames = append(schemaNames, stmt.TableName+"."+c.Name)
	}
	for _, c := range joinSchema.Columns {
		schemaNames = append(schemaNames, stmt.JoinTable+"."+c.Name)
	}
	return rows, schemaNames, nil
}

// CTAS runs the embedded SELECT and creates a new table carrying the
// *source* table's full schema - not the projected columns - per the
// documented quirk preserved from the original.
func (e *Executor) CTAS(stmt *ast.CTAS) (int, error) {
	sourceSchema, err := e.store.TableSchema(stmt.Select.TableName)
	if err != nil {
		return 0, err
	}
	_, rows, err := e.Select(stmt.Select)
	if err != nil {
		return 0, err
	}

	newSchema, err := schema.New(stmt.TableName, sourceSchema.Columns)
	if err != nil {
		return 0, err
	}
	if err := e.store.CreateTable(stmt.TableName, newSchema); err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		record := Pack(newSchema, row)
		if _, err := e.store.Insert(stmt.TableName, record); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func unpackAll(sch schema.Table, raws [][]byte) ([][]string, error) {
	rows := make([][]string, len(raws))
	for i, raw := range raws {
		values, err := Unpack(sch, raw)
		if err != nil {
			return nil, err
		}
		rows[i] = values
	}
	return rows, nil
}

func columnNames(sch schema.Table) []string {
	names := make([]string, len(sch.Columns))
	for i, c := range sch.Columns {
		names[i] = c.Name
	}
	return names
}

// project selects columns named in wanted out of the rows/schema produced
// by the pipeline so far. An empty wanted list returns every column, the
// SELECT * case.
func project(resultSchema []string, rows [][]string, wanted []string) ([]string, [][]string, error) {
	if len(wanted) == 0 {
		return resultSchema, rows, nil
	}
	idxs := make([]int, len(wanted))
	for i, name := range wanted {
		idx := indexOf(resultSchema, name)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		idxs[i] = idx
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		projected := make([]string, len(idxs))
		for j, idx := range idxs {
			projected[j] = row[idx]
		}
		out[i] = projected
	}
	return wanted, out, nil
}
