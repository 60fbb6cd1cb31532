package exec

import (
	"testing"

	"tupledb/internal/ast"
	"tupledb/internal/store"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	s := store.New(t.TempDir())
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func mustInsert(t *testing.T, e *Executor, table string, values ...string) {
	t.Helper()
	if _, err := e.Insert(&ast.Insert{TableName: table, Values: values}); err != nil {
		t.Fatalf("Insert into %s: %v", table, err)
	}
}

func newUsersExecutor(t *testing.T) *Executor {
	t.Helper()
	e := newExecutor(t)
	if err := e.CreateTable(&ast.CreateTable{
		TableName: "users",
		Columns: []ast.ColumnDef{
			{Name: "id", TypeLabel: "INT"},
			{Name: "name", TypeLabel: "VARCHAR(16)"},
			{Name: "age", TypeLabel: "INT"},
		},
	}); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	mustInsert(t, e, "users", "1", "ada", "30")
	mustInsert(t, e, "users", "2", "bob", "25")
	mustInsert(t, e, "users", "3", "carol", "40")
	return e
}

// S5: WHERE filters the scan and LIMIT truncates the base scan.
func TestSelectWhereAndLimit(t *testing.T) {
	e := newUsersExecutor(t)

	cols, rows, err := e.Select(&ast.Select{
		TableName: "users",
		Columns:   []string{"name"},
		Where:     &ast.Predicate{Column: "age", Op: ast.Gt, Value: "20"},
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(cols) != 1 || cols[0] != "name" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("expected LIMIT 2 to truncate the base scan, got %d rows", len(rows))
	}
}

func TestSelectStarReturnsAllColumns(t *testing.T) {
	e := newUsersExecutor(t)

	cols, rows, err := e.Select(&ast.Select{TableName: "users"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected all 3 columns, got %v", cols)
	}
	if len(rows) != 3 {
		t.Fatalf("expected all 3 rows, got %d", len(rows))
	}
}

// A star projection has no explicit column list to look the order-by name
// up against; without a join, it falls back to the full result schema.
func TestSelectStarOrdersByFullSchema(t *testing.T) {
	e := newUsersExecutor(t)

	_, rows, err := e.Select(&ast.Select{TableName: "users", OrderBy: "name"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	got := []string{rows[0][1], rows[1][1], rows[2][1]}
	want := []string{"ada", "bob", "carol"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected rows sorted by name %v, got %v", want, got)
		}
	}
}

// S6: hash join across two tables.
func TestSelectHashJoin(t *testing.T) {
	e := newUsersExecutor(t)
	if err := e.CreateTable(&ast.CreateTable{
		TableName: "orders",
		Columns: []ast.ColumnDef{
			{Name: "order_id", TypeLabel: "INT"},
			{Name: "user_id", TypeLabel: "INT"},
		},
	}); err != nil {
		t.Fatalf("CreateTable orders: %v", err)
	}
	mustInsert(t, e, "orders", "100", "1")
	mustInsert(t, e, "orders", "101", "2")
	mustInsert(t, e, "orders", "102", "1")

	cols, rows, err := e.Select(&ast.Select{
		TableName:       "users",
		JoinTable:       "orders",
		JoinLeftColumn:  "id",
		JoinRightColumn: "user_id",
		UseHashJoin:     true,
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(cols) != 5 {
		t.Fatalf("expected 3 users columns + 2 orders columns, got %v", cols)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 matching order rows, got %d", len(rows))
	}
}

// ORDER BY on a qualified JOIN column silently no-ops, since it never made
// it into the projection list the executor looks order-by names up against.
func TestSelectOrderByOnJoinQualifiedColumnIsANoOp(t *testing.T) {
	e := newUsersExecutor(t)
	if err := e.CreateTable(&ast.CreateTable{
		TableName: "orders",
		Columns: []ast.ColumnDef{
			{Name: "order_id", TypeLabel: "INT"},
			{Name: "user_id", TypeLabel: "INT"},
		},
	}); err != nil {
		t.Fatalf("CreateTable orders: %v", err)
	}
	mustInsert(t, e, "orders", "100", "1")
	mustInsert(t, e, "orders", "101", "2")

	_, rows, err := e.Select(&ast.Select{
		TableName:       "users",
		JoinTable:       "orders",
		JoinLeftColumn:  "id",
		JoinRightColumn: "user_id",
		OrderBy:         "orders.order_id",
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 joined rows, got %d", len(rows))
	}
}

func TestSelectGroupByMaxAggregate(t *testing.T) {
	e := newExecutor(t)
	if err := e.CreateTable(&ast.CreateTable{
		TableName: "sales",
		Columns: []ast.ColumnDef{
			{Name: "region", TypeLabel: "VARCHAR(8)"},
			{Name: "amount", TypeLabel: "VARCHAR(8)"},
		},
	}); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	mustInsert(t, e, "sales", "east", "30")
	mustInsert(t, e, "sales", "east", "45")
	mustInsert(t, e, "sales", "west", "10")

	cols, rows, err := e.Select(&ast.Select{
		TableName:          "sales",
		Columns:            []string{"region", "max(amount)"},
		GroupBy:            []string{"region"},
		AggregateFunctions: []ast.AggregateCall{{FuncName: "max", Column: "amount"}},
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(cols) != 2 || cols[1] != "max(amount)" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(rows))
	}
	for _, row := range rows {
		if row[0] == "east" && row[1] != "45" {
			t.Fatalf("expected east's max to be the lexicographic max \"45\", got %s", row[1])
		}
	}
}

func TestSelectScalarUpperAndSubstr(t *testing.T) {
	e := newUsersExecutor(t)

	cols, rows, err := e.Select(&ast.Select{
		TableName: "users",
		Columns:   []string{"name", "upper(name)", "substr(name)"},
		ScalarFunctions: []ast.ScalarCall{
			{FuncName: "upper", Args: []string{"name"}},
			{FuncName: "substr", Args: []string{"name", "0", "2"}},
		},
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(cols) != 3 || cols[1] != "upper(name)" || cols[2] != "substr(name)" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	for _, row := range rows {
		if row[1] != asciiUpper(row[0]) {
			t.Fatalf("expected upper(%s) == %s, got %s", row[0], asciiUpper(row[0]), row[1])
		}
		if row[2] != row[0][:2] {
			t.Fatalf("expected substr(%s, 0, 2) == %s, got %s", row[0], row[0][:2], row[2])
		}
	}
}

func TestDeleteRemovesMatchingRows(t *testing.T) {
	e := newUsersExecutor(t)

	count, err := e.Delete(&ast.Delete{
		TableName: "users",
		Where:     &ast.Predicate{Column: "age", Op: ast.Lt, Value: "30"},
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row deleted, got %d", count)
	}

	_, rows, err := e.Select(&ast.Select{TableName: "users"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows remaining, got %d", len(rows))
	}
}

// CTAS inherits the *source* table's full schema, not the projected
// columns - a documented quirk, not a bug.
func TestCTASInheritsSourceSchemaNotProjection(t *testing.T) {
	e := newUsersExecutor(t)

	count, err := e.CTAS(&ast.CTAS{
		TableName: "young_users",
		Select: &ast.Select{
			TableName: "users",
			Columns:   []string{"name"},
			Where:     &ast.Predicate{Column: "age", Op: ast.Lt, Value: "35"},
		},
	})
	if err != nil {
		t.Fatalf("CTAS: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows copied, got %d", count)
	}

	sch, err := e.store.TableSchema("young_users")
	if err != nil {
		t.Fatalf("TableSchema: %v", err)
	}
	if len(sch.Columns) != 3 {
		t.Fatalf("expected the new table to inherit all 3 source columns, got %d", len(sch.Columns))
	}
}

func TestSelectUnknownColumnInProjectionErrors(t *testing.T) {
	e := newUsersExecutor(t)

	_, _, err := e.Select(&ast.Select{
		TableName: "users",
		Columns:   []string{"nope"},
	})
	if err == nil {
		t.Fatalf("expected an error for an unknown projected column")
	}
}
