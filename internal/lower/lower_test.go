package lower

import (
	"encoding/json"
	"testing"

	"tupledb/internal/ast"
)

// These tests exercise the tree-walking functions directly against
// hand-built fragments shaped like libpg_query's JSON output, rather than
// invoking the real SQL parser, so they stay deterministic and fast.

func mustMap(t *testing.T, js string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(js), &m); err != nil {
		t.Fatalf("bad test fixture JSON: %v", err)
	}
	return m
}

func TestLowerCreateTable(t *testing.T) {
	body := mustMap(t, `{
		"relation": {"relname": "users"},
		"tableElts": [
			{"ColumnDef": {"colname": "id", "typeName": {"names": [{"String":{"sval":"pg_catalog"}},{"String":{"sval":"int4"}}]}}},
			{"ColumnDef": {"colname": "name", "typeName": {"names": [{"String":{"sval":"varchar"}}], "typmods": [{"A_Const":{"ival":{"ival":16}}}]}}}
		]
	}`)

	stmt, err := lowerCreateTable(body)
	if err != nil {
		t.Fatalf("lowerCreateTable: %v", err)
	}
	ct := stmt.(*ast.CreateTable)
	if ct.TableName != "users" {
		t.Fatalf("table name: %q", ct.TableName)
	}
	if len(ct.Columns) != 2 || ct.Columns[0].TypeLabel != "INT" || ct.Columns[1].TypeLabel != "VARCHAR(16)" {
		t.Fatalf("columns: %+v", ct.Columns)
	}
}

func TestLowerInsert(t *testing.T) {
	body := mustMap(t, `{
		"relation": {"relname": "users"},
		"selectStmt": {"SelectStmt": {"valuesLists": [{"List": {"items": [
			{"A_Const": {"ival": {"ival": 7}}},
			{"A_Const": {"sval": {"sval": "ada"}}}
		]}}]}}
	}`)

	stmt, err := lowerInsert(body)
	if err != nil {
		t.Fatalf("lowerInsert: %v", err)
	}
	ins := stmt.(*ast.Insert)
	if len(ins.Values) != 2 || ins.Values[0] != "7" || ins.Values[1] != "ada" {
		t.Fatalf("values: %+v", ins.Values)
	}
}

func TestLowerSelectWhereOrderLimit(t *testing.T) {
	body := mustMap(t, `{
		"fromClause": [{"RangeVar": {"relname": "t"}}],
		"targetList": [{"ResTarget": {"val": {"ColumnRef": {"fields": [{"String":{"sval":"a"}}]}}}}],
		"whereClause": {"A_Expr": {
			"name": [{"String":{"sval":">"}}],
			"lexpr": {"ColumnRef": {"fields": [{"String":{"sval":"a"}}]}},
			"rexpr": {"A_Const": {"sval": {"sval": "1"}}}
		}},
		"limitCount": {"A_Const": {"ival": {"ival": 1}}}
	}`)

	stmt, err := lowerSelect(body)
	if err != nil {
		t.Fatalf("lowerSelect: %v", err)
	}
	sel := stmt.(*ast.Select)
	if sel.TableName != "t" || len(sel.Columns) != 1 || sel.Columns[0] != "a" {
		t.Fatalf("select: %+v", sel)
	}
	if sel.Where == nil || sel.Where.Column != "a" || sel.Where.Op != ast.Gt || sel.Where.Value != "1" {
		t.Fatalf("where: %+v", sel.Where)
	}
	if sel.Limit != 1 {
		t.Fatalf("limit: %d", sel.Limit)
	}
}

func TestLowerSelectStarClearsColumns(t *testing.T) {
	body := mustMap(t, `{
		"fromClause": [{"RangeVar": {"relname": "t"}}],
		"targetList": [{"ResTarget": {"val": {"ColumnRef": {"fields": [{"A_Star": {}}]}}}}]
	}`)
	stmt, err := lowerSelect(body)
	if err != nil {
		t.Fatalf("lowerSelect: %v", err)
	}
	sel := stmt.(*ast.Select)
	if sel.Columns != nil {
		t.Fatalf("expected nil columns for SELECT *, got %+v", sel.Columns)
	}
}

func TestLowerSelectJoin(t *testing.T) {
	body := mustMap(t, `{
		"fromClause": [{"JoinExpr": {
			"larg": {"RangeVar": {"relname": "l"}},
			"rarg": {"RangeVar": {"relname": "r"}},
			"quals": {"A_Expr": {
				"lexpr": {"ColumnRef": {"fields": [{"String":{"sval":"l"}},{"String":{"sval":"k"}}]}},
				"rexpr": {"ColumnRef": {"fields": [{"String":{"sval":"r"}},{"String":{"sval":"k"}}]}}
			}}
		}}],
		"targetList": [{"ResTarget": {"val": {"ColumnRef": {"fields": [{"A_Star": {}}]}}}}]
	}`)
	stmt, err := lowerSelect(body)
	if err != nil {
		t.Fatalf("lowerSelect: %v", err)
	}
	sel := stmt.(*ast.Select)
	if sel.TableName != "l" || sel.JoinTable != "r" || !sel.UseHashJoin {
		t.Fatalf("join: %+v", sel)
	}
	if sel.JoinLeftColumn != "k" || sel.JoinRightColumn != "k" {
		t.Fatalf("join columns: left=%q right=%q", sel.JoinLeftColumn, sel.JoinRightColumn)
	}
}

func TestLowerSelectAggregate(t *testing.T) {
	body := mustMap(t, `{
		"fromClause": [{"RangeVar": {"relname": "t"}}],
		"targetList": [
			{"ResTarget": {"val": {"ColumnRef": {"fields": [{"String":{"sval":"g"}}]}}}},
			{"ResTarget": {"val": {"FuncCall": {"funcname": [{"String":{"sval":"max"}}], "args": [{"ColumnRef": {"fields": [{"String":{"sval":"a"}}]}}]}}}}
		],
		"groupClause": [{"ColumnRef": {"fields": [{"String":{"sval":"g"}}]}}]
	}`)
	stmt, err := lowerSelect(body)
	if err != nil {
		t.Fatalf("lowerSelect: %v", err)
	}
	sel := stmt.(*ast.Select)
	if len(sel.AggregateFunctions) != 1 || sel.AggregateFunctions[0].FuncName != "max" || sel.AggregateFunctions[0].Column != "a" {
		t.Fatalf("aggregates: %+v", sel.AggregateFunctions)
	}
	if len(sel.GroupBy) != 1 || sel.GroupBy[0] != "g" {
		t.Fatalf("group by: %+v", sel.GroupBy)
	}
}

func TestLowerDelete(t *testing.T) {
	body := mustMap(t, `{
		"relation": {"relname": "t"},
		"whereClause": {"A_Expr": {
			"name": [{"String":{"sval":"="}}],
			"lexpr": {"ColumnRef": {"fields": [{"String":{"sval":"a"}}]}},
			"rexpr": {"A_Const": {"ival": {"ival": 3}}}
		}}
	}`)
	stmt, err := lowerDelete(body)
	if err != nil {
		t.Fatalf("lowerDelete: %v", err)
	}
	del := stmt.(*ast.Delete)
	if del.TableName != "t" || del.Where == nil || del.Where.Value != "3" {
		t.Fatalf("delete: %+v", del)
	}
}

func TestLowerCTASInheritsSelect(t *testing.T) {
	body := mustMap(t, `{
		"into": {"rel": {"relname": "snapshot"}},
		"query": {"SelectStmt": {
			"fromClause": [{"RangeVar": {"relname": "t"}}],
			"targetList": [{"ResTarget": {"val": {"ColumnRef": {"fields": [{"String":{"sval":"a"}}]}}}}]
		}}
	}`)
	stmt, err := lowerCTAS(body)
	if err != nil {
		t.Fatalf("lowerCTAS: %v", err)
	}
	ctas := stmt.(*ast.CTAS)
	if ctas.TableName != "snapshot" || ctas.Select.TableName != "t" {
		t.Fatalf("ctas: %+v", ctas)
	}
}
