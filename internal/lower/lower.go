// Package lower consumes a parsed SQL syntax tree (pg_query_go's JSON
// output, shaped like libpg_query's own protobuf tree) and emits a
// tupledb/internal/ast statement. It does not interpret SQL syntax itself;
// it walks the already-parsed tree by key name.
package lower

import (
	"encoding/json"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"

	"tupledb/internal/ast"
)

// Lower parses sql with the third-party SQL parser and lowers its syntax
// tree into a single ast.Statement.
func Lower(sql string) (ast.Statement, error) {
	raw, err := pg_query.ParseToJSON(sql)
	if err != nil {
		return nil, fmt.Errorf("lower: parse: %w", err)
	}

	var tree map[string]any
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, fmt.Errorf("lower: unmarshal parse tree: %w", err)
	}

	stmts, ok := asList(tree["stmts"])
	if !ok || len(stmts) == 0 {
		return nil, fmt.Errorf("lower: missing-tree-keys: no statements")
	}
	stmtWrapper, ok := asMap(stmts[0])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: malformed stmt wrapper")
	}
	stmt, ok := asMap(stmtWrapper["stmt"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: malformed stmt")
	}

	for tag, body := range stmt {
		bodyMap, ok := asMap(body)
		if !ok {
			return nil, fmt.Errorf("lower: missing-tree-keys: %s body is not a map", tag)
		}
		switch tag {
		case "CreateStmt":
			return lowerCreateTable(bodyMap)
		case "InsertStmt":
			return lowerInsert(bodyMap)
		case "SelectStmt":
			return lowerSelect(bodyMap)
		case "DeleteStmt":
			return lowerDelete(bodyMap)
		case "CreateTableAsStmt":
			return lowerCTAS(bodyMap)
		}
	}
	return nil, fmt.Errorf("lower: unknown-statement")
}

// --- CreateTable --------------------------------------------------------

func lowerCreateTable(body map[string]any) (ast.Statement, error) {
	relation, ok := asMap(body["relation"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: CreateStmt.relation")
	}
	tableName, ok := asString(relation["relname"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: relation.relname")
	}

	elts, _ := asList(body["tableElts"])
	cols := make([]ast.ColumnDef, 0, len(elts))
	for _, elt := range elts {
		eltMap, ok := asMap(elt)
		if !ok {
			continue
		}
		colDef, ok := asMap(eltMap["ColumnDef"])
		if !ok {
			continue
		}
		name, _ := asString(colDef["colname"])
		label, err := columnTypeLabel(colDef)
		if err != nil {
			return nil, err
		}
		cols = append(cols, ast.ColumnDef{Name: name, TypeLabel: label})
	}

	return &ast.CreateTable{TableName: tableName, Columns: cols}, nil
}

func columnTypeLabel(colDef map[string]any) (string, error) {
	typeName, ok := asMap(colDef["typeName"])
	if !ok {
		return "", fmt.Errorf("lower: missing-tree-keys: ColumnDef.typeName")
	}
	names, ok := asList(typeName["names"])
	if !ok || len(names) < 2 {
		return "", fmt.Errorf("lower: malformed-type-label: typeName.names")
	}
	rawName, ok := stringNodeValue(names[1])
	if !ok {
		return "", fmt.Errorf("lower: malformed-type-label: typeName.names[1]")
	}

	switch rawName {
	case "int4":
		return "INT", nil
	case "varchar":
		typmods, _ := asList(typeName["typmods"])
		if len(typmods) == 0 {
			return "", fmt.Errorf("lower: malformed-type-label: varchar missing typmods")
		}
		n, ok := aConstInt(typmods[0])
		if !ok {
			return "", fmt.Errorf("lower: malformed-type-label: varchar typmod")
		}
		return fmt.Sprintf("VARCHAR(%d)", n), nil
	default:
		return rawName, nil
	}
}

// --- Insert --------------------------------------------------------------

func lowerInsert(body map[string]any) (ast.Statement, error) {
	relation, ok := asMap(body["relation"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: InsertStmt.relation")
	}
	tableName, _ := asString(relation["relname"])

	selectStmtWrapper, ok := asMap(body["selectStmt"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: InsertStmt.selectStmt")
	}
	selectStmt, ok := asMap(selectStmtWrapper["SelectStmt"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: InsertStmt.selectStmt.SelectStmt")
	}
	valuesLists, ok := asList(selectStmt["valuesLists"])
	if !ok || len(valuesLists) == 0 {
		return nil, fmt.Errorf("lower: missing-tree-keys: valuesLists")
	}
	firstList, ok := asMap(valuesLists[0])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: valuesLists[0]")
	}
	list, ok := asMap(firstList["List"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: valuesLists[0].List")
	}
	items, _ := asList(list["items"])

	values := make([]string, 0, len(items))
	for _, item := range items {
		v, err := aConstString(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return &ast.Insert{TableName: tableName, Values: values}, nil
}

// --- Select --------------------------------------------------------------

func lowerSelect(body map[string]any) (ast.Statement, error) {
	sel, err := parseSelect(body)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func parseSelect(body map[string]any) (*ast.Select, error) {
	sel := &ast.Select{}

	fromClause, _ := asList(body["fromClause"])
	if len(fromClause) > 0 {
		fromMap, ok := asMap(fromClause[0])
		if !ok {
			return nil, fmt.Errorf("lower: missing-tree-keys: fromClause[0]")
		}
		if rangeVar, ok := asMap(fromMap["RangeVar"]); ok {
			sel.TableName, _ = asString(rangeVar["relname"])
		} else if joinExpr, ok := asMap(fromMap["JoinExpr"]); ok {
			if err := parseJoin(sel, joinExpr); err != nil {
				return nil, err
			}
		} else {
			return nil, fmt.Errorf("lower: missing-tree-keys: unrecognized fromClause[0] shape")
		}
	}

	sawStar := false
	targetList, _ := asList(body["targetList"])
	for _, target := range targetList {
		targetMap, ok := asMap(target)
		if !ok {
			continue
		}
		resTarget, ok := asMap(targetMap["ResTarget"])
		if !ok {
			continue
		}
		val, ok := asMap(resTarget["val"])
		if !ok {
			continue
		}
		if colRef, ok := asMap(val["ColumnRef"]); ok {
			star, name, err := parseColumnRef(colRef)
			if err != nil {
				return nil, err
			}
			if star {
				sawStar = true
				continue
			}
			sel.Columns = append(sel.Columns, name)
			continue
		}
		if funcCall, ok := asMap(val["FuncCall"]); ok {
			if err := parseFuncCall(sel, funcCall, body); err != nil {
				return nil, err
			}
			continue
		}
	}
	if sawStar {
		sel.Columns = nil
	}

	if groupClause, ok := asList(body["groupClause"]); ok {
		for _, g := range groupClause {
			gMap, ok := asMap(g)
			if !ok {
				continue
			}
			colRef, ok := asMap(gMap["ColumnRef"])
			if !ok {
				continue
			}
			_, name, err := parseColumnRef(colRef)
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, name)
		}
	}

	if whereClause, ok := asMap(body["whereClause"]); ok {
		pred, err := parseAExpr(whereClause)
		if err != nil {
			return nil, err
		}
		sel.Where = pred
	}

	if sortClause, ok := asList(body["sortClause"]); ok && len(sortClause) > 0 {
		sortByWrapper, ok := asMap(sortClause[0])
		if ok {
			sortBy, ok := asMap(sortByWrapper["SortBy"])
			if ok {
				node, ok := asMap(sortBy["node"])
				if ok {
					colRef, ok := asMap(node["ColumnRef"])
					if ok {
						_, name, err := parseColumnRef(colRef)
						if err != nil {
							return nil, err
						}
						sel.OrderBy = name
					}
				}
			}
		}
	}

	if body["limitCount"] != nil {
		if n, ok := aConstInt(body["limitCount"]); ok {
			sel.Limit = n
		}
	}

	return sel, nil
}

func parseJoin(sel *ast.Select, joinExpr map[string]any) error {
	larg, ok := asMap(joinExpr["larg"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: JoinExpr.larg")
	}
	largRV, ok := asMap(larg["RangeVar"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: JoinExpr.larg.RangeVar")
	}
	sel.TableName, _ = asString(largRV["relname"])

	rarg, ok := asMap(joinExpr["rarg"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: JoinExpr.rarg")
	}
	rargRV, ok := asMap(rarg["RangeVar"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: JoinExpr.rarg.RangeVar")
	}
	sel.JoinTable, _ = asString(rargRV["relname"])
	sel.UseHashJoin = true

	quals, ok := asMap(joinExpr["quals"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: JoinExpr.quals")
	}
	aExpr, ok := asMap(quals["A_Expr"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: JoinExpr.quals.A_Expr")
	}

	lexpr, ok := asMap(aExpr["lexpr"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: join A_Expr.lexpr")
	}
	lColRef, ok := asMap(lexpr["ColumnRef"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: join A_Expr.lexpr.ColumnRef")
	}
	_, lastLeft, err := lastColumnRefField(lColRef)
	if err != nil {
		return err
	}
	sel.JoinLeftColumn = lastLeft

	rexpr, ok := asMap(aExpr["rexpr"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: join A_Expr.rexpr")
	}
	rColRef, ok := asMap(rexpr["ColumnRef"])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: join A_Expr.rexpr.ColumnRef")
	}
	_, lastRight, err := lastColumnRefField(rColRef)
	if err != nil {
		return err
	}
	sel.JoinRightColumn = lastRight
	return nil
}

func parseFuncCall(sel *ast.Select, funcCall map[string]any, selectBody map[string]any) error {
	funcnameList, _ := asList(funcCall["funcname"])
	if len(funcnameList) == 0 {
		return fmt.Errorf("lower: missing-tree-keys: FuncCall.funcname")
	}
	fnName, ok := stringNodeValue(funcnameList[len(funcnameList)-1])
	if !ok {
		return fmt.Errorf("lower: missing-tree-keys: FuncCall.funcname value")
	}

	args, _ := asList(funcCall["args"])
	argStrings := make([]string, 0, len(args))
	for _, arg := range args {
		s, err := funcArgString(arg)
		if err != nil {
			return err
		}
		argStrings = append(argStrings, s)
	}

	groupClause, hasGroupBy := selectBody["groupClause"]
	if hasGroupBy && groupClause != nil {
		col := ""
		if len(argStrings) > 0 {
			col = argStrings[0]
		}
		sel.AggregateFunctions = append(sel.AggregateFunctions, ast.AggregateCall{FuncName: fnName, Column: col})
		name := fmt.Sprintf("%s(%s)", fnName, col)
		sel.Columns = append(sel.Columns, name)
		return nil
	}

	sel.ScalarFunctions = append(sel.ScalarFunctions, ast.ScalarCall{FuncName: fnName, Args: argStrings})
	colName := ""
	if len(argStrings) > 0 {
		colName = argStrings[0]
	}
	sel.Columns = append(sel.Columns, fmt.Sprintf("%s(%s)", fnName, colName))
	return nil
}

func funcArgString(arg any) (string, error) {
	argMap, ok := asMap(arg)
	if !ok {
		return "", fmt.Errorf("lower: missing-tree-keys: func arg")
	}
	if colRef, ok := asMap(argMap["ColumnRef"]); ok {
		_, name, err := parseColumnRef(colRef)
		if err != nil {
			return "", err
		}
		return name, nil
	}
	return aConstString(arg)
}

// parseColumnRef returns (isStar, qualifiedName, error). fields is a list of
// String nodes (or an A_Star marker); "table.col" is produced by joining
// every String field's sval with ".".
func parseColumnRef(colRef map[string]any) (bool, string, error) {
	fields, ok := asList(colRef["fields"])
	if !ok || len(fields) == 0 {
		return false, "", fmt.Errorf("lower: missing-tree-keys: ColumnRef.fields")
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		fMap, ok := asMap(f)
		if !ok {
			continue
		}
		if _, ok := fMap["A_Star"]; ok {
			return true, "", nil
		}
		v, ok := stringNodeValue(f)
		if ok {
			parts = append(parts, v)
		}
	}
	return false, strings.Join(parts, "."), nil
}

// lastColumnRefField returns the qualified name and just its final
// component, used when lowering a join condition's ColumnRef.
func lastColumnRefField(colRef map[string]any) (qualified, last string, err error) {
	_, qualified, err = parseColumnRef(colRef)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(qualified, ".")
	return qualified, parts[len(parts)-1], nil
}

func parseAExpr(whereClause map[string]any) (*ast.Predicate, error) {
	aExpr, ok := asMap(whereClause["A_Expr"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: whereClause.A_Expr")
	}
	lexpr, ok := asMap(aExpr["lexpr"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: A_Expr.lexpr")
	}
	colRef, ok := asMap(lexpr["ColumnRef"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: A_Expr.lexpr.ColumnRef")
	}
	_, col, err := parseColumnRef(colRef)
	if err != nil {
		return nil, err
	}

	value, err := aConstString(aExpr["rexpr"])
	if err != nil {
		return nil, err
	}

	opNames, _ := asList(aExpr["name"])
	op := "="
	if len(opNames) > 0 {
		if raw, ok := stringNodeValue(opNames[0]); ok {
			op = raw
		}
	}
	if op == "<>" {
		op = "!="
	}

	return &ast.Predicate{Column: col, Op: ast.Op(op), Value: value}, nil
}

// --- Delete ----------------------------------------------------------------

func lowerDelete(body map[string]any) (ast.Statement, error) {
	relation, ok := asMap(body["relation"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: DeleteStmt.relation")
	}
	tableName, _ := asString(relation["relname"])

	del := &ast.Delete{TableName: tableName}
	if whereClause, ok := asMap(body["whereClause"]); ok {
		pred, err := parseAExpr(whereClause)
		if err != nil {
			return nil, err
		}
		del.Where = pred
	}
	return del, nil
}

// --- CTAS --------------------------------------------------------------

func lowerCTAS(body map[string]any) (ast.Statement, error) {
	into, ok := asMap(body["into"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: CreateTableAsStmt.into")
	}
	rel, ok := asMap(into["rel"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: CreateTableAsStmt.into.rel")
	}
	tableName, _ := asString(rel["relname"])

	query, ok := asMap(body["query"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: CreateTableAsStmt.query")
	}
	selectStmt, ok := asMap(query["SelectStmt"])
	if !ok {
		return nil, fmt.Errorf("lower: missing-tree-keys: CreateTableAsStmt.query.SelectStmt")
	}
	sel, err := parseSelect(selectStmt)
	if err != nil {
		return nil, err
	}

	return &ast.CTAS{TableName: tableName, Select: sel}, nil
}
