package exec

import (
	"fmt"
	"strings"

	"tupledb/internal/ast"
)

// applyAggregate implements §4.7: only the first aggregate call is ever
// honored by the caller. It groups rows by groupBy's column positions
// (looked up against resultSchema) and, per group, keeps the maximum
// string value observed for agg.Column - fn_name is retained on the call
// but never examined, so COUNT/SUM/AVG all behave identically to MAX. Group
// output order follows first-appearance order of each distinct key.
func applyAggregate(rows [][]string, resultSchema []string, groupBy []string, agg ast.AggregateCall) ([][]string, []string, error) {
	groupIdx := make([]int, len(groupBy))
	for i, name := range groupBy {
		idx := indexOf(resultSchema, name)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrGroupByOutOfBounds, name)
		}
		groupIdx[i] = idx
	}
	aggIdx := indexOf(resultSchema, agg.Column)
	if aggIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownColumn, agg.Column)
	}

	type group struct {
		key []string
		max string
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, row := range rows {
		keyParts := make([]string, len(groupIdx))
		for i, idx := range groupIdx {
			keyParts[i] = row[idx]
		}
		key := strings.Join(keyParts, "\x1f")
		g, ok := groups[key]
		if !ok {
			g = &group{key: keyParts, max: row[aggIdx]}
			groups[key] = g
			order = append(order, key)
		} else if row[aggIdx] > g.max {
			g.max = row[aggIdx]
		}
	}

	newRows := make([][]string, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := make([]string, 0, len(g.key)+1)
		row = append(row, g.key...)
		row = append(row, g.max)
		newRows = append(newRows, row)
	}

	newSchema := make([]string, 0, len(groupBy)+1)
	newSchema = append(newSchema, groupBy...)
	newSchema = append(newSchema, fmt.Sprintf("%s(%s)", agg.FuncName, agg.Column))

	return newRows, newSchema, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
