package exec

import (
	"fmt"
	"strconv"

	"tupledb/internal/ast"
)

// applyScalar appends one computed column per row for a single scalar
// function call, named "fn(col)". All text is treated as an opaque ASCII
// byte sequence (§1's Unicode non-goal), so upper/lower do a manual
// byte-wise case flip rather than reaching for a Unicode-aware
// strings.ToUpper/ToLower.
func applyScalar(rows [][]string, resultSchema []string, call ast.ScalarCall) ([][]string, string, error) {
	if len(call.Args) == 0 {
		return nil, "", fmt.Errorf("exec: %s: missing column argument", call.FuncName)
	}
	colIdx := indexOf(resultSchema, call.Args[0])
	if colIdx < 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownColumn, call.Args[0])
	}
	name := fmt.Sprintf("%s(%s)", call.FuncName, call.Args[0])

	newRows := make([][]string, len(rows))
	for i, row := range rows {
		v := row[colIdx]
		out, err := evalScalar(call, v)
		if err != nil {
			return nil, "", err
		}
		extended := make([]string, 0, len(row)+1)
		extended = append(extended, row...)
		extended = append(extended, out)
		newRows[i] = extended
	}
	return newRows, name, nil
}

func evalScalar(call ast.ScalarCall, value string) (string, error) {
	switch call.FuncName {
	case "substr":
		if len(call.Args) < 3 {
			return "", fmt.Errorf("exec: substr requires (col, start, length)")
		}
		start, err := strconv.Atoi(call.Args[1])
		if err != nil {
			return "", fmt.Errorf("exec: substr: bad start %q: %w", call.Args[1], err)
		}
		length, err := strconv.Atoi(call.Args[2])
		if err != nil {
			return "", fmt.Errorf("exec: substr: bad length %q: %w", call.Args[2], err)
		}
		return byteSubstring(value, start, length), nil
	case "upper":
		return asciiUpper(value), nil
	case "lower":
		return asciiLower(value), nil
	default:
		return "", fmt.Errorf("exec: unimplemented scalar function %q", call.FuncName)
	}
}

// byteSubstring returns value[start:start+length] byte-wise, clamped to the
// string's bounds rather than panicking on out-of-range arguments.
func byteSubstring(value string, start, length int) string {
	if start < 0 {
		start = 0
	}
	if start > len(value) {
		start = len(value)
	}
	end := start + length
	if length < 0 || end > len(value) {
		end = len(value)
	}
	if end < start {
		end = start
	}
	return value[start:end]
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
