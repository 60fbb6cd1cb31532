package lower

import "fmt"

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asNumber extracts an int from a JSON-decoded number, which comes in as
// float64 via the standard encoding/json map[string]any decoding.
func asNumber(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// stringNodeValue reads a `{"String": {"sval": "..."}}` node.
func stringNodeValue(v any) (string, bool) {
	m, ok := asMap(v)
	if !ok {
		return "", false
	}
	inner, ok := asMap(m["String"])
	if !ok {
		return "", false
	}
	return asString(inner["sval"])
}

// aConstInt reads a `{"A_Const": {"ival": {"ival": N}}}` node's integer
// value. A bare {"ival": {...}} (without the outer A_Const wrapper, as seen
// for typmods entries) is also accepted. protobuf omits zero-valued scalars,
// so a literal 0 serializes as {"ival": {}} with no inner "ival" key; that
// is still a present ival leaf and means the value 0, not a missing node.
func aConstInt(v any) (int, bool) {
	m, ok := asMap(v)
	if !ok {
		return 0, false
	}
	target := m
	if aConst, ok := asMap(m["A_Const"]); ok {
		target = aConst
	}
	ival, ok := asMap(target["ival"])
	if !ok {
		return 0, false
	}
	n, ok := asNumber(ival["ival"])
	if !ok {
		return 0, true
	}
	return n, true
}

// aConstString stringifies an `{"A_Const": {...}}` node's ival/sval/fval/
// boolval leaf, matching the original's value extraction. Which leaf is
// present (not whether it's non-empty) selects the type: protobuf omits a
// zero-valued scalar, so {"ival": {}} is the integer 0, {"sval": {}} is the
// empty string, and so on.
func aConstString(v any) (string, error) {
	m, ok := asMap(v)
	if !ok {
		return "", fmt.Errorf("lower: missing-tree-keys: expected a value node")
	}
	aConst, ok := asMap(m["A_Const"])
	if !ok {
		return "", fmt.Errorf("lower: missing-tree-keys: expected A_Const")
	}
	if ival, ok := asMap(aConst["ival"]); ok {
		n, _ := asNumber(ival["ival"])
		return fmt.Sprintf("%d", n), nil
	}
	if sval, ok := asMap(aConst["sval"]); ok {
		s, _ := asString(sval["sval"])
		return s, nil
	}
	if fval, ok := asMap(aConst["fval"]); ok {
		s, ok := asString(fval["fval"])
		if !ok {
			s = "0"
		}
		return s, nil
	}
	if boolval, ok := asMap(aConst["boolval"]); ok {
		b, _ := asBool(boolval["boolval"])
		return fmt.Sprintf("%t", b), nil
	}
	return "", fmt.Errorf("lower: missing-tree-keys: A_Const has no recognized leaf")
}
