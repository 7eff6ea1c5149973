package keyfill

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// EvaluatePath resolves a $-rooted path expression against a parsed JSON
// value. Syntax: $ addresses the root, .key a member, [n] a zero-based
// array index, in any sequence ($.a.b[1].c). Missing keys, bad indices and
// member access on scalars fail with a LookupError.
func EvaluatePath(doc interface{}, path string) (interface{}, error) {
	path = strings.TrimSpace(path)
	if path != "$" && !strings.HasPrefix(path, "$.") && !strings.HasPrefix(path, "$[") {
		return nil, NewLookupError(path, "path must start with $")
	}

	current := doc
	rest := path[1:]
	if strings.HasPrefix(rest, ".") {
		rest = rest[1:]
	}

	for rest != "" {
		seg, tail := nextSegment(rest)
		if seg == "" {
			return nil, NewLookupError(path, "empty path segment")
		}

		if strings.HasPrefix(seg, "[") {
			arr, ok := current.([]interface{})
			if !ok {
				return nil, NewLookupError(path, fmt.Sprintf("index %s applied to non-array", seg))
			}
			idx, err := strconv.Atoi(strings.Trim(seg, "[]"))
			if err != nil {
				return nil, NewLookupError(path, fmt.Sprintf("invalid array index %s", seg))
			}
			if idx < 0 || idx >= len(arr) {
				return nil, NewLookupError(path, fmt.Sprintf("array index %d out of range (len %d)", idx, len(arr)))
			}
			current = arr[idx]
		} else {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil, NewLookupError(path, fmt.Sprintf("member '%s' accessed on non-object", seg))
			}
			val, ok := obj[seg]
			if !ok {
				return nil, NewLookupError(path, fmt.Sprintf("key '%s' not found", seg))
			}
			current = val
		}
		rest = tail
	}
	return current, nil
}

// nextSegment splits off the leading path segment: either a bracketed
// index ("[3]") or a member name up to the next '.' or '['.
func nextSegment(path string) (seg, tail string) {
	if path == "" {
		return "", ""
	}
	if path[0] == '[' {
		if i := strings.Index(path, "]"); i >= 0 {
			seg = path[:i+1]
			tail = path[i+1:]
			tail = strings.TrimPrefix(tail, ".")
			return seg, tail
		}
		return path, ""
	}
	i := 0
	for i < len(path) && path[i] != '.' && path[i] != '[' {
		i++
	}
	seg = path[:i]
	if i < len(path) && path[i] == '.' {
		tail = path[i+1:]
	} else {
		tail = path[i:]
	}
	return seg, tail
}

// ApplyTransform applies a named post-transformation to a resolved JSON
// value. An empty transform returns the value unchanged. Supported:
// SUM, JOIN(delim), BOOL(trueLabel/falseLabel), EXPR(expression).
func ApplyTransform(value interface{}, transform string) (interface{}, error) {
	transform = strings.TrimSpace(transform)
	switch {
	case transform == "":
		return value, nil
	case transform == "SUM":
		return transformSum(value)
	case strings.HasPrefix(transform, "JOIN(") && strings.HasSuffix(transform, ")"):
		delim := transform[len("JOIN(") : len(transform)-1]
		return transformJoin(value, delim)
	case strings.HasPrefix(transform, "BOOL(") && strings.HasSuffix(transform, ")"):
		labels := transform[len("BOOL(") : len(transform)-1]
		return transformBool(value, labels)
	case strings.HasPrefix(transform, "EXPR(") && strings.HasSuffix(transform, ")"):
		code := transform[len("EXPR(") : len(transform)-1]
		return transformExpr(value, code)
	default:
		return nil, NewMalformedKeywordError(transform, "unknown transformation")
	}
}

func transformSum(value interface{}) (interface{}, error) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, NewTypeMismatchError("SUM", value, "value is not an array")
	}
	var total float64
	for _, item := range arr {
		n, ok := toNumber(item)
		if !ok {
			return nil, NewTypeMismatchError("SUM", item, "array element is not numeric")
		}
		total += n
	}
	return total, nil
}

func transformJoin(value interface{}, delim string) (interface{}, error) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, NewTypeMismatchError("JOIN", value, "value is not an array")
	}
	parts := make([]string, 0, len(arr))
	for _, item := range arr {
		if item == nil {
			continue
		}
		parts = append(parts, FormatScalar(item))
	}
	return strings.Join(parts, delim), nil
}

func transformBool(value interface{}, labels string) (interface{}, error) {
	trueLabel, falseLabel := "Yes", "No"
	if labels != "" {
		parts := strings.SplitN(labels, "/", 2)
		trueLabel = parts[0]
		if len(parts) > 1 {
			falseLabel = parts[1]
		}
	}

	var b bool
	switch v := value.(type) {
	case bool:
		b = v
	case string:
		b = parseBool(v)
	case float64:
		b = v != 0
	default:
		return nil, NewTypeMismatchError("BOOL", value, "value is not boolean-coercible")
	}

	if b {
		return trueLabel, nil
	}
	return falseLabel, nil
}

// transformExpr compiles and runs an expression with the resolved value
// bound as `value`. Anything that fails to compile, run, or produce a
// scalar is a type mismatch on the keyword.
func transformExpr(value interface{}, code string) (interface{}, error) {
	env := map[string]interface{}{"value": value}
	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, NewTypeMismatchError("EXPR", value, fmt.Sprintf("compile failed: %v", err))
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, NewTypeMismatchError("EXPR", value, fmt.Sprintf("run failed: %v", err))
	}
	switch out.(type) {
	case nil, string, bool, int, int64, float64:
		return out, nil
	default:
		return nil, NewTypeMismatchError("EXPR", out, "expression result is not a scalar")
	}
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		cleaned := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(n), "$", ""), ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// FormatScalar renders a resolved scalar for substitution. Integral
// numbers render without a decimal point; fractional ones round to two
// decimals, matching the spreadsheet currency convention.
func FormatScalar(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		if vv {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case float64:
		if vv == math.Trunc(vv) && !math.IsInf(vv, 0) {
			return strconv.FormatInt(int64(vv), 10)
		}
		return strconv.FormatFloat(vv, 'f', 2, 64)
	default:
		return fmt.Sprintf("%v", vv)
	}
}
