package keyfill

import (
	"encoding/json"
	"testing"
)

func parseJSON(t *testing.T, s string) interface{} {
	t.Helper()
	var doc interface{}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	return doc
}

func TestEvaluatePath(t *testing.T) {
	doc := parseJSON(t, `{
		"name": "Acme",
		"total": 1234.5,
		"paid": true,
		"lines": [
			{"item": "Widget", "qty": 3},
			{"item": "Gadget", "qty": 4}
		],
		"tags": ["a", "b", "c"]
	}`)

	tests := []struct {
		name string
		path string
		want interface{}
	}{
		{name: "root member", path: "$.name", want: "Acme"},
		{name: "number member", path: "$.total", want: 1234.5},
		{name: "bool member", path: "$.paid", want: true},
		{name: "array index", path: "$.tags[1]", want: "b"},
		{name: "nested member through index", path: "$.lines[1].item", want: "Gadget"},
		{name: "nested number", path: "$.lines[0].qty", want: float64(3)},
		{name: "whole document", path: "$", want: doc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluatePath(doc, tt.path)
			if err != nil {
				t.Fatalf("EvaluatePath(%q) error = %v", tt.path, err)
			}
			if !equalJSON(got, tt.want) {
				t.Errorf("EvaluatePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func equalJSON(a, b interface{}) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

func TestEvaluatePathErrors(t *testing.T) {
	doc := parseJSON(t, `{"a": {"b": [1, 2]}}`)

	tests := []struct {
		name string
		path string
	}{
		{name: "no dollar root", path: "a.b"},
		{name: "missing key", path: "$.missing"},
		{name: "index out of range", path: "$.a.b[5]"},
		{name: "negative index", path: "$.a.b[-1]"},
		{name: "index on object", path: "$[0]"},
		{name: "member on array", path: "$.a.b.c"},
		{name: "member on scalar", path: "$.a.b[0].deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluatePath(doc, tt.path)
			if err == nil {
				t.Fatalf("EvaluatePath(%q) expected error, got none", tt.path)
			}
			if !IsLookupError(err) {
				t.Errorf("EvaluatePath(%q) error = %v, want LookupError", tt.path, err)
			}
		})
	}
}

func TestApplyTransform(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		transform string
		want      string
	}{
		{
			name:      "sum of numbers",
			value:     []interface{}{float64(3), float64(4)},
			transform: "SUM",
			want:      "7",
		},
		{
			name:      "sum of currency strings",
			value:     []interface{}{"$1,000", "$234.50"},
			transform: "SUM",
			want:      "1234.50",
		},
		{
			name:      "join with delimiter",
			value:     []interface{}{"red", "green", "blue"},
			transform: "JOIN(, )",
			want:      "red, green, blue",
		},
		{
			name:      "join of empty array",
			value:     []interface{}{},
			transform: "JOIN(, )",
			want:      "",
		},
		{
			name:      "join skips nulls",
			value:     []interface{}{"a", nil, "b"},
			transform: "JOIN(-)",
			want:      "a-b",
		},
		{
			name:      "bool default labels",
			value:     true,
			transform: "BOOL()",
			want:      "Yes",
		},
		{
			name:      "bool custom labels",
			value:     false,
			transform: "BOOL(Paid/Unpaid)",
			want:      "Unpaid",
		},
		{
			name:      "bool from number",
			value:     float64(0),
			transform: "BOOL()",
			want:      "No",
		},
		{
			name:      "expr arithmetic",
			value:     float64(100),
			transform: "EXPR(value * 1.2)",
			want:      "120",
		},
		{
			name:      "expr string",
			value:     "acme",
			transform: "EXPR(upper(value))",
			want:      "ACME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransform(tt.value, tt.transform)
			if err != nil {
				t.Fatalf("ApplyTransform(%v, %q) error = %v", tt.value, tt.transform, err)
			}
			if s := FormatScalar(got); s != tt.want {
				t.Errorf("ApplyTransform(%v, %q) = %q, want %q", tt.value, tt.transform, s, tt.want)
			}
		})
	}
}

func TestApplyTransformErrors(t *testing.T) {
	if _, err := ApplyTransform("scalar", "SUM"); !IsTypeMismatchError(err) {
		t.Errorf("SUM over scalar: error = %v, want TypeMismatchError", err)
	}
	if _, err := ApplyTransform(float64(1), "JOIN(,)"); !IsTypeMismatchError(err) {
		t.Errorf("JOIN over scalar: error = %v, want TypeMismatchError", err)
	}
	if _, err := ApplyTransform([]interface{}{"x"}, "SUM"); !IsTypeMismatchError(err) {
		t.Errorf("SUM over non-numeric: error = %v, want TypeMismatchError", err)
	}
	if _, err := ApplyTransform(map[string]interface{}{}, "BOOL()"); !IsTypeMismatchError(err) {
		t.Errorf("BOOL over object: error = %v, want TypeMismatchError", err)
	}
	if _, err := ApplyTransform("x", "SHOUT"); !IsMalformedKeywordError(err) {
		t.Errorf("unknown transform: error = %v, want MalformedKeywordError", err)
	}
	if _, err := ApplyTransform(float64(1), "EXPR(value +)"); !IsTypeMismatchError(err) {
		t.Errorf("bad expression: error = %v, want TypeMismatchError", err)
	}
}

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "string", value: "hello", want: "hello"},
		{name: "integral float", value: float64(42), want: "42"},
		{name: "fractional float", value: 3.14159, want: "3.14"},
		{name: "negative integral", value: float64(-7), want: "-7"},
		{name: "bool true", value: true, want: "true"},
		{name: "int", value: 12, want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatScalar(tt.value); got != tt.want {
				t.Errorf("FormatScalar(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
