package keyfill

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindChecks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "malformed", err: NewMalformedKeywordError("XL!NOPE", "bad"), check: IsMalformedKeywordError},
		{name: "lookup", err: NewLookupError("Sheet1!A1", "missing"), check: IsLookupError},
		{name: "type mismatch", err: NewTypeMismatchError("SUM", "x", "not numeric"), check: IsTypeMismatchError},
		{name: "recursion", err: NewRecursionLimitError("loop.txt", 10), check: IsRecursionLimitError},
		{name: "missing input", err: NewMissingInputError("Region", "INPUT!select!Region"), check: IsMissingInputError},
		{name: "collaborator", err: NewCollaboratorError("read", "f", errors.New("io")), check: IsCollaboratorError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("check failed for its own kind: %v", tt.err)
			}
			if tt.check(errors.New("other")) {
				t.Error("check matched an unrelated error")
			}
			wrapped := fmt.Errorf("context: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("check failed through wrapping: %v", wrapped)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	recoverable := []error{
		NewMalformedKeywordError("k", "m"),
		NewLookupError("t", "m"),
		NewTypeMismatchError("SUM", nil, "m"),
		NewRecursionLimitError("t", 10),
		NewMissingInputError("l", "k"),
	}
	for _, err := range recoverable {
		if !isRecoverable(err) {
			t.Errorf("isRecoverable(%T) = false, want true", err)
		}
	}

	fatal := []error{
		NewCollaboratorError("read", "f", errors.New("io")),
		errors.New("anything else"),
	}
	for _, err := range fatal {
		if isRecoverable(err) {
			t.Errorf("isRecoverable(%T) = true, want false", err)
		}
	}
}

func TestCollaboratorErrorUnwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := NewCollaboratorError("read", "f.json", cause)
	if !errors.Is(err, cause) {
		t.Error("CollaboratorError should unwrap to its cause")
	}
}

func TestWarningList(t *testing.T) {
	var list WarningList
	if list.Len() != 0 || list.Err() != nil {
		t.Error("empty list should have no warnings and no error")
	}

	list.Add("{{XL!CELL!A1}}", NewLookupError("A1", "missing"))
	list.Add("{{ok}}", nil)

	if list.Len() != 1 {
		t.Errorf("Len = %d, want 1 (nil errors ignored)", list.Len())
	}
	if list.Err() == nil {
		t.Error("non-empty list should summarize as an error")
	}
	if w := list.Warnings()[0]; w.Keyword != "{{XL!CELL!A1}}" {
		t.Errorf("Keyword = %q", w.Keyword)
	}
}
