// Package keyfill provides custom error types for keyword resolution.
package keyfill

import (
	"errors"
	"fmt"
	"strings"
)

// MalformedKeywordError reports a keyword body that does not match the
// grammar: unknown family, unknown XL subcommand, or too few fields.
type MalformedKeywordError struct {
	Keyword string
	Message string
}

func (e *MalformedKeywordError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("malformed keyword '%s': %s", e.Keyword, e.Message)
	}
	return fmt.Sprintf("malformed keyword: %s", e.Message)
}

// NewMalformedKeywordError creates a new malformed keyword error
func NewMalformedKeywordError(keyword, message string) error {
	return &MalformedKeywordError{Keyword: keyword, Message: message}
}

// LookupError reports a missing target: a cell with no value below it, an
// absent JSON key or index, an unknown sheet or named range, a template
// file or library entry that does not exist.
type LookupError struct {
	Target  string
	Message string
}

func (e *LookupError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("lookup failed for '%s': %s", e.Target, e.Message)
	}
	return fmt.Sprintf("lookup failed: %s", e.Message)
}

// NewLookupError creates a new lookup error
func NewLookupError(target, message string) error {
	return &LookupError{Target: target, Message: message}
}

// TypeMismatchError reports a transformation or aggregate applied to a
// value of an incompatible type.
type TypeMismatchError struct {
	Operation string
	Value     interface{}
	Message   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch in %s: %s (got %T)", e.Operation, e.Message, e.Value)
}

// NewTypeMismatchError creates a new type mismatch error
func NewTypeMismatchError(operation string, value interface{}, message string) error {
	return &TypeMismatchError{Operation: operation, Value: value, Message: message}
}

// RecursionLimitError reports that template inclusion exceeded the
// configured depth limit, typically via a direct or mutual include cycle.
type RecursionLimitError struct {
	Target string
	Depth  int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("inclusion depth limit %d exceeded at '%s'", e.Depth, e.Target)
}

// NewRecursionLimitError creates a new recursion limit error
func NewRecursionLimitError(target string, depth int) error {
	return &RecursionLimitError{Target: target, Depth: depth}
}

// MissingInputError reports an input keyword with no registry entry and no
// usable default.
type MissingInputError struct {
	Label string
	Key   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("no value provided for input '%s'", e.Label)
}

// NewMissingInputError creates a new missing input error
func NewMissingInputError(label, key string) error {
	return &MissingInputError{Label: label, Key: key}
}

// CollaboratorError reports a non-recoverable fault in an external
// collaborator (file loader, spreadsheet backend, document model). Unlike
// the resolution errors above it aborts the whole run.
type CollaboratorError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *CollaboratorError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("collaborator error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	}
	return fmt.Sprintf("collaborator error during %s: %v", e.Operation, e.Cause)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Cause
}

// NewCollaboratorError creates a new collaborator error
func NewCollaboratorError(operation, path string, cause error) error {
	return &CollaboratorError{Operation: operation, Path: path, Cause: cause}
}

// IsMalformedKeywordError checks if an error is a malformed keyword error
func IsMalformedKeywordError(err error) bool {
	var target *MalformedKeywordError
	return errors.As(err, &target)
}

// IsLookupError checks if an error is a lookup error
func IsLookupError(err error) bool {
	var target *LookupError
	return errors.As(err, &target)
}

// IsTypeMismatchError checks if an error is a type mismatch error
func IsTypeMismatchError(err error) bool {
	var target *TypeMismatchError
	return errors.As(err, &target)
}

// IsRecursionLimitError checks if an error is a recursion limit error
func IsRecursionLimitError(err error) bool {
	var target *RecursionLimitError
	return errors.As(err, &target)
}

// IsMissingInputError checks if an error is a missing input error
func IsMissingInputError(err error) bool {
	var target *MissingInputError
	return errors.As(err, &target)
}

// IsCollaboratorError checks if an error is a collaborator error
func IsCollaboratorError(err error) bool {
	var target *CollaboratorError
	return errors.As(err, &target)
}

// isRecoverable reports whether a resolution error falls under the
// fail-open policy: the keyword stays as literal text and a warning is
// recorded. Collaborator faults and anything unclassified abort the run.
func isRecoverable(err error) bool {
	if err == nil || IsCollaboratorError(err) {
		return false
	}
	return IsMalformedKeywordError(err) ||
		IsLookupError(err) ||
		IsTypeMismatchError(err) ||
		IsRecursionLimitError(err) ||
		IsMissingInputError(err)
}

// Warning records one fail-open substitution: the keyword that could not
// be resolved and the error that stopped it.
type Warning struct {
	Keyword string
	Err     error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Keyword, w.Err)
}

// WarningList collects fail-open warnings over one resolution run.
type WarningList struct {
	warnings []Warning
}

// Add records a warning (nil errors are ignored)
func (l *WarningList) Add(keyword string, err error) {
	if err != nil {
		l.warnings = append(l.warnings, Warning{Keyword: keyword, Err: err})
	}
}

// Len returns the number of recorded warnings
func (l *WarningList) Len() int {
	return len(l.warnings)
}

// Warnings returns the recorded warnings in order
func (l *WarningList) Warnings() []Warning {
	return l.warnings
}

// Err collapses the list into a single error, or nil if empty
func (l *WarningList) Err() error {
	if len(l.warnings) == 0 {
		return nil
	}
	if len(l.warnings) == 1 {
		return l.warnings[0].Err
	}
	parts := []string{fmt.Sprintf("%d keywords failed to resolve:", len(l.warnings))}
	for i, w := range l.warnings {
		parts = append(parts, fmt.Sprintf("  [%d] %s", i+1, w))
	}
	return errors.New(strings.Join(parts, "\n"))
}
