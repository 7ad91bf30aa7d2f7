package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that a requested contact was not found.
	ErrNotFound = errors.New("contact not found")
	// ErrInvalidStatus indicates a status value outside the known set.
	ErrInvalidStatus = errors.New("invalid contact status")
)

// ValidationError indicates a malformed import payload. The whole operation
// is aborted and the previous collection stays untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NormalizationError indicates a phone value that could not be canonicalized.
// It carries the original input for diagnostics.
type NormalizationError struct {
	Input string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("invalid phone number: %q", e.Input)
}

// RowWarning records a spreadsheet row that was skipped during import.
type RowWarning struct {
	Row int   `json:"row"`
	Err error `json:"-"`
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d: %v", w.Row, w.Err)
}

// EmptyResultError indicates an import or export that would produce zero
// usable records.
type EmptyResultError struct {
	Operation string
	Warnings  []RowWarning
}

func (e *EmptyResultError) Error() string {
	if len(e.Warnings) == 0 {
		return e.Operation + " produced no usable records"
	}
	parts := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		parts = append(parts, w.String())
	}
	return fmt.Sprintf("%s produced no usable records: %s", e.Operation, strings.Join(parts, "; "))
}
