package processor

import (
	"fmt"
	"strings"
)

// FormatError reports a source file that is missing, empty, not a CSV, or
// unparseable as CSV.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns absent from the CSV header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s (required: %s)",
		strings.Join(e.Missing, ", "), strings.Join(requiredColumns, ", "))
}

// ValidationError carries every violation found during content validation,
// not just the first. Callers get the full list in one failure.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("data validation failed:")
	for _, v := range e.Violations {
		b.WriteString("\n- ")
		b.WriteString(v)
	}
	return b.String()
}

// DateParseError reports that no known date format parsed any row.
type DateParseError struct{}

func (e *DateParseError) Error() string {
	return "unable to parse date column with any known format"
}
