package ingest

import (
	"errors"
	"strings"
)

var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrParseFailure      = errors.New("file could not be parsed")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file is empty or contains no valid data")
)

// MissingColumnsError names every required column absent from a header row.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ") +
		". Expected columns: FirstName, Phone, Notes"
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
