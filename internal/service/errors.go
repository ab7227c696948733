package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWriteFailed is returned when a report could not be stored.
var ErrWriteFailed = errors.New("save report")

// DataAccessError reports a failure to read from the data store. Pages that
// hit it cannot be rendered.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// MissingTable reports whether the underlying error looks like an absent
// table, which usually means the reference data was never imported.
func (e *DataAccessError) MissingTable() bool {
	return e.Err != nil && strings.Contains(e.Err.Error(), "no such table")
}

// ValidationError lists the problems found in a submitted report.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid report: " + strings.Join(e.Problems, "; ")
}
