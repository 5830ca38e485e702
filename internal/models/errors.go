package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedReference indicates a reference field too short or with a non-numeric branch code.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrRowMismatch indicates branch reports whose line counts differ.
	ErrRowMismatch = errors.New("branch report rows are not aligned")
	// ErrRunInProgress indicates another run already owns the output directories for the period.
	ErrRunInProgress = errors.New("a run for this period is already in progress")
)

// MissingSourceError reports an input file that could not be located by its name pattern.
type MissingSourceError struct {
	Dir     string
	Pattern string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("no input file matching %q found in %s", e.Pattern, e.Dir)
}
