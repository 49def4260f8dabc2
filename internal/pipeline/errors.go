package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("source table unavailable")
	ErrSchemaInvariant   = errors.New("common schema label missing from year")
	ErrDuplicateYear     = errors.New("duplicate source year")
)

// SourceError reports a year whose table could not be read. It unwraps to
// both ErrSourceUnavailable and the underlying cause.
type SourceError struct {
	Year int
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("year %d (%s): %v", e.Year, e.Path, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
