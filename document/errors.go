package document

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned when a document is saved under a path whose
	// extension names no supported format.
	ErrInvalidPath = errors.New("invalid document path")
	// ErrMalformedDocument is returned when a document cannot be parsed.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrUnencodable is returned when a tree cannot be written in a format.
	ErrUnencodable = errors.New("tree cannot be encoded")
)

// MalformedError describes a document that failed to parse.
type MalformedError struct {
	Path   string
	Format string
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s document %s: %v", e.Format, e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedDocument) hold.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedDocument
}
