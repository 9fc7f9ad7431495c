package pipeline

import (
	"errors"
	"fmt"

	"github.com/configura/configura/types"
)

var (
	// ErrInvalidReference is returned for step references that are not of the
	// form "<location>:<name>".
	ErrInvalidReference = errors.New("invalid step reference")
	// ErrNotFound is returned when the location is unknown or does not export
	// the requested name.
	ErrNotFound = errors.New("step not found")
	// ErrNotAConstructible is returned when a reference resolves to a symbol
	// that is not a step factory.
	ErrNotAConstructible = errors.New("symbol is not constructible")
	// ErrInvalidParams is returned when params are not a mapping or the
	// factory rejects them.
	ErrInvalidParams = errors.New("invalid step params")
	// ErrMissingContract is returned when a factory yields no step.
	ErrMissingContract = errors.New("step does not implement Process")
	// ErrConfiguration reports a malformed pipeline document.
	ErrConfiguration = types.ErrConfiguration
)

// StepError carries the position and type of the step that failed.
type StepError struct {
	Index int
	Type  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
