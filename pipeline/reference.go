package pipeline

import (
	"fmt"
	"strings"
)

// Reference identifies a step implementation as "<location>:<name>".
type Reference struct {
	Location string
	Name     string
}

func (r Reference) String() string { return r.Location + ":" + r.Name }

// ParseReference splits ref once on its first colon. Both sides are trimmed
// and must be non-empty.
func ParseReference(ref string) (Reference, error) {
	loc, name, ok := strings.Cut(ref, ":")
	if !ok {
		return Reference{}, fmt.Errorf("%w %q: expected '<location>:<name>'", ErrInvalidReference, ref)
	}
	loc, name = strings.TrimSpace(loc), strings.TrimSpace(name)
	if loc == "" || name == "" {
		return Reference{}, fmt.Errorf("%w %q: expected '<location>:<name>'", ErrInvalidReference, ref)
	}
	return Reference{Location: loc, Name: name}, nil
}
