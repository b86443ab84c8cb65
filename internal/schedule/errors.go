package schedule

import "fmt"

// The mutation API converts every failure into one of three categories
// before it reaches a caller. "No rule matches this date" is never an
// error; the resolver reports that as an absent result.

// ValidationError means an invariant was violated before any write was
// attempted. Nothing changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError means a write would violate a uniqueness invariant
// discovered at commit time (duplicate name, colliding command offset).
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NotFoundError means a referenced site, item, or rule no longer
// exists, typically because it was deleted concurrently.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func notFound(kind string, id int) error {
	return &NotFoundError{Kind: kind, ID: id}
}
