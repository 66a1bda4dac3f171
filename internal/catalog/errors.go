package catalog

import (
	"fmt"
)

// Record kinds used in integrity errors.
const (
	KindBrand  = "brand"
	KindSeries = "series"
	KindColor  = "color"
)

// DanglingReferenceError reports a record whose parent id does not exist.
type DanglingReferenceError struct {
	Kind       string
	ID         string
	ParentKind string
	ParentID   string
	// ParentExcluded is set when the parent was present but rejected itself.
	ParentExcluded bool
}

// Error implements the error interface.
func (e *DanglingReferenceError) Error() string {
	state := "missing"
	if e.ParentExcluded {
		state = "excluded"
	}
	return fmt.Sprintf("%s %q references %s %s %q", e.Kind, e.ID, state, e.ParentKind, e.ParentID)
}

// DuplicateIDError reports an id used by more than one record of a kind.
type DuplicateIDError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id %q", e.Kind, e.ID)
}

// InvalidRecordError reports a record that is malformed on its own, such as an
// empty id or an unparsable hex colour.
type InvalidRecordError struct {
	Kind string
	ID   string
	Err  error
}

// Error implements the error interface.
func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.ID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InvalidRecordError) Unwrap() error {
	return e.Err
}
