// Package errors defines the domain error taxonomy shared by services
// and handlers. Validation errors reject an operation synchronously with
// no state change; conflict errors mark no-op repeats of an already
// resolved action. Gateway failures carry their own type, see the
// settlement package.
package errors

// DomainError is a stable, user-presentable application error.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// IsConflict reports whether err is a no-op repeat rather than a failure.
func IsConflict(err error) bool {
	return err == ErrAlreadyResolved || err == ErrDuplicateIntent
}
