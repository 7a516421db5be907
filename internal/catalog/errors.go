package catalog

import "errors"

var (
	// ErrNotFound is returned (wrapped) when no record matches a key or identity.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable is returned by every data operation when no store is attached.
	ErrStoreUnavailable = errors.New("database not connected")
	// ErrDuplicateKey is returned by stores when an insert violates the unique product key.
	ErrDuplicateKey = errors.New("duplicate product key")
)

// ValidationError reports missing or malformed client input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
