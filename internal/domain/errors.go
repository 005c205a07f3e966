package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
)

// AuthenticationError reports a credential or session failure.
// The message is the remote message, unchanged.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string { return e.Err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// DataAccessError reports a failed table query or mutation.
type DataAccessError struct {
	Err error
}

func (e *DataAccessError) Error() string { return e.Err.Error() }
func (e *DataAccessError) Unwrap() error { return e.Err }

// StorageError reports a failed object upload or removal.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
