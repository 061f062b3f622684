package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrAlreadyExists is returned when an account with the same username is already stored.
	ErrAlreadyExists = errors.New("account already exists")
	// ErrWrongPassword is returned when a password check guarding a mutation fails.
	ErrWrongPassword = errors.New("wrong password")
)

// StorageError reports a persistence failure of the credential backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
