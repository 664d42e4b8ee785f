package repositories

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is reported when the backing store cannot serve a request.
var ErrStorageUnavailable = errors.New("storage unavailable")

// StorageError wraps a backend failure so callers can test it with
// errors.Is(err, ErrStorageUnavailable) while keeping the driver error for logs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }
func (e *StorageError) Unwrap() error        { return e.Err }

func unavailable(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
