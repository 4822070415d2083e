package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrExists   = errors.New("task id already exists")
)

// DecodeError reports a stored record that does not deserialize.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %q: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
