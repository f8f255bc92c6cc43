package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate id")
	ErrEmailInUse  = errors.New("email already registered")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

func errNotFound(kind, id string) error {
	return NotFoundError{Kind: kind, ID: id}
}
