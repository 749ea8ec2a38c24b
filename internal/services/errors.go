package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is wrapped with the entity that was looked up.
var ErrNotFound = errors.New("not found")

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// PersistenceError is a store failure. It is logged with Entity/Op and never shown verbatim.
type PersistenceError struct {
	Entity string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func notFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}
