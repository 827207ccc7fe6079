package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("not found")

// ValidationError reports a single field failing a declared invariant.
// Callers render these per-field; they are never fatal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// IntegrityError is a storage-level constraint violation (duplicate key,
// missing foreign key). The write is rejected whole; nothing partial remains.
type IntegrityError struct {
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integrity: %s: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("integrity: %s", e.Constraint)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// UnsupportedPartitionError means a partition key has no resolvable target.
// It is always fatal to the operation; there is no silent default.
type UnsupportedPartitionError struct {
	Key string
}

func (e *UnsupportedPartitionError) Error() string {
	return fmt.Sprintf("no partition for key %q", e.Key)
}
