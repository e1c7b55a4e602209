// Package apperr defines the error taxonomy shared by the inventory features.
//
// Callers match categories with errors.Is against the sentinels and extract
// details with errors.As against the typed errors.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConstraint = errors.New("constraint violation")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("permission denied")
	ErrStorageIO  = errors.New("storage i/o failure")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports that no row with the given id exists.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound is shorthand for a *NotFoundError.
func NotFound(kind string, id any) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConstraintError reports a write rejected by a store constraint, such as
// deleting a lookup row that artifacts still reference.
type ConstraintError struct {
	Kind   string
	ID     any
	Reason string
}

func (e *ConstraintError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %v: %s", e.Kind, e.ID, e.Reason)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// AuthReason tells apart the two ways credential checks fail.
type AuthReason int

const (
	AuthUserNotFound AuthReason = iota + 1
	AuthWrongPassword
)

func (r AuthReason) String() string {
	switch r {
	case AuthUserNotFound:
		return "user not found"
	case AuthWrongPassword:
		return "wrong password"
	default:
		return "unknown"
	}
}

// AuthError reports failed credential verification.
type AuthError struct {
	Username string
	Reason   AuthReason
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authenticating %q: %s", e.Username, e.Reason)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// ForbiddenError reports an operation the acting session may not perform.
type ForbiddenError struct {
	Actor  string
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s may not %s", e.Actor, e.Action)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// StorageIOError reports a failed file operation on the image folder.
// These are surfaced as warnings and never abort the owning operation.
type StorageIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageIOError) Unwrap() error { return e.Err }

func (e *StorageIOError) Is(target error) bool { return target == ErrStorageIO }
