package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		msg    string
	}{
		{"validation", Invalid("name", "is required"), ErrValidation, "name: is required"},
		{"not found", NotFound("artifact", int64(7)), ErrNotFound, "artifact 7 not found"},
		{"constraint", &ConstraintError{Kind: "materials", ID: int64(2), Reason: "still referenced"}, ErrConstraint, "materials 2: still referenced"},
		{"constraint without id", &ConstraintError{Kind: "users", Reason: "username taken"}, ErrConstraint, "users: username taken"},
		{"auth", &AuthError{Username: "bob", Reason: AuthWrongPassword}, ErrAuth, `authenticating "bob": wrong password`},
		{"forbidden", &ForbiddenError{Actor: "bob", Action: "delete users"}, ErrForbidden, "bob may not delete users"},
		{"storage", &StorageIOError{Op: "copy", Path: "/x.jpg", Err: fs.ErrNotExist}, ErrStorageIO, "copy /x.jpg: file does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("doing work: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.target)
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestStorageIOErrorUnwraps(t *testing.T) {
	err := &StorageIOError{Op: "remove", Path: "a.png", Err: fs.ErrPermission}
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestAuthReasonViaAs(t *testing.T) {
	err := fmt.Errorf("login: %w", &AuthError{Username: "x", Reason: AuthUserNotFound})
	var ae *AuthError
	if assert.ErrorAs(t, err, &ae) {
		assert.Equal(t, AuthUserNotFound, ae.Reason)
		assert.Equal(t, "user not found", ae.Reason.String())
	}
}
