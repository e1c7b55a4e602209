package user

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory Store for testing.
type memStore struct {
	nextID int64
	users  map[int64]User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]User)}
}

func (m *memStore) byName(username string) (User, bool) {
	for _, u := range m.users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

func (m *memStore) CreateUser(_ context.Context, username, hash, role string) (User, error) {
	if _, ok := m.byName(username); ok {
		return User{}, &apperr.ConstraintError{Kind: "users", Reason: fmt.Sprintf("username %q is taken", username)}
	}
	m.nextID++
	u := User{ID: m.nextID, Username: username, PasswordHash: hash, Role: role}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) UpsertUser(ctx context.Context, username, hash, role string) (User, error) {
	if u, ok := m.byName(username); ok {
		u.PasswordHash, u.Role = hash, role
		m.users[u.ID] = u
		return u, nil
	}
	return m.CreateUser(ctx, username, hash, role)
}

func (m *memStore) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, apperr.NotFound("user", id)
	}
	return u, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (User, error) {
	u, ok := m.byName(username)
	if !ok {
		return User{}, apperr.NotFound("user", username)
	}
	return u, nil
}

func (m *memStore) ListUsers(_ context.Context) ([]User, error) {
	out := []User{}
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("user", id)
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) CountUsers(_ context.Context) (int, error) {
	return len(m.users), nil
}

func newTestService(t *testing.T) (*UserService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewUserService(store, bcrypt.MinCost, nil)
	created, err := svc.EnsureBootstrapAdmin(context.Background(), "admin05")
	require.NoError(t, err)
	require.True(t, created)
	return svc, store
}

func adminSession(t *testing.T, svc *UserService) Session {
	t.Helper()
	sess, err := svc.Login(context.Background(), BootstrapAdmin, "admin05")
	require.NoError(t, err)
	return sess
}

func TestVerify(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	t.Run("correct password returns role", func(t *testing.T) {
		role, err := svc.Verify(ctx, "admin", "admin05")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, role)
	})

	t.Run("hash is bcrypt", func(t *testing.T) {
		u, ok := store.byName("admin")
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))
		assert.NotContains(t, u.PasswordHash, "admin05")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Verify(ctx, "admin", "nope")
		require.ErrorIs(t, err, apperr.ErrAuth)
		var ae *apperr.AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.AuthWrongPassword, ae.Reason)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Verify(ctx, "ghost", "admin05")
		var ae *apperr.AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, apperr.AuthUserNotFound, ae.Reason)
	})
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)

	sess := adminSession(t, svc)
	assert.Equal(t, "admin", sess.Username)
	assert.True(t, sess.IsAdmin())
	assert.Equal(t, uuid.Version(7), sess.ID.Version())
	assert.False(t, sess.StartedAt.IsZero())

	other := adminSession(t, svc)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("admin adds user with default role", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)

		u, err := svc.AddUser(ctx, admin, " alice ", "pw", "")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, RoleUser, u.Role)

		role, err := svc.Verify(ctx, "alice", "pw")
		require.NoError(t, err)
		assert.Equal(t, RoleUser, role)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		svc, store := newTestService(t)
		admin := adminSession(t, svc)
		_, err := svc.AddUser(ctx, admin, "alice", "pw", RoleUser)
		require.NoError(t, err)
		alice, err := svc.Login(ctx, "alice", "pw")
		require.NoError(t, err)

		_, err = svc.AddUser(ctx, alice, "bob", "pw", "")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		assert.Len(t, store.users, 2)
	})

	t.Run("blank fields", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)

		_, err := svc.AddUser(ctx, admin, "  ", "pw", "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		_, err = svc.AddUser(ctx, admin, "bob", "", "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)

		_, err := svc.AddUser(ctx, admin, "admin", "pw", "")
		assert.ErrorIs(t, err, apperr.ErrConstraint)
	})

	t.Run("password too long", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)

		_, err := svc.AddUser(ctx, admin, "bob", strings.Repeat("x", 73), "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes user", func(t *testing.T) {
		svc, store := newTestService(t)
		admin := adminSession(t, svc)
		u, err := svc.AddUser(ctx, admin, "alice", "pw", "")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteUser(ctx, admin, u.ID))
		assert.Len(t, store.users, 1)
	})

	t.Run("bootstrap admin cannot be deleted", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)
		_, err := svc.AddUser(ctx, admin, "root", "pw", RoleAdmin)
		require.NoError(t, err)
		root, err := svc.Login(ctx, "root", "pw")
		require.NoError(t, err)

		err = svc.DeleteUser(ctx, root, admin.UserID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)
		_, err := svc.AddUser(ctx, admin, "root", "pw", RoleAdmin)
		require.NoError(t, err)
		root, err := svc.Login(ctx, "root", "pw")
		require.NoError(t, err)

		err = svc.DeleteUser(ctx, root, root.UserID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)
		u, err := svc.AddUser(ctx, admin, "alice", "pw", "")
		require.NoError(t, err)
		alice, err := svc.Login(ctx, "alice", "pw")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.DeleteUser(ctx, alice, u.ID), apperr.ErrForbidden)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)

		assert.ErrorIs(t, svc.DeleteUser(ctx, admin, 99), apperr.ErrNotFound)
	})
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := adminSession(t, svc)
	_, err := svc.AddUser(ctx, admin, "alice", "pw", "")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)

	alice, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = svc.ListUsers(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("user changes own password", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)
		_, err := svc.AddUser(ctx, admin, "alice", "pw", "")
		require.NoError(t, err)
		alice, err := svc.Login(ctx, "alice", "pw")
		require.NoError(t, err)

		require.NoError(t, svc.ResetPassword(ctx, alice, "alice", "new"))
		_, err = svc.Verify(ctx, "alice", "new")
		assert.NoError(t, err)
		_, err = svc.Verify(ctx, "alice", "pw")
		assert.ErrorIs(t, err, apperr.ErrAuth)
	})

	t.Run("user cannot change another's password", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)
		_, err := svc.AddUser(ctx, admin, "alice", "pw", "")
		require.NoError(t, err)
		alice, err := svc.Login(ctx, "alice", "pw")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.ResetPassword(ctx, alice, "admin", "x"), apperr.ErrForbidden)
	})

	t.Run("admin resets anyone", func(t *testing.T) {
		svc, _ := newTestService(t)
		admin := adminSession(t, svc)
		_, err := svc.AddUser(ctx, admin, "alice", "pw", "")
		require.NoError(t, err)

		require.NoError(t, svc.ResetPassword(ctx, admin, "alice", "other"))
		_, err = svc.Verify(ctx, "alice", "other")
		assert.NoError(t, err)

		assert.ErrorIs(t, svc.ResetPassword(ctx, admin, "ghost", "x"), apperr.ErrNotFound)
		assert.ErrorIs(t, svc.ResetPassword(ctx, admin, "alice", ""), apperr.ErrValidation)
	})
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("existing admin is left alone", func(t *testing.T) {
		svc, _ := newTestService(t)

		created, err := svc.EnsureBootstrapAdmin(ctx, "different")
		require.NoError(t, err)
		assert.False(t, created)
		_, err = svc.Verify(ctx, "admin", "admin05")
		assert.NoError(t, err)
	})

	t.Run("requires a password on an empty store", func(t *testing.T) {
		svc := NewUserService(newMemStore(), bcrypt.MinCost, nil)

		_, err := svc.EnsureBootstrapAdmin(ctx, "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("reset admin restores credentials and role", func(t *testing.T) {
		svc, store := newTestService(t)
		u, ok := store.byName("admin")
		require.True(t, ok)
		u.Role = RoleUser
		store.users[u.ID] = u

		got, err := svc.ResetAdmin(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, RoleAdmin, got.Role)

		role, err := svc.Verify(ctx, "admin", "fresh")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, role)
	})

	t.Run("reset admin creates a missing account", func(t *testing.T) {
		svc := NewUserService(newMemStore(), bcrypt.MinCost, nil)

		_, err := svc.ResetAdmin(ctx, "fresh")
		require.NoError(t, err)
		_, err = svc.Verify(ctx, "admin", "fresh")
		assert.NoError(t, err)
	})
}
