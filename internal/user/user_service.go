package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// User is a stored account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Store persists user accounts.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash, role string) (User, error)
	// UpsertUser creates username or overwrites its hash and role.
	UpsertUser(ctx context.Context, username, passwordHash, role string) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int, error)
}

// UserService implements authentication and account administration.
type UserService struct {
	store Store
	cost  int
	log   *slog.Logger
}

// NewUserService creates a UserService hashing with the given bcrypt cost.
func NewUserService(store Store, cost int, log *slog.Logger) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &UserService{store: store, cost: cost, log: log}
}

// Verify checks username and password and returns the user's role.
func (s *UserService) Verify(ctx context.Context, username, password string) (string, error) {
	u, err := s.authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// Login verifies the credentials and opens a Session for the user.
func (s *UserService) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.authenticate(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	sess := newSession(u)
	s.log.Info("user logged in", "username", u.Username, "session", sess.ID)
	return sess, nil
}

func (s *UserService) authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return User{}, &apperr.AuthError{Username: username, Reason: apperr.AuthUserNotFound}
	}
	if err != nil {
		return User{}, fmt.Errorf("looking up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, &apperr.AuthError{Username: username, Reason: apperr.AuthWrongPassword}
	}
	return u, nil
}

// AddUser creates an account. Only admins may add users; role defaults to
// RoleUser.
func (s *UserService) AddUser(ctx context.Context, actor Session, username, password, role string) (User, error) {
	if !actor.IsAdmin() {
		return User{}, &apperr.ForbiddenError{Actor: actor.Username, Action: "add users"}
	}
	username = strings.TrimSpace(username)
	role = strings.TrimSpace(role)
	if username == "" {
		return User{}, apperr.Invalid("username", "is required")
	}
	if password == "" {
		return User{}, apperr.Invalid("password", "is required")
	}
	if role == "" {
		role = RoleUser
	}

	hash, err := s.hash(password)
	if err != nil {
		return User{}, err
	}
	u, err := s.store.CreateUser(ctx, username, hash, role)
	if err != nil {
		return User{}, fmt.Errorf("adding user: %w", err)
	}
	s.log.Info("user added", "username", u.Username, "role", u.Role, "by", actor.Username)
	return u, nil
}

// DeleteUser removes an account. Admins may delete anyone except the
// bootstrap admin and themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor Session, id int64) error {
	if !actor.IsAdmin() {
		return &apperr.ForbiddenError{Actor: actor.Username, Action: "delete users"}
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	switch {
	case u.Username == BootstrapAdmin:
		return &apperr.ForbiddenError{Actor: actor.Username, Action: "delete the bootstrap admin"}
	case u.ID == actor.UserID:
		return &apperr.ForbiddenError{Actor: actor.Username, Action: "delete their own account"}
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	s.log.Info("user deleted", "username", u.Username, "by", actor.Username)
	return nil
}

// ListUsers returns every account ordered by id. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor Session) ([]User, error) {
	if !actor.IsAdmin() {
		return nil, &apperr.ForbiddenError{Actor: actor.Username, Action: "list users"}
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of accounts.
func (s *UserService) CountUsers(ctx context.Context) (int, error) {
	return s.store.CountUsers(ctx)
}

// ResetPassword sets a new password for username. Users may change their
// own password; admins may change anyone's.
func (s *UserService) ResetPassword(ctx context.Context, actor Session, username, password string) error {
	username = strings.TrimSpace(username)
	if !actor.IsAdmin() && actor.Username != username {
		return &apperr.ForbiddenError{Actor: actor.Username, Action: "reset other users' passwords"}
	}
	if password == "" {
		return apperr.Invalid("password", "is required")
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	s.log.Info("password reset", "username", u.Username, "by", actor.Username)
	return nil
}

// EnsureBootstrapAdmin creates the bootstrap admin with password unless it
// already exists. It reports whether the account was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, password string) (bool, error) {
	_, err := s.store.GetUserByUsername(ctx, BootstrapAdmin)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, fmt.Errorf("checking bootstrap admin: %w", err)
	}
	if password == "" {
		return false, apperr.Invalid("bootstrap_admin_password", "is required to create the admin account")
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	if _, err := s.store.CreateUser(ctx, BootstrapAdmin, hash, RoleAdmin); err != nil {
		// Lost a race with another process creating it.
		if errors.Is(err, apperr.ErrConstraint) {
			return false, nil
		}
		return false, fmt.Errorf("creating bootstrap admin: %w", err)
	}
	s.log.Warn("bootstrap admin created; change its password", "username", BootstrapAdmin)
	return true, nil
}

// ResetAdmin recreates the bootstrap admin credentials: the account gets
// password and the admin role whether or not it existed.
func (s *UserService) ResetAdmin(ctx context.Context, password string) (User, error) {
	if password == "" {
		return User{}, apperr.Invalid("password", "is required")
	}
	hash, err := s.hash(password)
	if err != nil {
		return User{}, err
	}
	u, err := s.store.UpsertUser(ctx, BootstrapAdmin, hash, RoleAdmin)
	if err != nil {
		return User{}, fmt.Errorf("resetting admin: %w", err)
	}
	s.log.Warn("bootstrap admin reset", "username", u.Username)
	return u, nil
}

func (s *UserService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Invalid("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}
