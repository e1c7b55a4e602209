package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sebastianm/inventar/internal/apperr"
	"github.com/sebastianm/inventar/internal/database"
	"github.com/sebastianm/inventar/internal/user"
)

const timeFormat = "2006-01-02T15:04:05.000Z"

const userColumns = "id, username, password_hash, role, created_at"

// SQLiteStore implements user.Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash, role string) (user.User, error) {
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?) RETURNING "+userColumns,
		username, passwordHash, role, time.Now().UTC().Format(timeFormat),
	)
	u, err := scanUser(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, &apperr.ConstraintError{Kind: "users", Reason: fmt.Sprintf("username %q is taken", username)}
		}
		return user.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, username, passwordHash, role string) (user.User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash, role = excluded.role
		RETURNING `+userColumns,
		username, passwordHash, role, time.Now().UTC().Format(timeFormat),
	)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, fmt.Errorf("upserting user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, apperr.NotFound("user", username)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("getting user %q: %w", username, err)
	}
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password of user %d: %w", id, err)
	}
	return expectOne(res, id)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return expectOne(res, id)
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (user.User, error) {
	var (
		u       user.User
		created string
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &created); err != nil {
		return user.User{}, err
	}
	u.CreatedAt, _ = time.Parse(timeFormat, created)
	return u, nil
}
