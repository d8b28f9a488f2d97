package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go-society-hub/internal/model"
)

const (
	defaultRoleCode = "USER"

	LookupFound    = 0
	LookupNotFound = 1
	LookupInactive = 2

	msgUserNotFound     = "User not found."
	msgUserInactive     = "User account is inactive."
	msgUsernameTaken    = "Username already exists."
	msgInvalidUserInput = "Invalid registration data."
)

// dbPool is the subset of *pgxpool.Pool the repository needs.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	pool dbPool
	now  func() time.Time
}

func NewUserRepository(pool dbPool) *UserRepository {
	return &UserRepository{pool: pool, now: time.Now}
}

func (r *UserRepository) Register(ctx context.Context, u model.NewUser) (int64, error) {
	roleCode := defaultRoleCode
	if u.RoleCode != nil && *u.RoleCode != "" {
		roleCode = *u.RoleCode
	}

	var userID int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, phone, password_hash, password_salt, role_code, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, true, $7)
		 RETURNING user_id`,
		u.Username, u.Email, u.Phone, u.PasswordHash, u.PasswordSalt, roleCode, r.now().UTC()).
		Scan(&userID)
	if err != nil {
		if storeErr := classifyWriteError(err); storeErr != nil {
			return 0, storeErr
		}
		return 0, fmt.Errorf("register user: %w", err)
	}
	return userID, nil
}

func (r *UserRepository) LookupCredential(ctx context.Context, username string, clientIP string, userAgent string) (model.CredentialLookup, error) {
	slog.Debug("credential lookup", "username", username, "client_ip", clientIP, "user_agent", userAgent)

	var (
		userID   int64
		hash     []byte
		salt     []byte
		isActive bool
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, password_hash, password_salt, is_active
		 FROM users WHERE lower(username) = lower($1)`, username).
		Scan(&userID, &hash, &salt, &isActive)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.CredentialLookup{Status: LookupNotFound, Message: msgUserNotFound}, nil
	}
	if err != nil {
		return model.CredentialLookup{}, fmt.Errorf("lookup credential: %w", err)
	}
	if !isActive {
		return model.CredentialLookup{Status: LookupInactive, Message: msgUserInactive}, nil
	}

	return model.CredentialLookup{
		Status:       LookupFound,
		PasswordHash: hash,
		PasswordSalt: salt,
		UserID:       userID,
	}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, username, email, phone, is_active, created_at, updated_at
		 FROM users WHERE user_id = $1`, userID).
		Scan(&u.UserID, &u.Username, &u.Email, &u.Phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, username, email, phone, is_active, created_at, updated_at
		 FROM users WHERE lower(username) = lower($1)`, username).
		Scan(&u.UserID, &u.Username, &u.Email, &u.Phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &u, nil
}

// Update sets the given profile fields; a nil field keeps its stored value.
func (r *UserRepository) Update(ctx context.Context, userID int64, email *string, phone *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET email = COALESCE($2, email), phone = COALESCE($3, phone), updated_at = $4
		 WHERE user_id = $1`,
		userID, email, phone, r.now().UTC())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewStoreError(model.ErrUserNotFound, msgUserNotFound)
	}
	return nil
}

func (r *UserRepository) ChangePassword(ctx context.Context, userID int64, newHash []byte, newSalt []byte) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, password_salt = $3, updated_at = $4
		 WHERE user_id = $1`,
		userID, newHash, newSalt, r.now().UTC())
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewStoreError(model.ErrUserNotFound, msgUserNotFound)
	}
	return nil
}

func classifyWriteError(err error) *model.StoreError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return model.NewStoreError(model.ErrDuplicateOrInvalid, msgUsernameTaken)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
		return model.NewStoreError(model.ErrDuplicateOrInvalid, msgInvalidUserInput)
	}
	return nil
}
