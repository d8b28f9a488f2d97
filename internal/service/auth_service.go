package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-society-hub/internal/model"
	"go-society-hub/pkg/apierror"
)

// CredentialStore is the persistence contract the auth flow depends on.
// Backend-defined failures are returned as *model.StoreError; any other error
// is an infrastructure failure.
type CredentialStore interface {
	Register(ctx context.Context, u model.NewUser) (int64, error)
	LookupCredential(ctx context.Context, username string, clientIP string, userAgent string) (model.CredentialLookup, error)
	GetByID(ctx context.Context, userID int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, userID int64, email *string, phone *string) error
	ChangePassword(ctx context.Context, userID int64, newHash []byte, newSalt []byte) error
}

type credentialHasher interface {
	Hash(password string) (hash []byte, salt []byte, err error)
	Verify(password string, storedHash []byte, storedSalt []byte) bool
}

type tokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

// AuthService holds no per-request state and is safe for concurrent use.
type AuthService struct {
	store  CredentialStore
	hasher credentialHasher
	issuer tokenIssuer
}

func NewAuthService(store CredentialStore, hasher credentialHasher, issuer tokenIssuer) *AuthService {
	return &AuthService{store: store, hasher: hasher, issuer: issuer}
}

type RegisterInput struct {
	Username string
	Password string
	Email    *string
	Phone    *string
	RoleCode *string
}

type LoginInput struct {
	Username  string
	Password  string
	ClientIP  string
	UserAgent string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Password) == "" {
		return 0, apierror.Wrap(model.ErrInvalidInput, "BAD_REQUEST", "Username and password are required.", "", http.StatusBadRequest)
	}

	hash, salt, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.store.Register(ctx, model.NewUser{
		Username:     in.Username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Email:        in.Email,
		Phone:        in.Phone,
		RoleCode:     in.RoleCode,
	})
	if err != nil {
		var storeErr *model.StoreError
		if errors.As(err, &storeErr) {
			slog.Warn("registration rejected", "username", in.Username, "reason", storeErr.Message)
			return 0, apierror.Wrap(model.ErrRegistrationFailed, "REGISTRATION_FAILED", storeErr.Message, "", http.StatusBadRequest)
		}
		return 0, fmt.Errorf("register user: %w", err)
	}

	slog.Info("user registered", "user_id", userID, "username", in.Username)
	return userID, nil
}

// Login verifies the password and issues a session token. Every
// authentication failure yields the same error so callers cannot tell an
// unknown username from a wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (model.LoginResult, error) {
	lookup, err := s.store.LookupCredential(ctx, in.Username, in.ClientIP, in.UserAgent)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("lookup credential: %w", err)
	}

	if !lookup.Found() || !lookup.HasMaterial() {
		return model.LoginResult{}, s.loginFailed(in, "lookup")
	}

	if !s.hasher.Verify(in.Password, lookup.PasswordHash, lookup.PasswordSalt) {
		return model.LoginResult{}, s.loginFailed(in, "verify")
	}

	user, err := s.store.GetByID(ctx, lookup.UserID)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("load user profile: %w", err)
	}
	if user == nil {
		return model.LoginResult{}, s.loginFailed(in, "profile")
	}

	token, err := s.issuer.Issue(user.UserID, user.Username)
	if err != nil {
		return model.LoginResult{}, err
	}

	slog.Info("user logged in", "user_id", user.UserID, "client_ip", in.ClientIP)
	return model.LoginResult{Profile: user.Profile(), Token: token}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (model.Profile, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("load user profile: %w", err)
	}
	if user == nil {
		return model.Profile{}, userNotFound(userID)
	}

	return user.Profile(), nil
}

// UpdateProfile changes email and phone. A nil value leaves the stored field unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, email *string, phone *string) error {
	if err := s.store.Update(ctx, userID, email, phone); err != nil {
		var storeErr *model.StoreError
		if !errors.As(err, &storeErr) {
			return fmt.Errorf("update profile: %w", err)
		}
		if errors.Is(storeErr, model.ErrUserNotFound) {
			return userNotFound(userID)
		}
		return apierror.Wrap(model.ErrUpdateFailed, "UPDATE_FAILED", storeErr.Message, "", http.StatusBadRequest)
	}

	slog.Info("profile updated", "user_id", userID)
	return nil
}

// ChangePassword replaces the credential after checking the current password
// against a fresh lookup. Tokens already issued stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword string, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apierror.Wrap(model.ErrInvalidInput, "BAD_REQUEST", "New password is required.", "new_password", http.StatusBadRequest)
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user profile: %w", err)
	}
	if user == nil {
		return userNotFound(userID)
	}

	lookup, err := s.store.LookupCredential(ctx, user.Username, "", "")
	if err != nil {
		return fmt.Errorf("lookup credential: %w", err)
	}
	if !lookup.Found() || !lookup.HasMaterial() {
		message := lookup.Message
		if message == "" {
			message = "Could not verify user."
		}
		return apierror.Wrap(model.ErrVerificationUnavailable, "VERIFICATION_UNAVAILABLE", message, "", http.StatusBadRequest)
	}

	if !s.hasher.Verify(currentPassword, lookup.PasswordHash, lookup.PasswordSalt) {
		slog.Warn("password change rejected", "user_id", userID)
		return apierror.Wrap(model.ErrWrongCurrentPassword, "WRONG_CURRENT_PASSWORD", "Incorrect current password.", "", http.StatusBadRequest)
	}

	newHash, newSalt, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.ChangePassword(ctx, userID, newHash, newSalt); err != nil {
		var storeErr *model.StoreError
		if !errors.As(err, &storeErr) {
			return fmt.Errorf("change password: %w", err)
		}
		if errors.Is(storeErr, model.ErrUserNotFound) {
			return userNotFound(userID)
		}
		return apierror.Wrap(model.ErrUpdateFailed, "UPDATE_FAILED", storeErr.Message, "", http.StatusBadRequest)
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

func (s *AuthService) loginFailed(in LoginInput, stage string) error {
	slog.Warn("login failed", "username", in.Username, "client_ip", in.ClientIP, "stage", stage)
	return apierror.Wrap(model.ErrInvalidCredentials, "UNAUTHORIZED", "Invalid username or password.", "", http.StatusUnauthorized)
}

func userNotFound(userID int64) error {
	return apierror.Wrap(model.ErrUserNotFound, "NOT_FOUND", "User not found.", fmt.Sprint(userID), http.StatusNotFound)
}
