package model

import "time"

// User is the identity record owned by the credential store.
type User struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CredentialLookup is the result of resolving a username to its credential
// material. Status 0 means found; any other value is a store-defined failure
// described by Message, and the hash fields are then nil.
type CredentialLookup struct {
	Status       int
	Message      string
	PasswordHash []byte
	PasswordSalt []byte
	UserID       int64
}

func (l CredentialLookup) Found() bool {
	return l.Status == 0
}

// HasMaterial reports whether the lookup carries everything needed to verify a password.
func (l CredentialLookup) HasMaterial() bool {
	return l.PasswordHash != nil && l.PasswordSalt != nil && l.UserID > 0
}

type NewUser struct {
	Username     string
	PasswordHash []byte
	PasswordSalt []byte
	Email        *string
	Phone        *string
	RoleCode     *string
}

type AuthClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"sub"`
	Role     string `json:"role"`
	TokenID  string `json:"jti"`
}

// Profile is the caller-visible view of a User.
type Profile struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive bool    `json:"is_active"`
}

func (u User) Profile() Profile {
	return Profile{
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		IsActive: u.IsActive,
	}
}

type LoginResult struct {
	Profile
	Token string `json:"token"`
}
