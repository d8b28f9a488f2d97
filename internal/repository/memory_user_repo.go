package repository

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"go-society-hub/internal/model"
)

type memoryUser struct {
	user     model.User
	hash     []byte
	salt     []byte
	roleCode string
}

// MemoryUserRepository keeps users in process memory with the same
// semantics as UserRepository. Contents are lost on restart.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	usersByID  map[int64]*memoryUser
	idsByLower map[string]int64
	now        func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		usersByID:  map[int64]*memoryUser{},
		idsByLower: map[string]int64{},
		now:        time.Now,
	}
}

func (r *MemoryUserRepository) Register(_ context.Context, u model.NewUser) (int64, error) {
	if strings.TrimSpace(u.Username) == "" || len(u.PasswordHash) == 0 || len(u.PasswordSalt) == 0 {
		return 0, model.NewStoreError(model.ErrDuplicateOrInvalid, msgInvalidUserInput)
	}

	key := strings.ToLower(u.Username)
	roleCode := defaultRoleCode
	if u.RoleCode != nil && *u.RoleCode != "" {
		roleCode = *u.RoleCode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.idsByLower[key]; exists {
		return 0, model.NewStoreError(model.ErrDuplicateOrInvalid, msgUsernameTaken)
	}

	r.nextID++
	id := r.nextID
	r.usersByID[id] = &memoryUser{
		user: model.User{
			UserID:    id,
			Username:  u.Username,
			Email:     cloneString(u.Email),
			Phone:     cloneString(u.Phone),
			IsActive:  true,
			CreatedAt: r.now().UTC(),
		},
		hash:     bytes.Clone(u.PasswordHash),
		salt:     bytes.Clone(u.PasswordSalt),
		roleCode: roleCode,
	}
	r.idsByLower[key] = id

	return id, nil
}

func (r *MemoryUserRepository) LookupCredential(_ context.Context, username string, _ string, _ string) (model.CredentialLookup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.idsByLower[strings.ToLower(username)]
	if !exists {
		return model.CredentialLookup{Status: LookupNotFound, Message: msgUserNotFound}, nil
	}

	stored := r.usersByID[id]
	if !stored.user.IsActive {
		return model.CredentialLookup{Status: LookupInactive, Message: msgUserInactive}, nil
	}

	return model.CredentialLookup{
		Status:       LookupFound,
		PasswordHash: bytes.Clone(stored.hash),
		PasswordSalt: bytes.Clone(stored.salt),
		UserID:       id,
	}, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, userID int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.usersByID[userID]
	if !exists {
		return nil, nil
	}
	return stored.snapshot(), nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.idsByLower[strings.ToLower(username)]
	if !exists {
		return nil, nil
	}
	return r.usersByID[id].snapshot(), nil
}

func (r *MemoryUserRepository) Update(_ context.Context, userID int64, email *string, phone *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.usersByID[userID]
	if !exists {
		return model.NewStoreError(model.ErrUserNotFound, msgUserNotFound)
	}

	if email != nil {
		stored.user.Email = cloneString(email)
	}
	if phone != nil {
		stored.user.Phone = cloneString(phone)
	}
	stored.touch(r.now())
	return nil
}

func (r *MemoryUserRepository) ChangePassword(_ context.Context, userID int64, newHash []byte, newSalt []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.usersByID[userID]
	if !exists {
		return model.NewStoreError(model.ErrUserNotFound, msgUserNotFound)
	}

	stored.hash = bytes.Clone(newHash)
	stored.salt = bytes.Clone(newSalt)
	stored.touch(r.now())
	return nil
}

// SetActive flips the account flag. Nothing in the auth flow calls it; it
// exists for seeding and tests of the inactive lookup status.
func (r *MemoryUserRepository) SetActive(userID int64, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.usersByID[userID]
	if !exists {
		return false
	}
	stored.user.IsActive = active
	return true
}

func (m *memoryUser) snapshot() *model.User {
	u := m.user
	u.Email = cloneString(m.user.Email)
	u.Phone = cloneString(m.user.Phone)
	if m.user.UpdatedAt != nil {
		updated := *m.user.UpdatedAt
		u.UpdatedAt = &updated
	}
	return &u
}

func (m *memoryUser) touch(now time.Time) {
	updated := now.UTC()
	m.user.UpdatedAt = &updated
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
