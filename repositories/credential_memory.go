// repositories/credential_memory.go
package repositories

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lawmate/lawmate_backend/models"
)

// MemoryCredentialRepository is an in-memory CredentialRepository for tests.
// Now is swappable so tests can simulate clock skips past the pending TTL.
type MemoryCredentialRepository struct {
	mu         sync.RWMutex
	users      map[string]models.User
	pending    map[string]models.PendingUser
	challenges map[string]models.PhoneChallenge
	Now        func() time.Time
}

// NewMemoryCredentialRepository builds an in-memory credential store
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		users:      make(map[string]models.User),
		pending:    make(map[string]models.PendingUser),
		challenges: make(map[string]models.PhoneChallenge),
		Now:        time.Now,
	}
}

func (r *MemoryCredentialRepository) FindByMobile(_ context.Context, mobile string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[mobile]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &user, nil
}

func (r *MemoryCredentialRepository) UpsertPending(_ context.Context, pending models.PendingUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.pending[pending.Mobile]; ok {
		// createdAt survives resubmission, matching $setOnInsert
		pending.CreatedAt = existing.CreatedAt
		pending.ID = existing.ID
	} else if pending.ID.IsZero() {
		pending.ID = primitive.NewObjectID()
	}
	r.pending[pending.Mobile] = pending
	return nil
}

func (r *MemoryCredentialRepository) FindPendingByMobile(_ context.Context, mobile string) (*models.PendingUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending, ok := r.pending[mobile]
	if !ok || r.expired(pending) {
		return nil, models.ErrNotFound
	}
	return &pending, nil
}

func (r *MemoryCredentialRepository) PromotePending(_ context.Context, mobile string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.pending[mobile]
	if !ok || r.expired(pending) {
		return nil, models.ErrNotFound
	}
	if _, exists := r.users[mobile]; exists {
		return nil, models.ErrConflict
	}

	user := models.User{
		ID:         primitive.NewObjectID(),
		Mobile:     pending.Mobile,
		Name:       pending.Name,
		Address:    pending.Address,
		Role:       models.RoleUser,
		IsVerified: true,
		CreatedAt:  r.Now(),
	}
	r.users[mobile] = user
	delete(r.pending, mobile)

	return &user, nil
}

func (r *MemoryCredentialRepository) DeletePending(_ context.Context, mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, mobile)
	return nil
}

func (r *MemoryCredentialRepository) UpsertChallenge(_ context.Context, challenge models.PhoneChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.challenges[challenge.Mobile] = challenge
	return nil
}

func (r *MemoryCredentialRepository) FindChallenge(_ context.Context, mobile string) (*models.PhoneChallenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	challenge, ok := r.challenges[mobile]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &challenge, nil
}

func (r *MemoryCredentialRepository) DeleteChallenge(_ context.Context, mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.challenges, mobile)
	return nil
}

// PendingCount reports how many staging records exist, for assertions
func (r *MemoryCredentialRepository) PendingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// UserCount reports how many verified users exist, for assertions
func (r *MemoryCredentialRepository) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *MemoryCredentialRepository) expired(pending models.PendingUser) bool {
	return !r.Now().Before(pending.CreatedAt.Add(PendingTTL))
}
