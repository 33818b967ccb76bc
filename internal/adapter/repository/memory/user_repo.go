package memory

import (
	"context"

	"github.com/iho/finledger/internal/domain"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	store *Store
}

// Create inserts a new user. Emails are unique.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.emails[user.Email]; exists {
		return domain.ErrUserAlreadyExists
	}

	stored := *user
	r.store.users[user.ID] = &stored
	r.store.emails[user.Email] = user.ID

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	found := *user
	return &found, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	found := *r.store.users[id]
	return &found, nil
}
