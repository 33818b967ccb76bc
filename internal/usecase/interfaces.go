package usecase

import (
	"context"
	"time"

	"github.com/iho/finledger/internal/domain"
)

// StatementRepository defines data access for statements.
type StatementRepository interface {
	// Create persists a statement inside tx and stamps its timestamps.
	Create(ctx context.Context, tx Transaction, statement *domain.Statement) error
	// GetByIDForUser returns domain.ErrStatementNotFound unless the statement exists and belongs to userID.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Statement, error)
	// ListByUser returns the user's statements in insertion order.
	ListByUser(ctx context.Context, userID string) ([]*domain.Statement, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// FindUnbalancedTransfers returns the ids of transfers whose legs do not pair up.
	FindUnbalancedTransfers(ctx context.Context) ([]string, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so that a failed request can be retried.
	Release(ctx context.Context, key string) error
}
