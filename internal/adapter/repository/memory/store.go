// Package memory is an in-process implementation of the ledger repositories.
// Writes made through a Tx are buffered and become visible only on Commit.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

var (
	// ErrTxDone is returned when a finished transaction is used again.
	ErrTxDone = errors.New("memory: transaction has already been committed or rolled back")
	// ErrForeignTx is returned when a transaction from another store is passed in.
	ErrForeignTx = errors.New("memory: transaction does not belong to this store")
)

// Store holds all ledger data in memory.
type Store struct {
	mu         sync.RWMutex
	statements []*domain.Statement
	byID       map[string]*domain.Statement
	users      map[string]*domain.User
	emails     map[string]string
	events     []*domain.OutboxEvent
	now        func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*domain.Statement),
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Begin starts a new transaction. Implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: s}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	store      *Store
	statements []*domain.Statement
	events     []*domain.OutboxEvent
	done       bool
}

// Commit applies buffered writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range t.statements {
		s.statements = append(s.statements, st)
		s.byID[st.ID] = st
	}
	s.events = append(s.events, t.events...)

	return nil
}

// Rollback discards buffered writes. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.statements = nil
	t.events = nil
	return nil
}

func (s *Store) txFrom(tx usecase.Transaction) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, ErrForeignTx
	}
	if mt.done {
		return nil, ErrTxDone
	}
	return mt, nil
}

// Statements returns the statement repository view of the store.
func (s *Store) Statements() *StatementRepository {
	return &StatementRepository{store: s}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Outbox returns the outbox repository view of the store.
func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{store: s}
}

// Ledger returns the ledger repository view of the store.
func (s *Store) Ledger() *LedgerRepository {
	return &LedgerRepository{store: s}
}
