package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	store *Store
}

// Create buffers a statement in tx.
func (r *StatementRepository) Create(ctx context.Context, tx usecase.Transaction, statement *domain.Statement) error {
	mt, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}

	now := r.store.now()
	statement.CreatedAt = now
	statement.UpdatedAt = now

	stored := *statement
	mt.statements = append(mt.statements, &stored)

	return nil
}

// GetByIDForUser retrieves a committed statement owned by userID.
func (r *StatementRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Statement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	st, ok := r.store.byID[id]
	if !ok || st.UserID != userID {
		return nil, domain.ErrStatementNotFound
	}

	found := *st
	return &found, nil
}

// ListByUser lists committed statements of userID in insertion order.
func (r *StatementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Statement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	statements := make([]*domain.Statement, 0)
	for _, st := range r.store.statements {
		if st.UserID == userID {
			found := *st
			statements = append(statements, &found)
		}
	}

	return statements, nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// FindUnbalancedTransfers returns transfers that do not have exactly one
// credit and one debit of equal amount.
func (r *LedgerRepository) FindUnbalancedTransfers(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	type legs struct {
		count int
		sum   decimal.Decimal
	}

	var order []string
	byTransfer := make(map[string]*legs)
	for _, st := range r.store.statements {
		id := st.TransferID()
		if id == "" {
			continue
		}

		l, ok := byTransfer[id]
		if !ok {
			l = &legs{sum: decimal.Zero}
			byTransfer[id] = l
			order = append(order, id)
		}
		l.count++
		l.sum = l.sum.Add(st.SignedAmount())
	}

	var unbalanced []string
	for _, id := range order {
		l := byTransfer[id]
		if l.count != 2 || !l.sum.IsZero() {
			unbalanced = append(unbalanced, id)
		}
	}

	return unbalanced, nil
}
