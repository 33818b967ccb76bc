package postgres

import (
	"context"

	"github.com/iho/finledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// FindUnbalancedTransfers returns transfers without exactly one credit and
// one debit of equal amount, oldest first.
func (r *LedgerRepository) FindUnbalancedTransfers(ctx context.Context) ([]string, error) {
	return r.queries.FindUnbalancedTransfers(ctx)
}
