package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/iho/finledger/internal/adapter/repository/memory"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

type seqIDGenerator struct {
	n atomic.Int64
}

func (g *seqIDGenerator) Generate() string {
	return fmt.Sprintf("id-%03d", g.n.Add(1))
}

type ledger struct {
	store      *memory.Store
	statements *usecase.StatementUseCase
	transfers  *usecase.TransferUseCase
	ledger     *usecase.LedgerUseCase
}

func newLedger() *ledger {
	store := memory.NewStore()
	idGen := &seqIDGenerator{}
	return &ledger{
		store:      store,
		statements: usecase.NewStatementUseCase(store, store.Statements(), store.Outbox(), idGen),
		transfers:  usecase.NewTransferUseCase(store, store.Statements(), store.Outbox(), idGen),
		ledger:     usecase.NewLedgerUseCase(store.Ledger()),
	}
}

var errInjected = errors.New("injected storage failure")

// failingStatementRepo delegates to a real repository but fails the nth Create.
type failingStatementRepo struct {
	usecase.StatementRepository
	failOn int
	calls  int
}

func (r *failingStatementRepo) Create(ctx context.Context, tx usecase.Transaction, st *domain.Statement) error {
	r.calls++
	if r.calls == r.failOn {
		return errInjected
	}
	return r.StatementRepository.Create(ctx, tx, st)
}
