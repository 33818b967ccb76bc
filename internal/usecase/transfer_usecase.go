package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/metrics"
)

// TransferUseCase records transfers between users as paired statements.
type TransferUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	outboxRepo    OutboxRepository
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	statementRepo StatementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:     txManager,
		statementRepo: statementRepo,
		outboxRepo:    outboxRepo,
		idGen:         idGen,
	}
}

// WithMetrics enables transfer metrics.
func (uc *TransferUseCase) WithMetrics(m *metrics.Metrics) *TransferUseCase {
	uc.metrics = m
	return uc
}

// CreateTransferInput represents input for creating a transfer.
// UserID receives the money, SenderID pays it.
type CreateTransferInput struct {
	UserID      string
	SenderID    string
	Description string
	Amount      decimal.Decimal
}

// CreateTransfer writes the recipient's credit and the payer's debit in one
// transaction and returns the credit. On any failure nothing is committed and
// a *domain.TransferError is returned.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Statement, error) {
	start := time.Now()
	credit, err := uc.createTransfer(ctx, input)
	uc.observe(start, err)
	return credit, err
}

func (uc *TransferUseCase) createTransfer(ctx context.Context, input CreateTransferInput) (*domain.Statement, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, &domain.TransferError{Leg: domain.LegBegin, Err: err}
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transferID := uc.idGen.Generate()

	credit := &domain.Statement{
		ID:          uc.idGen.Generate(),
		UserID:      input.UserID,
		Amount:      input.Amount,
		Description: input.Description,
		Operation:   domain.TransferIn{SenderID: input.SenderID, TransferID: transferID},
	}
	if err := uc.statementRepo.Create(txCtx, tx, credit); err != nil {
		return nil, &domain.TransferError{Leg: domain.LegCredit, Err: err}
	}

	debit := &domain.Statement{
		ID:          uc.idGen.Generate(),
		UserID:      input.SenderID,
		Amount:      input.Amount,
		Description: domain.AutoWithdrawDescription,
		Operation:   domain.TransferOut{TransferID: transferID},
	}
	if err := uc.statementRepo.Create(txCtx, tx, debit); err != nil {
		return nil, &domain.TransferError{Leg: domain.LegDebit, Err: err}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transferID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreated,
		Payload: map[string]any{
			"transfer_id":         transferID,
			"credit_statement_id": credit.ID,
			"debit_statement_id":  debit.ID,
			"recipient_id":        input.UserID,
			"sender_id":           input.SenderID,
			"amount":              input.Amount.String(),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, &domain.TransferError{Leg: domain.LegCommit, Err: err}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, &domain.TransferError{Leg: domain.LegCommit, Err: err}
	}

	return credit, nil
}

func (uc *TransferUseCase) observe(start time.Time, err error) {
	if uc.metrics == nil {
		return
	}

	if err != nil {
		leg := "unknown"
		var transferErr *domain.TransferError
		if errors.As(err, &transferErr) {
			leg = transferErr.Leg
		}
		uc.metrics.TransferErrors.WithLabelValues(leg).Inc()
		return
	}

	uc.metrics.TransfersCreated.Inc()
	uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
}
