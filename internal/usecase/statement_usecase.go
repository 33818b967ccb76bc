package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/metrics"
)

// StatementUseCase handles single statements and balance derivation.
type StatementUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	outboxRepo    OutboxRepository
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	txManager TransactionManager,
	statementRepo StatementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *StatementUseCase {
	return &StatementUseCase{
		txManager:     txManager,
		statementRepo: statementRepo,
		outboxRepo:    outboxRepo,
		idGen:         idGen,
	}
}

// WithMetrics enables statement metrics.
func (uc *StatementUseCase) WithMetrics(m *metrics.Metrics) *StatementUseCase {
	uc.metrics = m
	return uc
}

// CreateStatementInput represents input for a deposit or a withdraw.
type CreateStatementInput struct {
	UserID      string
	Description string
	Type        domain.OperationType
	Amount      decimal.Decimal
}

// CreateStatement records a deposit or a withdraw. Input is expected to be validated by the caller.
func (uc *StatementUseCase) CreateStatement(ctx context.Context, input CreateStatementInput) (*domain.Statement, error) {
	var op domain.Operation
	switch input.Type {
	case domain.OperationDeposit:
		op = domain.Deposit{}
	case domain.OperationWithdraw:
		op = domain.Withdraw{}
	default:
		return nil, domain.ErrInvalidOperationType
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	statement := &domain.Statement{
		ID:          uc.idGen.Generate(),
		UserID:      input.UserID,
		Amount:      input.Amount,
		Description: input.Description,
		Operation:   op,
	}

	if err := uc.statementRepo.Create(txCtx, tx, statement); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   statement.ID,
		AggregateType: domain.AggregateTypeStatement,
		EventType:     domain.EventTypeStatementCreated,
		Payload: map[string]any{
			"statement_id": statement.ID,
			"user_id":      statement.UserID,
			"type":         string(statement.Type()),
			"amount":       statement.Amount.String(),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		opType := string(statement.Type())
		uc.metrics.StatementsCreated.WithLabelValues(opType).Inc()
		uc.metrics.StatementAmount.WithLabelValues(opType).Observe(statement.Amount.InexactFloat64())
	}

	return statement, nil
}

// GetStatementOperation returns one of the user's statements.
// A statement owned by someone else is reported as domain.ErrStatementNotFound.
func (uc *StatementUseCase) GetStatementOperation(ctx context.Context, statementID, userID string) (*domain.Statement, error) {
	return uc.statementRepo.GetByIDForUser(ctx, statementID, userID)
}

// GetBalanceInput represents input for a balance query.
type GetBalanceInput struct {
	UserID            string
	IncludeStatements bool
}

// BalanceResult is a user's balance, optionally with the statements it was folded from.
type BalanceResult struct {
	Statements []*domain.Statement
	Balance    decimal.Decimal
}

// GetBalance derives the user's balance from their full statement history.
func (uc *StatementUseCase) GetBalance(ctx context.Context, input GetBalanceInput) (*BalanceResult, error) {
	statements, err := uc.statementRepo.ListByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalanceQueries.WithLabelValues(strconv.FormatBool(input.IncludeStatements)).Inc()
	}

	result := &BalanceResult{Balance: domain.Balance(statements)}
	if input.IncludeStatements {
		if statements == nil {
			statements = []*domain.Statement{}
		}
		result.Statements = statements
	}

	return result, nil
}
