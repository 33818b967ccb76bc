package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/postgres/generated"
	"github.com/iho/finledger/internal/usecase"
)

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewStatementRepository creates a new StatementRepository. db is usually a *pgxpool.Pool.
func NewStatementRepository(db generated.DBTX) *StatementRepository {
	return &StatementRepository{
		queries: generated.New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a statement within a transaction.
func (r *StatementRepository) Create(ctx context.Context, tx usecase.Transaction, statement *domain.Statement) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}
	queries := r.queries.WithTx(pgxTx)

	amount, err := decimalToNumeric(statement.Amount)
	if err != nil {
		return err
	}

	now := r.now()
	statement.CreatedAt = now
	statement.UpdatedAt = now

	return queries.CreateStatement(ctx, generated.CreateStatementParams{
		ID:          statement.ID,
		UserID:      statement.UserID,
		Type:        string(statement.Type()),
		Amount:      amount,
		Description: statement.Description,
		SenderID:    textOrNull(statement.SenderID()),
		TransferID:  textOrNull(statement.TransferID()),
		CreatedAt:   timeToPgTimestamptz(now),
		UpdatedAt:   timeToPgTimestamptz(now),
	})
}

// GetByIDForUser retrieves a statement owned by userID.
func (r *StatementRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Statement, error) {
	row, err := r.queries.GetStatementByIDForUser(ctx, generated.GetStatementByIDForUserParams{
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}

		return nil, err
	}

	return rowToStatement(row)
}

// ListByUser lists the user's statements in insertion order.
func (r *StatementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Statement, error) {
	rows, err := r.queries.ListStatementsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	statements := make([]*domain.Statement, 0, len(rows))
	for _, row := range rows {
		st, err := rowToStatement(row)
		if err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}

	return statements, nil
}

func rowToStatement(row generated.Statement) (*domain.Statement, error) {
	op, err := domain.OperationFromRecord(domain.OperationType(row.Type), textPtr(row.SenderID), textPtr(row.TransferID))
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", row.ID, err)
	}

	amount, err := numericToDecimal(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("statement %s amount: %w", row.ID, err)
	}

	return &domain.Statement{
		ID:          row.ID,
		UserID:      row.UserID,
		Amount:      amount,
		Description: row.Description,
		Operation:   op,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}, nil
}
