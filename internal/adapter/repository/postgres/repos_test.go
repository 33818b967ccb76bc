package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/postgres/generated"
)

func TestLedgerRepository_FindUnbalancedTransfers(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(regexp.QuoteMeta("GROUP BY transfer_id")).
		WillReturnRows(pgxmock.NewRows([]string{"transfer_id"}).AddRow("tr-1").AddRow("tr-2"))

	ids, err := NewLedgerRepository(mockPool).FindUnbalancedTransfers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tr-1", "tr-2"}, ids)
	assertExpectations(t, mockPool)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "Jane", "jane@example.com", "hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := NewUserRepository(mockPool).Create(context.Background(), &domain.User{
		ID: "u1", Name: "Jane", Email: "jane@example.com", HashedPassword: "hash",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestUserRepository_NotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).WithArgs("x@example.com").WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mockPool)
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.GetByEmail(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestOutboxRepository_CreateAndMarkPublished(t *testing.T) {
	ctx := context.Background()
	mockPool := newMockPool(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("evt-1", "st-1", domain.AggregateTypeStatement, domain.EventTypeStatementCreated,
			[]byte(`{"amount":"10"}`), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("evt-1", timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewOutboxRepository(mockPool)
	tx, err := NewTxManager(mockPool).Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "st-1",
		AggregateType: domain.AggregateTypeStatement,
		EventType:     domain.EventTypeStatementCreated,
		Payload:       map[string]any{"amount": "10"},
		CreatedAt:     now,
	}))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, repo.MarkPublished(ctx, "evt-1", now))
	assertExpectations(t, mockPool)
}

func TestOutboxRepository_GetUnpublishedError(t *testing.T) {
	mockPool := newMockPool(t)
	dbErr := errors.New("db down")
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE published = FALSE")).WithArgs(int32(5)).WillReturnError(dbErr)

	_, err := NewOutboxRepository(mockPool).GetUnpublished(context.Background(), 5)
	assert.ErrorIs(t, err, dbErr)
}

func TestRowToOutboxEvent(t *testing.T) {
	event, err := rowToOutboxEvent(generated.OutboxEvent{ID: "evt-1", Payload: []byte(`{"amount":"10"}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"amount": "10"}, event.Payload)

	_, err = rowToOutboxEvent(generated.OutboxEvent{ID: "evt-2", Payload: []byte(`{not json`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evt-2")
}

func TestULIDGenerator_Monotonic(t *testing.T) {
	gen := NewULIDGenerator()
	fixed := time.Now()
	gen.now = func() time.Time { return fixed }

	prev := gen.Generate()
	for i := 0; i < 100; i++ {
		next := gen.Generate()
		require.Len(t, next, 26)
		require.Greater(t, next, prev)
		prev = next
	}
}
