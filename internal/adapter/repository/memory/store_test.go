package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/finledger/internal/domain"
)

func deposit(id, userID string, amount int64) *domain.Statement {
	return &domain.Statement{
		ID:          id,
		UserID:      userID,
		Amount:      decimal.NewFromInt(amount),
		Description: "deposit",
		Operation:   domain.Deposit{},
	}
}

func TestStatementRepository_CommitMakesVisible(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Statements()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	st := deposit("st-1", "user-1", 100)
	require.NoError(t, repo.Create(ctx, tx, st))
	assert.False(t, st.CreatedAt.IsZero(), "store should stamp created_at")
	assert.Equal(t, st.CreatedAt, st.UpdatedAt)

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list, "uncommitted statements must not be visible")

	require.NoError(t, tx.Commit(ctx))

	list, err = repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "st-1", list[0].ID)
}

func TestStatementRepository_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Statements()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, deposit("st-1", "user-1", 100)))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetByIDForUser(ctx, "st-1", "user-1")
	assert.ErrorIs(t, err, domain.ErrStatementNotFound)

	assert.ErrorIs(t, repo.Create(ctx, tx, deposit("st-2", "user-1", 1)), ErrTxDone)
	assert.ErrorIs(t, tx.Commit(ctx), ErrTxDone)
}

func TestStatementRepository_RollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Statements()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, deposit("st-1", "user-1", 100)))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetByIDForUser(ctx, "st-1", "user-1")
	assert.NoError(t, err)
}

func TestStatementRepository_ForeignTx(t *testing.T) {
	ctx := context.Background()
	other := NewStore()
	tx, err := other.Begin(ctx)
	require.NoError(t, err)

	err = NewStore().Statements().Create(ctx, tx, deposit("st-1", "user-1", 1))
	assert.ErrorIs(t, err, ErrForeignTx)
}

func TestStatementRepository_GetByIDForUserIsScoped(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Statements()

	tx, _ := store.Begin(ctx)
	require.NoError(t, repo.Create(ctx, tx, deposit("st-1", "owner", 100)))
	require.NoError(t, tx.Commit(ctx))

	found, err := repo.GetByIDForUser(ctx, "st-1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "owner", found.UserID)

	_, errOther := repo.GetByIDForUser(ctx, "st-1", "intruder")
	_, errMissing := repo.GetByIDForUser(ctx, "missing", "owner")
	assert.ErrorIs(t, errOther, domain.ErrStatementNotFound)
	assert.Equal(t, errMissing, errOther)
}

func TestStatementRepository_ListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Statements()

	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		tx, _ := store.Begin(ctx)
		require.NoError(t, repo.Create(ctx, tx, deposit(id, "user-1", 1)))
		require.NoError(t, tx.Commit(ctx))
	}

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, id := range ids {
		assert.Equal(t, id, list[i].ID)
	}
}

func TestLedgerRepository_FindUnbalancedTransfers(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Statements()

	tx, _ := store.Begin(ctx)
	// balanced pair
	require.NoError(t, repo.Create(ctx, tx, &domain.Statement{
		ID: "in-1", UserID: "u1", Amount: decimal.NewFromInt(20),
		Operation: domain.TransferIn{SenderID: "u2", TransferID: "tr-ok"},
	}))
	require.NoError(t, repo.Create(ctx, tx, &domain.Statement{
		ID: "out-1", UserID: "u2", Amount: decimal.NewFromInt(20),
		Operation: domain.TransferOut{TransferID: "tr-ok"},
	}))
	// orphaned credit
	require.NoError(t, repo.Create(ctx, tx, &domain.Statement{
		ID: "in-2", UserID: "u1", Amount: decimal.NewFromInt(5),
		Operation: domain.TransferIn{SenderID: "u2", TransferID: "tr-orphan"},
	}))
	// mismatched amounts
	require.NoError(t, repo.Create(ctx, tx, &domain.Statement{
		ID: "in-3", UserID: "u1", Amount: decimal.NewFromInt(5),
		Operation: domain.TransferIn{SenderID: "u2", TransferID: "tr-diff"},
	}))
	require.NoError(t, repo.Create(ctx, tx, &domain.Statement{
		ID: "out-3", UserID: "u2", Amount: decimal.NewFromInt(4),
		Operation: domain.TransferOut{TransferID: "tr-diff"},
	}))
	require.NoError(t, repo.Create(ctx, tx, deposit("dep", "u1", 1)))
	require.NoError(t, tx.Commit(ctx))

	unbalanced, err := store.Ledger().FindUnbalancedTransfers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tr-orphan", "tr-diff"}, unbalanced)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	user := &domain.User{ID: "u1", Email: "jane@example.com", Name: "Jane"}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u2", Email: "jane@example.com"}), domain.ErrUserAlreadyExists)

	byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestOutboxRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	outbox := store.Outbox()

	tx, _ := store.Begin(ctx)
	require.NoError(t, outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "evt-1"}))
	require.NoError(t, outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "evt-2"}))

	pending, err := outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, tx.Commit(ctx))

	pending, err = outbox.GetUnpublished(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-1", pending[0].ID)

	require.NoError(t, outbox.MarkPublished(ctx, "evt-1", time.Now()))

	pending, err = outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-2", pending[0].ID)
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	exists, _, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, value, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, pendingMarker, string(value))

	require.NoError(t, store.Update(ctx, "key", []byte("done"), time.Minute))
	_, value, _ = store.CheckAndSet(ctx, "key", nil, time.Minute)
	assert.Equal(t, "done", string(value))

	require.NoError(t, store.Release(ctx, "key"))
	exists, _, _ = store.CheckAndSet(ctx, "key", nil, time.Minute)
	assert.False(t, exists, "released key can be claimed again")

	now = now.Add(2 * time.Minute)
	exists, _, _ = store.CheckAndSet(ctx, "key", nil, time.Minute)
	assert.False(t, exists, "expired key can be claimed again")
}
