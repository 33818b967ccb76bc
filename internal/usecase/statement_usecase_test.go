package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
	"github.com/iho/finledger/internal/usecase/mocks"
)

func TestStatementUseCase_CreateStatement(t *testing.T) {
	tests := []struct {
		name     string
		opType   domain.OperationType
		wantErr  error
		wantSign int
	}{
		{name: "deposit", opType: domain.OperationDeposit, wantSign: 1},
		{name: "withdraw", opType: domain.OperationWithdraw, wantSign: -1},
		{name: "transfer is not a plain statement", opType: domain.OperationTransfer, wantErr: domain.ErrInvalidOperationType},
		{name: "unknown type", opType: "refund", wantErr: domain.ErrInvalidOperationType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			ctx := context.Background()

			st, err := l.statements.CreateStatement(ctx, usecase.CreateStatementInput{
				UserID:      "user-a",
				Description: "salary",
				Type:        tt.opType,
				Amount:      decimal.NewFromInt(100),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, st)

				res, err := l.statements.GetBalance(ctx, usecase.GetBalanceInput{UserID: "user-a", IncludeStatements: true})
				require.NoError(t, err)
				assert.Empty(t, res.Statements)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, st.ID)
			assert.Equal(t, tt.opType, st.Type())
			assert.False(t, st.CreatedAt.IsZero())
			assert.True(t, st.SignedAmount().Equal(decimal.NewFromInt(int64(tt.wantSign*100))))

			events, err := l.store.Outbox().GetUnpublished(ctx, 10)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventTypeStatementCreated, events[0].EventType)
			assert.Equal(t, st.ID, events[0].AggregateID)
		})
	}
}

func TestStatementUseCase_DuplicateCreatesAreNotIdempotent(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	input := usecase.CreateStatementInput{
		UserID:      "user-a",
		Description: "cash",
		Type:        domain.OperationDeposit,
		Amount:      decimal.NewFromInt(10),
	}

	first, err := l.statements.CreateStatement(ctx, input)
	require.NoError(t, err)
	second, err := l.statements.CreateStatement(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	res, err := l.statements.GetBalance(ctx, usecase.GetBalanceInput{UserID: "user-a", IncludeStatements: true})
	require.NoError(t, err)
	assert.Len(t, res.Statements, 2)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(20)))
}

func TestStatementUseCase_GetStatementOperation(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	st, err := l.statements.CreateStatement(ctx, usecase.CreateStatementInput{
		UserID:      "owner",
		Description: "cash",
		Type:        domain.OperationDeposit,
		Amount:      decimal.RequireFromString("12.34"),
	})
	require.NoError(t, err)

	found, err := l.statements.GetStatementOperation(ctx, st.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, st.ID, found.ID)
	assert.True(t, found.Amount.Equal(decimal.RequireFromString("12.34")))

	_, errOther := l.statements.GetStatementOperation(ctx, st.ID, "someone-else")
	_, errMissing := l.statements.GetStatementOperation(ctx, "no-such-id", "owner")
	assert.ErrorIs(t, errOther, domain.ErrStatementNotFound)
	assert.ErrorIs(t, errMissing, domain.ErrStatementNotFound)
	assert.Equal(t, errMissing.Error(), errOther.Error())
}

func TestStatementUseCase_GetBalance(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	res, err := l.statements.GetBalance(ctx, usecase.GetBalanceInput{UserID: "nobody", IncludeStatements: true})
	require.NoError(t, err)
	assert.True(t, res.Balance.IsZero())
	assert.NotNil(t, res.Statements)
	assert.Empty(t, res.Statements)

	res, err = l.statements.GetBalance(ctx, usecase.GetBalanceInput{UserID: "nobody"})
	require.NoError(t, err)
	assert.Nil(t, res.Statements)

	for _, in := range []usecase.CreateStatementInput{
		{UserID: "user-a", Description: "in", Type: domain.OperationDeposit, Amount: decimal.RequireFromString("100.10")},
		{UserID: "user-a", Description: "out", Type: domain.OperationWithdraw, Amount: decimal.RequireFromString("30.05")},
		{UserID: "user-a", Description: "out", Type: domain.OperationWithdraw, Amount: decimal.RequireFromString("80")},
	} {
		_, err := l.statements.CreateStatement(ctx, in)
		require.NoError(t, err)
	}

	with, err := l.statements.GetBalance(ctx, usecase.GetBalanceInput{UserID: "user-a", IncludeStatements: true})
	require.NoError(t, err)
	without, err := l.statements.GetBalance(ctx, usecase.GetBalanceInput{UserID: "user-a"})
	require.NoError(t, err)

	want := decimal.RequireFromString("-9.95")
	assert.True(t, with.Balance.Equal(want), "got %s", with.Balance)
	assert.True(t, without.Balance.Equal(with.Balance))
	require.Len(t, with.Statements, 3)
	assert.Equal(t, "in", with.Statements[0].Description)
}

func TestStatementUseCase_CreateStatement_StorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)

	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	statementRepo := mocks.NewMockStatementRepository(ctrl)
	outboxRepo := mocks.NewMockOutboxRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	dbErr := errors.New("connection reset")

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	idGen.EXPECT().Generate().Return("st-1")
	statementRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(dbErr)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewStatementUseCase(txManager, statementRepo, outboxRepo, idGen)
	_, err := uc.CreateStatement(context.Background(), usecase.CreateStatementInput{
		UserID: "user-a",
		Type:   domain.OperationDeposit,
		Amount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, dbErr)
}

func TestStatementUseCase_GetBalance_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	statementRepo := mocks.NewMockStatementRepository(ctrl)
	dbErr := errors.New("timeout")
	statementRepo.EXPECT().ListByUser(gomock.Any(), "user-a").Return(nil, dbErr)

	uc := usecase.NewStatementUseCase(nil, statementRepo, nil, nil)
	_, err := uc.GetBalance(context.Background(), usecase.GetBalanceInput{UserID: "user-a"})
	assert.ErrorIs(t, err, dbErr)
}
