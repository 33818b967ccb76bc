package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// StatementService is the subset of the statement use case used by the handler.
type StatementService interface {
	CreateStatement(ctx context.Context, input usecase.CreateStatementInput) (*domain.Statement, error)
	GetStatementOperation(ctx context.Context, statementID, userID string) (*domain.Statement, error)
	GetBalance(ctx context.Context, input usecase.GetBalanceInput) (*usecase.BalanceResult, error)
}

// StatementHandler handles statement HTTP requests.
type StatementHandler struct {
	statementUC StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// Deposit handles POST /statements/deposit.
func (h *StatementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.OperationDeposit)
}

// Withdraw handles POST /statements/withdraw.
func (h *StatementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.OperationWithdraw)
}

func (h *StatementHandler) create(w http.ResponseWriter, r *http.Request, opType domain.OperationType) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(userID, opType)
	if err != nil {
		writeDomainError(w, r, "invalid statement", err)
		return
	}

	statement, err := h.statementUC.CreateStatement(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create statement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.StatementFromDomain(statement))
}

// Get handles GET /statements/{statement_id}.
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	statementID := chi.URLParam(r, "statement_id")
	if statementID == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	statement, err := h.statementUC.GetStatementOperation(r.Context(), statementID, userID)
	if err != nil {
		writeDomainError(w, r, "failed to get statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement))
}

// Balance handles GET /statements/balance?with_statement=true.
func (h *StatementHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	withStatements := parseBoolQuery(r, "with_statement", false)

	result, err := h.statementUC.GetBalance(r.Context(), usecase.GetBalanceInput{
		UserID:            userID,
		IncludeStatements: withStatements,
	})
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromResult(result, withStatements))
}
