package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/usecase"
)

// LedgerService is the subset of the ledger use case used by the handler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (bool, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency checks that every transfer has both of its legs.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		var inconsistency *usecase.InconsistencyError
		if errors.As(err, &inconsistency) {
			writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
				Status:              "inconsistent",
				Consistent:          false,
				Message:             err.Error(),
				UnbalancedTransfers: inconsistency.TransferIDs,
			})
			return
		}
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		Status:     "consistent",
		Consistent: consistent,
	})
}
