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

// TransferService is the subset of the transfer use case used by the handler.
type TransferService interface {
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Statement, error)
}

// UserLookup resolves transfer recipients.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
	users      UserLookup
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService, users UserLookup) *TransferHandler {
	return &TransferHandler{
		transferUC: transferUC,
		users:      users,
	}
}

// Create handles POST /statements/transfers/{user_id}. The authenticated
// user pays and the path user receives. The response is the recipient's credit.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	senderID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	recipientID := chi.URLParam(r, "user_id")
	if recipientID == "" {
		writeError(w, http.StatusBadRequest, "missing recipient ID", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(recipientID, senderID)
	if err != nil {
		writeDomainError(w, r, "invalid transfer", err)
		return
	}

	if _, err := h.users.GetUser(r.Context(), recipientID); err != nil {
		writeDomainError(w, r, "recipient not found", err)
		return
	}

	credit, err := h.transferUC.CreateTransfer(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.StatementFromDomain(credit))
}
