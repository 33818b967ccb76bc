package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/metrics"
	"github.com/iho/finledger/internal/usecase"
)

// UserService is the subset of the user use case used by the handler.
type UserService interface {
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, time.Time, error)
}

// UserHandler handles registration, login and profile requests.
type UserHandler struct {
	userUC  UserService
	tokens  TokenIssuer
	metrics *metrics.Metrics
}

// NewUserHandler creates a new UserHandler. m may be nil.
func NewUserHandler(userUC UserService, tokens TokenIssuer, m *metrics.Metrics) *UserHandler {
	return &UserHandler{
		userUC:  userUC,
		tokens:  tokens,
		metrics: m,
	}
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// Login handles POST /sessions.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.countAttempt("failure")
		writeDomainError(w, r, "invalid credentials", err)
		return
	}

	token, expiresAt, err := h.tokens.Generate(user)
	if err != nil {
		h.countAttempt("failure")
		writeDomainError(w, r, "failed to generate token", err)
		return
	}

	h.countAttempt("success")
	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.UserFromDomain(user),
	})
}

// Profile handles GET /profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	user, err := h.userUC.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, "failed to get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

func (h *UserHandler) countAttempt(status string) {
	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}
