package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// StatementResponse represents a statement in API responses.
type StatementResponse struct {
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	SenderID    *string         `json:"sender_id,omitempty"`
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// StatementFromDomain converts a domain statement to response.
// sender_id is only present on transfer credits.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	resp := &StatementResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Type:        string(s.Type()),
		Amount:      s.Amount,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}

	if sender := s.SenderID(); sender != "" {
		resp.SenderID = &sender
	}

	return resp
}

// StatementsFromDomain converts domain statements to responses.
func StatementsFromDomain(statements []*domain.Statement) []*StatementResponse {
	result := make([]*StatementResponse, len(statements))
	for i, s := range statements {
		result[i] = StatementFromDomain(s)
	}
	return result
}

// BalanceResponse represents a balance without its statements.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// BalanceWithStatementsResponse represents a balance together with the
// statements it was derived from.
type BalanceWithStatementsResponse struct {
	Statement []*StatementResponse `json:"statement"`
	Balance   decimal.Decimal      `json:"balance"`
}

// BalanceFromResult converts a balance result to the matching response shape.
func BalanceFromResult(result *usecase.BalanceResult, withStatements bool) any {
	if !withStatements {
		return &BalanceResponse{Balance: result.Balance}
	}

	return &BalanceWithStatementsResponse{
		Statement: StatementsFromDomain(result.Statements),
		Balance:   result.Balance,
	}
}

// UserResponse represents a user in API responses. The password hash is never exposed.
type UserResponse struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SessionResponse is returned after a successful login.
type SessionResponse struct {
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
	Token     string        `json:"token"`
}

// ConsistencyResponse reports the result of a ledger consistency check.
type ConsistencyResponse struct {
	Status              string   `json:"status"`
	Message             string   `json:"message,omitempty"`
	UnbalancedTransfers []string `json:"unbalanced_transfers,omitempty"`
	Consistent          bool     `json:"consistent"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
