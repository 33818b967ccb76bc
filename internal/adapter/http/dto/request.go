package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// CreateSessionRequest represents a login request.
type CreateSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSessionRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Email:    r.Email,
		Password: r.Password,
	}
}

// CreateStatementRequest represents a deposit or withdraw request.
// Amount accepts both JSON numbers and strings.
type CreateStatementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ToUseCaseInput validates the request and converts it to use case input.
func (r *CreateStatementRequest) ToUseCaseInput(userID string, opType domain.OperationType) (usecase.CreateStatementInput, error) {
	if err := validateStatement(r.Amount, r.Description); err != nil {
		return usecase.CreateStatementInput{}, err
	}

	return usecase.CreateStatementInput{
		UserID:      userID,
		Description: strings.TrimSpace(r.Description),
		Type:        opType,
		Amount:      r.Amount,
	}, nil
}

// CreateTransferRequest represents a transfer from the authenticated user
// to the user named in the path.
type CreateTransferRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ToUseCaseInput validates the request and converts it to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(recipientID, senderID string) (usecase.CreateTransferInput, error) {
	if recipientID == senderID {
		return usecase.CreateTransferInput{}, domain.ErrSameUser
	}

	if err := validateStatement(r.Amount, r.Description); err != nil {
		return usecase.CreateTransferInput{}, err
	}

	return usecase.CreateTransferInput{
		UserID:      recipientID,
		SenderID:    senderID,
		Description: strings.TrimSpace(r.Description),
		Amount:      r.Amount,
	}, nil
}

func validateStatement(amount decimal.Decimal, description string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	return domain.ValidateDescription(description)
}
