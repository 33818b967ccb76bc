package domain

import (
	"errors"
	"fmt"
)

var (
	// Statement errors
	ErrStatementNotFound    = errors.New("statement not found")
	ErrInvalidOperationType = errors.New("invalid operation type")
	ErrInvalidAmount        = errors.New("amount must be positive")

	// Transfer errors
	ErrSameUser       = errors.New("cannot transfer to the same user")
	ErrTransferFailed = errors.New("transfer was not committed")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// Transfer legs.
const (
	LegBegin  = "begin"
	LegCredit = "credit"
	LegDebit  = "debit"
	LegCommit = "commit"
)

// TransferError reports which step of a transfer failed. Nothing of the
// transfer is committed when it is returned.
type TransferError struct {
	Err error
	Leg string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s failed: %v", e.Leg, e.Err)
}

// Unwrap exposes the underlying storage error.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// Is makes every TransferError match ErrTransferFailed.
func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailed
}
