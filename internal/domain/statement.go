package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the persisted kind of a statement.
type OperationType string

const (
	OperationDeposit  OperationType = "deposit"
	OperationWithdraw OperationType = "withdraw"
	OperationTransfer OperationType = "transfer"
)

// AutoWithdrawDescription is the description of the payer leg of a transfer.
const AutoWithdrawDescription = "automatic withdraw by transfer"

// ParseOperationType validates a raw operation type.
func ParseOperationType(s string) (OperationType, error) {
	switch OperationType(s) {
	case OperationDeposit, OperationWithdraw, OperationTransfer:
		return OperationType(s), nil
	default:
		return "", ErrInvalidOperationType
	}
}

// Operation is the variant part of a Statement. The set of variants is closed:
// Deposit, Withdraw, TransferIn and TransferOut.
type Operation interface {
	Type() OperationType
	sealed()
}

// Deposit adds money to the owner's balance.
type Deposit struct{}

// Withdraw removes money from the owner's balance.
type Withdraw struct{}

// TransferIn is the credit leg of a transfer, recorded on the recipient.
type TransferIn struct {
	SenderID   string
	TransferID string
}

// TransferOut is the debit leg of a transfer, recorded on the payer.
// It is stored as a withdraw without a sender.
type TransferOut struct {
	TransferID string
}

func (Deposit) Type() OperationType     { return OperationDeposit }
func (Withdraw) Type() OperationType    { return OperationWithdraw }
func (TransferIn) Type() OperationType  { return OperationTransfer }
func (TransferOut) Type() OperationType { return OperationWithdraw }

func (Deposit) sealed()     {}
func (Withdraw) sealed()    {}
func (TransferIn) sealed()  {}
func (TransferOut) sealed() {}

// Statement is an immutable ledger record.
type Statement struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Operation   Operation
	ID          string
	UserID      string
	Description string
	Amount      decimal.Decimal
}

// Type returns the persisted operation type.
func (s *Statement) Type() OperationType {
	return s.Operation.Type()
}

// SenderID returns the payer of a transfer credit, or "" for every other variant.
func (s *Statement) SenderID() string {
	if in, ok := s.Operation.(TransferIn); ok {
		return in.SenderID
	}
	return ""
}

// TransferID returns the id shared by both legs of a transfer, or "".
func (s *Statement) TransferID() string {
	switch op := s.Operation.(type) {
	case TransferIn:
		return op.TransferID
	case TransferOut:
		return op.TransferID
	default:
		return ""
	}
}

// SignedAmount returns the statement's contribution to its owner's balance.
func (s *Statement) SignedAmount() decimal.Decimal {
	switch s.Operation.(type) {
	case Deposit, TransferIn:
		return s.Amount
	case Withdraw, TransferOut:
		return s.Amount.Neg()
	default:
		panic("domain: unknown statement operation")
	}
}

// Balance folds statements into a signed total. Negative results are kept as is.
func Balance(statements []*Statement) decimal.Decimal {
	balance := decimal.Zero
	for _, st := range statements {
		balance = balance.Add(st.SignedAmount())
	}
	return balance
}

// OperationFromRecord rebuilds the variant from its stored columns.
func OperationFromRecord(opType OperationType, senderID, transferID *string) (Operation, error) {
	switch opType {
	case OperationDeposit:
		return Deposit{}, nil
	case OperationWithdraw:
		if transferID != nil && *transferID != "" {
			return TransferOut{TransferID: *transferID}, nil
		}
		return Withdraw{}, nil
	case OperationTransfer:
		in := TransferIn{}
		if senderID != nil {
			in.SenderID = *senderID
		}
		if transferID != nil {
			in.TransferID = *transferID
		}
		return in, nil
	default:
		return nil, ErrInvalidOperationType
	}
}
