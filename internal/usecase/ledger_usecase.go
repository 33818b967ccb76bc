package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iho/finledger/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when a transfer is missing a leg or its legs differ.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: unpaired transfer legs")
)

// InconsistencyError lists the transfers that failed the consistency check.
type InconsistencyError struct {
	TransferIDs []string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInconsistentLedger, strings.Join(e.TransferIDs, ", "))
}

func (e *InconsistencyError) Is(target error) bool {
	return target == ErrInconsistentLedger
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// WithMetrics enables the unbalanced transfers gauge.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

// CheckConsistency verifies that every transfer has exactly one credit and
// one debit of the same amount.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	unbalanced, err := uc.ledgerRepo.FindUnbalancedTransfers(ctx)
	if err != nil {
		return false, err
	}

	if uc.metrics != nil {
		uc.metrics.UnbalancedTransfers.Set(float64(len(unbalanced)))
	}

	if len(unbalanced) > 0 {
		return false, &InconsistencyError{TransferIDs: unbalanced}
	}

	return true, nil
}
