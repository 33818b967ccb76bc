package usecase

import "time"

// DefaultTransactionTimeout is the maximum duration of a ledger write transaction.
const DefaultTransactionTimeout = 10 * time.Second
