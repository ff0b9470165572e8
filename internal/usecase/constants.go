package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending marks a key whose request has not finished yet.
	IdempotencyPending = "processing"

	// DefaultEventListLimit caps ListEvents when no limit is given.
	DefaultEventListLimit = 100

	// EventSourceTransaction prefixes the source of events recorded while posting.
	EventSourceTransaction = "transaction"

	// EventSourceDirectory is the source of events recorded by SetCurrency.
	EventSourceDirectory = "directory"
)
