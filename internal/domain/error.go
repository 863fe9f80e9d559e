package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrNoActiveSubscription = errors.New("no active subscription in this community")

	// Admission control
	ErrNoCapacity          = errors.New("session has no remaining capacity")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyReserved     = errors.New("client already holds a reservation for this session")
	ErrTimeConflict        = errors.New("overlapping reservation in the same community")
	ErrConcurrencyConflict = errors.New("concurrent update lost, retry the operation")
	ErrNotOwner            = errors.New("reservation belongs to another client")

	// Subscription state machine
	ErrNotActive    = errors.New("subscription is not active")
	ErrInvalidState = errors.New("illegal subscription state transition")

	// Infrastructure-ish errors surfaced by repositories
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
