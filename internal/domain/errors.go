package domain

import "errors"

var (
	// ErrValidation signals rejected caller input (empty query, out-of-range top_k, bad filter).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPaperNotFound signals a missing paper.
	ErrPaperNotFound = errors.New("paper not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDimensionMismatch signals a vector dimension mismatch.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrExternalService signals an embedding or generative provider failure.
	ErrExternalService = errors.New("external service error")
	// ErrBudgetExceeded signals an exhausted token budget.
	ErrBudgetExceeded = errors.New("token budget exceeded")
	// ErrPersistence signals an unreachable or inconsistent store.
	ErrPersistence = errors.New("persistence failure")
)
