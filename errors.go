package paperdex

import "github.com/kailas-cloud/paperdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrNotFound          = domain.ErrNotFound
	ErrPaperNotFound     = domain.ErrPaperNotFound
	ErrAlreadyExists     = domain.ErrAlreadyExists
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrExternalService   = domain.ErrExternalService
	ErrBudgetExceeded    = domain.ErrBudgetExceeded
	ErrPersistence       = domain.ErrPersistence
)
