package services

import (
	"errors"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/repository"
)

// Common service errors. The engine's taxonomy is re-exported so handlers only
// depend on this package.
var (
	ErrNotFound            = engine.ErrNotFound
	ErrInvalidTransition   = engine.ErrInvalidTransition
	ErrInvalidPlanInput    = engine.ErrInvalidPlanInput
	ErrInvalidPaymentInput = engine.ErrInvalidPaymentInput
	ErrDuplicate           = repository.ErrDuplicate
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
)
