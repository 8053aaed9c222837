package engine

import "errors"

// Engine errors. Calculation functions never return these for zero or absent inputs;
// only malformed plan parameters and illegal status changes are caller errors.
var (
	ErrInvalidPlanInput    = errors.New("invalid plan input")
	ErrInvalidPaymentInput = errors.New("invalid payment input")
	ErrInvalidTransition   = errors.New("invalid installment status transition")
	ErrNotFound            = errors.New("record not found")
)
