package domain

import (
	apperrors "github.com/allisson/order-guard/internal/errors"
)

// Domain-specific errors for order gatekeeping.
var (
	// ErrMissingOrderID indicates the webhook payload carried no order id.
	ErrMissingOrderID = apperrors.Wrap(apperrors.ErrInvalidInput, "missing order id in payload")
)
