package service

import "errors"

var (
	// ErrAuthRequired means no authenticated user was found on the request.
	ErrAuthRequired = errors.New("authentication required")

	// ErrPermissionDenied means the user is not allowed to see or change the
	// resource.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPayerRequired means an expense was submitted for persistence without
	// any active payer. Previews may omit payers, saved expenses may not.
	ErrPayerRequired = errors.New("at least one payer is required")

	// ErrInvalidInput covers request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
