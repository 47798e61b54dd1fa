package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidRole        = errors.New("invalid role")

	// ErrNotYourOrder means the actor is not a party to the order.
	ErrNotYourOrder = errors.New("not your order")
	// ErrInvalidState means the requested transition is illegal from the
	// order's current status.
	ErrInvalidState = errors.New("invalid order state for transition")
	// ErrAlreadyResolved means the order reached a terminal state through
	// another path before this request was applied.
	ErrAlreadyResolved = errors.New("order already resolved")
	// ErrStaleOrder means the conditional write lost to a concurrent
	// transition; the caller must re-read and may safely retry.
	ErrStaleOrder = errors.New("stale order snapshot")
	// ErrEvidenceRequired means a contestation was raised without evidence.
	ErrEvidenceRequired = errors.New("contestation evidence required")
	// ErrDeadlineNotReached guards timeout transitions invoked early.
	ErrDeadlineNotReached = errors.New("timeout deadline not reached")
)
