package errors

import (
	stdErrors "errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"invalid amount", ErrInvalidAmount},
		{"invalid role", ErrInvalidRole},
		{"not your order", ErrNotYourOrder},
		{"invalid state", ErrInvalidState},
		{"already resolved", ErrAlreadyResolved},
		{"stale order", ErrStaleOrder},
		{"evidence required", ErrEvidenceRequired},
		{"deadline not reached", ErrDeadlineNotReached},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}
