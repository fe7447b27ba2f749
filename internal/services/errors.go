package services

import (
	"errors"
	"fmt"
	"time"

	"fleet-backend/internal/timeutil"
)

// Service errors. Handlers map them to status codes; wrap with %w to add detail.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended, please contact administrator")
	ErrTooManyAttempts    = errors.New("too many failed attempts, please try again later")
	ErrForbidden          = errors.New("not allowed for this account")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNothingToSettle    = errors.New("no pending amount to settle")
	ErrAlreadySettled     = errors.New("already settled")
	ErrNoActiveTrip       = errors.New("no active trip")
	ErrFeatureDisabled    = errors.New("feature disabled")

	ErrTOTPRequired    = errors.New("2FA code required")
	ErrNoTOTPSecret    = errors.New("2FA setup not initiated")
	ErrInvalidTOTPCode = errors.New("invalid verification code")
	ErrTOTPNotEnabled  = errors.New("2FA is not enabled")
	ErrInvalidPassword = errors.New("invalid password")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// clockNow falls back to the wall clock in BST when no clock is injected
func clockNow(c timeutil.Clock) time.Time {
	if c == nil {
		return timeutil.Now()
	}
	return c()
}
