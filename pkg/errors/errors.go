// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is not active")

	// Partner errors
	ErrPartnerNotFound      = errors.New("marketing partner not found")
	ErrPartnerAlreadyExists = errors.New("marketing partner already exists")
	ErrPartnerNotActive     = errors.New("marketing partner is not active")

	// Wallet / payment errors
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInsufficientEarnings = errors.New("insufficient available earnings")
	ErrPaymentNotFound      = errors.New("payment request not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal request not found")

	// Review errors
	ErrRequestAlreadyDecided = errors.New("request has already been decided")
	ErrInvalidDecision       = errors.New("invalid decision")

	// Subscription errors
	ErrServiceNotFound    = errors.New("service not found")
	ErrAlreadySubscribed  = errors.New("already subscribed to service")
	ErrSubscriptionFailed = errors.New("subscription failed")

	// 2FA errors
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication not enabled")
	ErrInvalidTwoFactor    = errors.New("invalid two-factor code")

	// Access errors
	ErrAccessDenied = errors.New("access denied")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
