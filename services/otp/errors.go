package otp

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound      = errors.New("no account is registered with this email")
	ErrAlreadyVerified   = errors.New("email is already verified")
	ErrNoValidChallenge  = errors.New("no valid verification code found, please request a new one")
	ErrExpired           = errors.New("verification code has expired, please request a new one")
	ErrAttemptsExhausted = errors.New("too many failed attempts, please request a new code")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrIssueTooSoon      = errors.New("a verification code was sent recently")
)

// InvalidCodeError is returned on a mismatched code and carries the attempts left
// on the challenge after this failure.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("%s, %d attempts remaining", ErrInvalidCode, e.Remaining)
}

func (e *InvalidCodeError) Is(target error) bool { return target == ErrInvalidCode }

type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s, retry in %ds", ErrIssueTooSoon, int(e.RetryAfter.Seconds()+0.5))
}

func (e *CooldownError) Is(target error) bool { return target == ErrIssueTooSoon }
