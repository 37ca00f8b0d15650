package verification

import "errors"

var (
	ErrGuardNotReady    = errors.New("verification: human-verification guard is not armed")
	ErrGuardRejected    = errors.New("verification: human-verification token rejected")
	ErrInvalidPhone     = errors.New("verification: invalid phone number")
	ErrRateLimited      = errors.New("verification: too many codes requested for this phone")
	ErrProviderError    = errors.New("verification: provider error")
	ErrCodeMismatch     = errors.New("verification: code does not match")
	ErrChallengeExpired = errors.New("verification: challenge expired")
	ErrNoChallenge      = errors.New("verification: no outstanding challenge")
)
