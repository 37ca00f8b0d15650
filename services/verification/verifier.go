package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vtcland/services/validation"
)

// Challenge is an outstanding one-time code bound to one phone number.
type Challenge struct {
	ID       string
	Phone    string
	IssuedAt time.Time
}

// Provider issues and checks one-time codes.
//
// CheckCode returns ErrCodeMismatch while the challenge may still be retried
// and ErrChallengeExpired once it can no longer succeed.
type Provider interface {
	IssueCode(ctx context.Context, phone string, guard *GuardHandle) (Challenge, error)
	CheckCode(ctx context.Context, challengeID, code string) error
	Revoke(ctx context.Context, challengeID string) error
}

type State string

const (
	StateIdle     State = "idle"
	StateIssued   State = "issued"
	StateVerified State = "verified"
	StateFailed   State = "failed"
)

// Verifier runs the phone-ownership protocol for one session:
// Idle -> Issued -> {Verified, Failed}. It owns the session's guard handle.
type Verifier struct {
	mu        sync.Mutex
	provider  Provider
	guard     *GuardHandle
	challenge *Challenge
	state     State
	verified  string
}

func NewVerifier(provider Provider) *Verifier {
	return &Verifier{provider: provider, state: StateIdle}
}

// Arm attaches a guard handle. A nil handle disarms.
func (v *Verifier) Arm(h *GuardHandle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.guard = h
}

func (v *Verifier) Armed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.guard != nil
}

func (v *Verifier) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Current returns the outstanding challenge, if any.
func (v *Verifier) Current() (Challenge, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.challenge == nil {
		return Challenge{}, false
	}
	return *v.challenge, true
}

// VerifiedPhone returns the phone proven by the last successful Confirm.
func (v *Verifier) VerifiedPhone() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.verified
}

// Start issues a code to phone. A challenge still outstanding for the same
// phone is returned as is, without sending a new SMS.
func (v *Verifier) Start(ctx context.Context, phone string) (Challenge, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.guard == nil {
		return Challenge{}, ErrGuardNotReady
	}
	if !validation.IsValidPhone(phone) {
		return Challenge{}, ErrInvalidPhone
	}
	if v.state == StateIssued && v.challenge != nil && v.challenge.Phone == phone {
		return *v.challenge, nil
	}
	v.discardLocked(ctx)

	ch, err := v.provider.IssueCode(ctx, phone, v.guard)
	if err != nil {
		return Challenge{}, classify(err)
	}
	v.challenge = &ch
	v.state = StateIssued
	v.verified = ""
	return ch, nil
}

// Confirm checks code against the outstanding challenge. A mismatch keeps the
// challenge outstanding; expiry moves the verifier to Failed.
func (v *Verifier) Confirm(ctx context.Context, code string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateIssued || v.challenge == nil {
		return ErrNoChallenge
	}
	err := v.provider.CheckCode(ctx, v.challenge.ID, code)
	switch {
	case err == nil:
		v.verified = v.challenge.Phone
		v.challenge = nil
		v.state = StateVerified
		return nil
	case errors.Is(err, ErrCodeMismatch):
		return ErrCodeMismatch
	case errors.Is(err, ErrChallengeExpired):
		v.challenge = nil
		v.state = StateFailed
		return ErrChallengeExpired
	}
	return classify(err)
}

// Discard revokes any outstanding challenge and forgets a past verification.
func (v *Verifier) Discard(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.discardLocked(ctx)
	v.state = StateIdle
	v.verified = ""
}

// Release discards the challenge and disarms the guard. Called on every
// session exit path.
func (v *Verifier) Release(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.discardLocked(ctx)
	v.state = StateIdle
	v.verified = ""
	v.guard = nil
}

func (v *Verifier) discardLocked(ctx context.Context) {
	if v.challenge == nil {
		return
	}
	// Best effort: an unrevoked challenge still expires on its own.
	_ = v.provider.Revoke(ctx, v.challenge.ID)
	v.challenge = nil
}

func classify(err error) error {
	for _, known := range []error{ErrInvalidPhone, ErrRateLimited, ErrProviderError, ErrGuardNotReady} {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrProviderError, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderError, err)
}
