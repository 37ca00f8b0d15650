package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vtcland/models"
	"vtcland/services/fare"
	"vtcland/services/reservation"
	"vtcland/services/transcript"
	"vtcland/services/validation"
	"vtcland/services/verification"

	"go.uber.org/zap"
)

// AddressResolver completes partial address text. maps.Client implements it.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, partial string) (string, error)
}

// Submitter hands a confirmed reservation over. reservation.Submitter
// implements it.
type Submitter interface {
	Submit(ctx context.Context, r *models.Reservation) (string, error)
}

// Deps are the collaborators of the engine. Addresses may be nil.
type Deps struct {
	Script    *models.Script
	Location  *time.Location
	Routing   fare.RoutingService
	Addresses AddressResolver
	Provider  verification.Provider
	Guard     verification.Guard
	Submitter Submitter
	Logger    *zap.Logger
	Timeout   time.Duration // bound on every external call
	Now       func() time.Time
	NewNumber func(prefix string, now time.Time) string
}

// Engine drives reservation dialogues. It holds no per-session state and is
// safe for concurrent use across sessions.
type Engine struct {
	script    *models.Script
	validator *validation.Validator
	routing   fare.RoutingService
	addresses AddressResolver
	provider  verification.Provider
	guard     verification.Guard
	submitter Submitter
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
	newNumber func(prefix string, now time.Time) string
}

func NewEngine(d Deps) *Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewNumber == nil {
		d.NewNumber = reservation.NewNumber
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Timeout <= 0 {
		d.Timeout = 10 * time.Second
	}
	return &Engine{
		script:    d.Script,
		validator: validation.New(d.Script, d.Location, d.Now),
		routing:   d.Routing,
		addresses: d.Addresses,
		provider:  d.Provider,
		guard:     d.Guard,
		submitter: d.Submitter,
		logger:    d.Logger,
		timeout:   d.Timeout,
		now:       d.Now,
		newNumber: d.NewNumber,
	}
}

// Start opens a session on the welcome step.
func (e *Engine) Start(id string) *Session {
	now := e.now()
	s := &Session{
		ID:          id,
		step:        models.StepWelcome,
		reservation: models.NewDraft(now),
		transcript:  transcript.New(e.now),
		fares:       fare.NewEstimator(e.routing, e.script),
		verifier:    verification.NewVerifier(e.provider),
		lastActive:  now,
	}
	e.prompt(s)
	return s
}

// ArmGuard arms the human-verification guard of the session.
func (e *Engine) ArmGuard(ctx context.Context, s *Session, token string) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	h, err := e.guard.Arm(callCtx, token)
	if err != nil {
		return err
	}
	s.verifier.Arm(h)
	s.lastActive = e.now()
	return nil
}

// Reply processes one user message to completion.
func (e *Engine) Reply(ctx context.Context, s *Session, text string) (turn *Turn, err error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.lastActive = e.now()
	mark := s.transcript.Len()

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("Dialogue panic recovered",
				zap.String("session", s.ID),
				zap.String("step", string(s.step)),
				zap.Any("panic", rec))
			e.say(s, models.KindError, "generic_error", nil)
			turn, err = e.turn(s, mark), nil
		}
	}()

	if s.step.Terminal() {
		if s.step == models.StepCompleted {
			e.say(s, models.KindInfo, "already_submitted", map[string]string{"number": s.reservation.ReservationNumber})
		} else {
			e.say(s, models.KindInfo, "session_closed", nil)
		}
		return e.turn(s, mark), nil
	}

	raw := strings.TrimSpace(text)
	if raw == "" {
		e.say(s, models.KindError, "required", nil)
		return e.turn(s, mark), nil
	}
	s.transcript.Append(models.SenderUser, s.step, models.KindReply, raw)

	def, ok := table[s.step]
	if !ok {
		panic(fmt.Sprintf("no definition for step %q", s.step))
	}
	value, verr := e.validator.Validate(def.field, raw)
	if verr != nil {
		e.fail(s, verr)
		return e.turn(s, mark), nil
	}

	next, aerr := def.apply(ctx, e, s, value)
	if aerr != nil {
		e.fail(s, aerr)
		return e.turn(s, mark), nil
	}
	e.enter(s, next)

	if s.transcript.Len() < mark {
		mark = 0 // restarted
	}
	return e.turn(s, mark), nil
}

// Back rewinds to the previous step, clearing what that step and every later
// step collected.
func (e *Engine) Back(ctx context.Context, s *Session) (*Turn, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.canGoBack() {
		return nil, ErrCannotGoBack
	}
	s.lastActive = e.now()

	target := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	e.clearFrom(s, target)
	s.step = target

	if !s.transcript.RewindTo(target) {
		e.prompt(s)
	}
	return e.turn(s, s.transcript.Len()-1), nil
}

// Close abandons the session: the guard is released and any outstanding
// challenge discarded. Closing twice is a no-op.
func (e *Engine) Close(ctx context.Context, s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.closeLocked(ctx, s)
}

// CloseIfIdle closes s when it is not processing a reply and has been
// inactive since before cutoff. It reports whether s was closed.
func (e *Engine) CloseIfIdle(ctx context.Context, s *Session, cutoff time.Time) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()
	if s.closed || !s.lastActive.Before(cutoff) {
		return false
	}
	e.closeLocked(ctx, s)
	return true
}

func (e *Engine) closeLocked(ctx context.Context, s *Session) {
	if s.closed {
		return
	}
	s.closed = true
	s.verifier.Release(ctx)
	e.logger.Debug("Dialogue session closed", zap.String("session", s.ID), zap.String("step", string(s.step)))
}

// Snapshot returns a copy of the session state.
func (e *Engine) Snapshot(s *Session) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:           s.ID,
		Step:         s.step,
		Messages:     s.transcript.Messages(),
		Options:      e.options(s.step),
		Reservation:  *s.reservation,
		Verification: s.verifier.State(),
		GuardArmed:   s.verifier.Armed(),
		CanGoBack:    s.canGoBack(),
		Redirect:     e.redirect(s),
		Closed:       s.closed,
	}
}

func (e *Engine) enter(s *Session, next models.Step) {
	if next == s.step {
		return
	}
	s.history = append(s.history, s.step)
	s.step = next
	e.prompt(s)
}

func (e *Engine) prompt(s *Session) {
	text := e.script.PromptWith(s.step, map[string]string{"number": s.reservation.ReservationNumber})
	s.transcript.Append(models.SenderBot, s.step, models.KindPrompt, text)
}

func (e *Engine) info(s *Session, key string, params map[string]string) {
	e.say(s, models.KindInfo, key, params)
}

func (e *Engine) say(s *Session, kind models.MessageKind, key string, params map[string]string) {
	s.transcript.Append(models.SenderBot, s.step, kind, e.script.Message(key, params))
}

// fail renders err as one bot message; the step does not change.
func (e *Engine) fail(s *Session, err error) {
	key, params := e.classify(s, err)
	e.say(s, models.KindError, key, params)
}

func (e *Engine) classify(s *Session, err error) (string, map[string]string) {
	var verr *validation.ValidationError
	var rejected *reservation.RejectedError
	switch {
	case errors.As(err, &verr):
		return verr.Code, verr.Params
	case errors.Is(err, context.DeadlineExceeded):
		e.logger.Warn("Collaborator timed out", zap.String("session", s.ID), zap.String("step", string(s.step)), zap.Error(err))
		return "provider_timeout", nil
	case errors.Is(err, fare.ErrProviderUnavailable):
		e.logger.Warn("Fare estimate failed", zap.String("session", s.ID), zap.Error(err))
		return "fare_unavailable", nil
	case errors.Is(err, verification.ErrGuardNotReady), errors.Is(err, verification.ErrGuardRejected):
		return "guard_not_ready", nil
	case errors.Is(err, verification.ErrInvalidPhone):
		return "invalid_phone", nil
	case errors.Is(err, verification.ErrRateLimited):
		return "sms_rate_limited", nil
	case errors.Is(err, verification.ErrCodeMismatch):
		return "code_mismatch", nil
	case errors.Is(err, verification.ErrProviderError):
		e.logger.Warn("Verification provider failed", zap.String("session", s.ID), zap.Error(err))
		return "sms_failed", nil
	case errors.As(err, &rejected):
		e.logger.Warn("Reservation rejected", zap.String("session", s.ID), zap.Strings("fields", rejected.Fields))
		return "submit_rejected", map[string]string{"fields": strings.Join(rejected.Fields, ", ")}
	case errors.Is(err, reservation.ErrSlotFull):
		return "slot_full", nil
	case errors.Is(err, reservation.ErrPersistenceFailed):
		e.logger.Error("Reservation persistence failed", zap.String("session", s.ID), zap.Error(err))
		return "submit_failed", nil
	}
	e.logger.Error("Unexpected dialogue error", zap.String("session", s.ID), zap.String("step", string(s.step)), zap.Error(err))
	return "generic_error", nil
}

// clearFrom resets the fields owned by target and every later step.
func (e *Engine) clearFrom(s *Session, target models.Step) {
	from := -1
	for i, st := range order {
		if st == target {
			from = i
			break
		}
	}
	if from < 0 {
		return
	}
	for _, st := range order[from:] {
		table[st].clear(s)
	}
}

// reset starts the dialogue over in the same session. The guard stays armed.
func (e *Engine) reset(ctx context.Context, s *Session) {
	s.verifier.Discard(ctx)
	s.fares.Reset()
	s.reservation = models.NewDraft(e.now())
	s.transcript.Reset()
	s.history = nil
	s.step = models.StepWelcome
	e.prompt(s)
}

func (e *Engine) resolveAddress(ctx context.Context, raw string) string {
	if e.addresses == nil {
		return raw
	}
	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	resolved, err := e.addresses.ResolveAddress(callCtx, raw)
	if err != nil || strings.TrimSpace(resolved) == "" {
		e.logger.Debug("Address resolution fell back to raw text", zap.String("input", raw), zap.Error(err))
		return raw
	}
	return resolved
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) turn(s *Session, mark int) *Turn {
	return &Turn{
		Step:     s.step,
		Messages: s.transcript.Since(mark),
		Options:  e.options(s.step),
		Redirect: e.redirect(s),
	}
}

func (e *Engine) redirect(s *Session) *Redirect {
	if s.step != models.StepCompleted || e.script.RedirectURL == "" {
		return nil
	}
	return &Redirect{URL: e.script.RedirectURL, Delay: e.script.RedirectDelay}
}
