package dialogue

import (
	"context"
	"errors"

	"vtcland/models"
	"vtcland/services/reservation"
	"vtcland/services/validation"
	"vtcland/services/verification"
)

func applyCode(ctx context.Context, e *Engine, s *Session, code string) (models.Step, error) {
	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	err := s.verifier.Confirm(callCtx, code)
	if errors.Is(err, verification.ErrChallengeExpired) || errors.Is(err, verification.ErrNoChallenge) {
		// One new code to the same phone, the user stays on this step.
		if _, err := s.verifier.Start(callCtx, s.reservation.Phone); err != nil {
			return "", err
		}
		e.info(s, "code_reissued", nil)
		return models.StepCode, nil
	}
	if err != nil {
		return "", err
	}

	r := s.reservation
	r.PhoneVerified = true
	if r.ReservationNumber == "" {
		r.ReservationNumber = e.newNumber(e.script.ReservationPrefix, e.now())
	}
	e.info(s, "verified", nil)
	e.info(s, "summary", reservation.SummaryParams(e.script, r))
	return models.StepConfirm, nil
}

func applyConfirm(ctx context.Context, e *Engine, s *Session, answer string) (models.Step, error) {
	r := s.reservation
	if answer == validation.No {
		r.Status = models.StatusCancelled
		s.verifier.Discard(ctx)
		return models.StepRestart, nil
	}

	// A reservation already handed over is never submitted again.
	if r.Status == models.StatusPendingReview {
		e.info(s, "already_submitted", map[string]string{"number": r.ReservationNumber})
		return models.StepCompleted, nil
	}

	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	_, err := e.submitter.Submit(callCtx, r)
	if errors.Is(err, reservation.ErrAlreadySubmitted) {
		return models.StepCompleted, nil
	}
	if err != nil {
		return "", err
	}
	return models.StepCompleted, nil
}

func applyRestart(ctx context.Context, e *Engine, s *Session, answer string) (models.Step, error) {
	if answer == validation.No {
		s.verifier.Release(ctx)
		return models.StepEnded, nil
	}
	e.reset(ctx, s)
	return models.StepWelcome, nil
}
