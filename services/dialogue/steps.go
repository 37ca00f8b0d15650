package dialogue

import (
	"context"
	"strconv"

	"vtcland/models"
	"vtcland/services/fare"
	"vtcland/services/reservation"
	"vtcland/services/validation"
)

// action applies a validated value to the session and returns the next step.
// Returning the current step keeps the dialogue where it is without a new
// prompt. A non-nil error is rendered and the step does not advance.
type action func(ctx context.Context, e *Engine, s *Session, value string) (models.Step, error)

type stepDef struct {
	field validation.Field
	apply action
	clear func(s *Session) // resets the fields this step owns
}

// order is the canonical step order. Stepping back to a step clears the
// fields of that step and of every step after it.
var order = []models.Step{
	models.StepWelcome,
	models.StepName,
	models.StepTier,
	models.StepPickup,
	models.StepHours,
	models.StepDestination,
	models.StepPassengers,
	models.StepLuggage,
	models.StepBags,
	models.StepDate,
	models.StepTime,
	models.StepPayment,
	models.StepPhone,
	models.StepCode,
	models.StepConfirm,
}

var table map[models.Step]stepDef

func init() {
	table = map[models.Step]stepDef{
		models.StepWelcome: {
			field: validation.FieldWelcome,
			apply: goTo(models.StepName),
			clear: func(*Session) {},
		},
		models.StepName: {
			field: validation.FieldText,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				s.reservation.Name = v
				return models.StepTier, nil
			},
			clear: func(s *Session) { s.reservation.Name = "" },
		},
		models.StepTier: {
			field: validation.FieldTier,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				s.reservation.ServiceTier = models.ServiceTier(v)
				return models.StepPickup, nil
			},
			clear: func(s *Session) { s.reservation.ServiceTier = "" },
		},
		models.StepPickup: {
			field: validation.FieldText,
			apply: applyPickup,
			clear: func(s *Session) {
				s.reservation.PickupLocation = ""
				s.fares.Reset()
			},
		},
		models.StepHours: {
			field: validation.FieldHours,
			apply: applyHours,
			clear: func(s *Session) {
				s.reservation.Hours = 0
				s.reservation.Price = nil
			},
		},
		models.StepDestination: {
			field: validation.FieldText,
			apply: func(ctx context.Context, e *Engine, s *Session, v string) (models.Step, error) {
				s.reservation.Destination = e.resolveAddress(ctx, v)
				return models.StepPassengers, nil
			},
			clear: func(s *Session) { s.reservation.Destination = "" },
		},
		models.StepPassengers: {
			field: validation.FieldPassengers,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				s.reservation.PassengerCount, _ = strconv.Atoi(v)
				return models.StepLuggage, nil
			},
			clear: func(s *Session) { s.reservation.PassengerCount = 0 },
		},
		models.StepLuggage: {
			field: validation.FieldYesNo,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				if v == validation.Yes {
					s.reservation.HasLuggage = true
					return models.StepBags, nil
				}
				s.reservation.HasLuggage = false
				s.reservation.BagCount = 0
				return models.StepDate, nil
			},
			clear: func(s *Session) { s.reservation.HasLuggage = false },
		},
		models.StepBags: {
			field: validation.FieldBags,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				n, _ := strconv.Atoi(v)
				s.reservation.BagCount = n
				s.reservation.HasLuggage = n > 0
				return models.StepDate, nil
			},
			clear: func(s *Session) { s.reservation.BagCount = 0 },
		},
		models.StepDate: {
			field: validation.FieldDate,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				s.reservation.Date = v
				return models.StepTime, nil
			},
			clear: func(s *Session) { s.reservation.Date = "" },
		},
		models.StepTime: {
			field: validation.FieldTime,
			apply: applyTime,
			clear: func(s *Session) {
				s.reservation.Time = ""
				// The hourly price belongs to the hours step.
				if s.reservation.ServiceTier != models.TierHourly {
					s.reservation.Price = nil
				}
			},
		},
		models.StepPayment: {
			field: validation.FieldPayment,
			apply: func(_ context.Context, _ *Engine, s *Session, v string) (models.Step, error) {
				s.reservation.PaymentMethod = models.PaymentMethod(v)
				return models.StepPhone, nil
			},
			clear: func(s *Session) { s.reservation.PaymentMethod = "" },
		},
		models.StepPhone: {
			field: validation.FieldPhone,
			apply: applyPhone,
			clear: func(s *Session) {
				s.reservation.Phone = ""
				s.reservation.PhoneVerified = false
				s.verifier.Discard(context.Background())
			},
		},
		models.StepCode: {
			field: validation.FieldCode,
			apply: applyCode,
			clear: func(s *Session) {
				s.reservation.PhoneVerified = false
				s.reservation.ReservationNumber = ""
			},
		},
		models.StepConfirm: {
			field: validation.FieldYesNo,
			apply: applyConfirm,
			clear: func(s *Session) { s.reservation.Status = models.StatusDraft },
		},
		models.StepRestart: {
			field: validation.FieldYesNo,
			apply: applyRestart,
			clear: func(*Session) {},
		},
	}
}

func goTo(next models.Step) action {
	return func(context.Context, *Engine, *Session, string) (models.Step, error) {
		return next, nil
	}
}

func applyPickup(ctx context.Context, e *Engine, s *Session, v string) (models.Step, error) {
	s.reservation.PickupLocation = e.resolveAddress(ctx, v)
	switch e.script.TierKindOf(s.reservation.ServiceTier) {
	case models.TierKindDirect:
		return models.StepDestination, nil
	case models.TierKindHourly:
		return models.StepHours, nil
	}
	return models.StepPassengers, nil
}

func applyHours(ctx context.Context, e *Engine, s *Session, v string) (models.Step, error) {
	hours, _ := strconv.Atoi(v)
	q, err := s.fares.Estimate(ctx, fare.Trip{Tier: s.reservation.ServiceTier, Hours: hours})
	if err != nil {
		return "", err
	}
	s.reservation.Hours = hours
	s.reservation.SetPrice(q.Price)
	e.info(s, "hourly_price", map[string]string{
		"hours":    v,
		"price":    reservation.FormatPrice(q.Price),
		"currency": e.script.Currency,
	})
	return models.StepPassengers, nil
}

// applyTime prices direct trips. The route is complete only once the time is
// known, so the fare cache is never read earlier.
func applyTime(ctx context.Context, e *Engine, s *Session, v string) (models.Step, error) {
	r := s.reservation
	if e.script.TierKindOf(r.ServiceTier) == models.TierKindDirect {
		callCtx, cancel := e.withTimeout(ctx)
		defer cancel()
		q, err := s.fares.Estimate(callCtx, fare.Trip{
			Origin:      r.PickupLocation,
			Destination: r.Destination,
			Tier:        r.ServiceTier,
		})
		if err != nil {
			return "", err
		}
		r.SetPrice(q.Price)
		e.info(s, "fare_estimate", map[string]string{
			"distance": q.DistanceText,
			"price":    reservation.FormatPrice(q.Price),
			"currency": e.script.Currency,
			"tier":     e.script.TierLabel(r.ServiceTier),
		})
	}
	r.Time = v
	return models.StepPayment, nil
}

func applyPhone(ctx context.Context, e *Engine, s *Session, phone string) (models.Step, error) {
	callCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	if _, err := s.verifier.Start(callCtx, phone); err != nil {
		return "", err
	}
	s.reservation.Phone = phone
	s.reservation.PhoneVerified = false
	return models.StepCode, nil
}
