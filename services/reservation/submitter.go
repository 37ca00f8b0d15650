package reservation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	reservationRepo "vtcland/database/repository/reservation"
	"vtcland/models"
	"vtcland/services/notification"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Store is the persistence collaborator. reservationRepo.MongoReservationRepo
// implements it.
type Store interface {
	Insert(ctx context.Context, r *models.Reservation) (string, error)
	CountAtSlot(ctx context.Context, date, time string) (int64, error)
}

// numberAttempts bounds how many fresh numbers are tried when the generated
// one is already taken by another booking.
const numberAttempts = 3

// Options configures the back-office fan-out and the slot check.
type Options struct {
	AdminPhone   string
	AdminEmail   string
	SlotCapacity int // 0 disables the slot check
	Location     *time.Location
}

// Submitter re-validates, persists and announces a confirmed reservation.
type Submitter struct {
	store     Store
	notifier  notification.Dispatcher
	script    *models.Script
	validate  *validator.Validate
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
	newNumber func(prefix string, now time.Time) string
}

func NewSubmitter(store Store, notifier notification.Dispatcher, script *models.Script, opts Options, logger *zap.Logger) *Submitter {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	s := &Submitter{
		store:     store,
		notifier:  notifier,
		script:    script,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		newNumber: NewNumber,
	}
	s.validate = newValidator(script, opts.Location, func() time.Time { return s.now() })
	return s
}

// WithClock replaces the submitter's clock. Used by tests.
func (s *Submitter) WithClock(now func() time.Time) *Submitter {
	s.now = now
	return s
}

// WithNumbers replaces the generator used when a reservation number collides.
func (s *Submitter) WithNumbers(newNumber func(prefix string, now time.Time) string) *Submitter {
	s.newNumber = newNumber
	return s
}

// Submit persists r. On success r becomes PendingReview with its id and
// submission time set; on failure r is left untouched. Notifications are
// best effort and never fail the submission. When the number of r turns out to
// belong to another booking, r is stored under a fresh number.
func (s *Submitter) Submit(ctx context.Context, r *models.Reservation) (string, error) {
	if r.Status == models.StatusPendingReview {
		return r.ID, ErrAlreadySubmitted
	}

	record := *r
	record.Status = models.StatusPendingReview
	submittedAt := s.now()
	record.SubmittedAt = &submittedAt

	if err := s.validate.Struct(record); err != nil {
		return "", rejectedFields(err)
	}

	if s.opts.SlotCapacity > 0 {
		n, err := s.store.CountAtSlot(ctx, record.Date, record.Time)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
		}
		if n >= int64(s.opts.SlotCapacity) {
			return "", ErrSlotFull
		}
	}

	id, err := s.insert(ctx, &record)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	r.ID = id
	r.ReservationNumber = record.ReservationNumber
	r.Status = models.StatusPendingReview
	r.SubmittedAt = &submittedAt
	s.logger.Info("Reservation submitted",
		zap.String("id", id),
		zap.String("reservationNumber", r.ReservationNumber),
		zap.String("tier", string(r.ServiceTier)))

	s.announce(ctx, r)
	return id, nil
}

// insert stores record, drawing a new reservation number while the current
// one is taken.
func (s *Submitter) insert(ctx context.Context, record *models.Reservation) (string, error) {
	for attempt := 1; ; attempt++ {
		id, err := s.store.Insert(ctx, record)
		if !errors.Is(err, reservationRepo.ErrNumberTaken) || attempt == numberAttempts {
			return id, err
		}
		taken := record.ReservationNumber
		record.ReservationNumber = s.newNumber(s.script.ReservationPrefix, s.now())
		s.logger.Warn("Reservation number taken, retrying with a new one",
			zap.String("taken", taken),
			zap.String("reservationNumber", record.ReservationNumber))
	}
}

// announce fans the new reservation out to the back-office and the customer.
func (s *Submitter) announce(ctx context.Context, r *models.Reservation) {
	params := SummaryParams(s.script, r)

	type target struct {
		channel, template, to string
	}
	targets := []target{{notification.ChannelPush, notification.TemplateAdminReservation, ""}}
	if s.opts.AdminPhone != "" {
		targets = append(targets, target{notification.ChannelSMS, notification.TemplateAdminReservation, s.opts.AdminPhone})
	}
	if s.opts.AdminEmail != "" {
		targets = append(targets, target{notification.ChannelEmail, notification.TemplateAdminReservation, s.opts.AdminEmail})
	}
	targets = append(targets, target{notification.ChannelSMS, notification.TemplateCustomerConfirmation, r.Phone})

	for _, t := range targets {
		p := make(map[string]string, len(params)+1)
		for k, v := range params {
			p[k] = v
		}
		if t.to != "" {
			p["to"] = t.to
		}
		if err := s.notifier.Notify(ctx, t.channel, t.template, p); err != nil {
			s.logger.Warn("Reservation notification failed",
				zap.String("reservationNumber", r.ReservationNumber),
				zap.String("channel", t.channel),
				zap.String("template", t.template),
				zap.Error(err))
		}
	}
}

// SummaryParams returns the display values of r used by the summary message
// and the notification templates.
func SummaryParams(script *models.Script, r *models.Reservation) map[string]string {
	destination := r.Destination
	if destination == "" {
		destination = script.Message("not_applicable", nil)
	}
	return map[string]string{
		"number":      r.ReservationNumber,
		"name":        r.Name,
		"phone":       r.Phone,
		"pickup":      r.PickupLocation,
		"destination": destination,
		"tier":        script.TierLabel(r.ServiceTier),
		"hours":       strconv.Itoa(r.Hours),
		"passengers":  strconv.Itoa(r.PassengerCount),
		"bags":        strconv.Itoa(r.BagCount),
		"date":        r.Date,
		"time":        r.Time,
		"price":       FormatPrice(r.PriceValue()),
		"currency":    script.Currency,
		"payment":     script.PaymentLabel(r.PaymentMethod),
	}
}

func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// NewNumber returns a reservation number PREFIX-<timestamp6>-<random3>, the
// timestamp being the last six digits of the Unix time in milliseconds.
func NewNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%06d-%03d", prefix, now.UnixMilli()%1_000_000, rand.IntN(1000))
}
