package reservationRepo

import (
	"context"
	"errors"

	"vtcland/models"
)

var (
	ErrNotFound = errors.New("reservation not found")
	// ErrNumberTaken means the reservation number belongs to another booking.
	ErrNumberTaken = errors.New("reservation number already taken")
)

// ReservationRepository persists submitted reservations.
type ReservationRepository interface {
	// Insert stores r and returns its id. Re-inserting the same booking under
	// its number returns the stored id; a different booking under a taken
	// number fails with ErrNumberTaken.
	Insert(ctx context.Context, r *models.Reservation) (string, error)
	GetByNumber(ctx context.Context, number string) (*models.Reservation, error)
	// CountAtSlot counts non-cancelled reservations booked at date and time.
	CountAtSlot(ctx context.Context, date, time string) (int64, error)
	FindByDate(ctx context.Context, date string) ([]models.Reservation, error)
}
