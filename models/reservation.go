package models

import "time"

// ServiceTier identifies the service category of a booking.
type ServiceTier string

const (
	TierDirectComfort ServiceTier = "DirectComfort"
	TierDirectPremium ServiceTier = "DirectPremium"
	TierHourly        ServiceTier = "Hourly"
)

// TierKind tells the engine which branch a tier follows.
type TierKind string

const (
	TierKindDirect TierKind = "direct" // point-to-point, needs a destination
	TierKindHourly TierKind = "hourly" // chauffeur disposal, needs a number of hours
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
)

type ReservationStatus string

const (
	StatusDraft         ReservationStatus = "draft"
	StatusPendingReview ReservationStatus = "pending_review"
	StatusCancelled     ReservationStatus = "cancelled"
)

// Reservation is the record collected by a chat session and handed to the back-office.
type Reservation struct {
	ID                string            `bson:"id" json:"id,omitempty"`                                              // Persisted identifier (UUID)
	ReservationNumber string            `bson:"reservationNumber" json:"reservationNumber,omitempty" validate:"required"` // PREFIX-<timestamp6>-<random3>
	Name              string            `bson:"name" json:"name" validate:"required"`
	PickupLocation    string            `bson:"pickupLocation" json:"pickupLocation" validate:"required"`
	Destination       string            `bson:"destination,omitempty" json:"destination,omitempty"` // Empty for hourly tiers
	ServiceTier       ServiceTier       `bson:"serviceTier" json:"serviceTier" validate:"required"`
	PassengerCount    int               `bson:"passengerCount" json:"passengerCount" validate:"min=1,max=8"`
	HasLuggage        bool              `bson:"hasLuggage" json:"hasLuggage"`
	BagCount          int               `bson:"bagCount" json:"bagCount" validate:"min=0,max=10"`
	Hours             int               `bson:"hours,omitempty" json:"hours,omitempty" validate:"omitempty,min=1,max=48"` // Hourly tiers only
	Date              string            `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time              string            `bson:"time" json:"time" validate:"required,datetime=15:04"`
	PaymentMethod     PaymentMethod     `bson:"paymentMethod" json:"paymentMethod" validate:"required"` // One of the script payments
	Phone             string            `bson:"phone" json:"phone" validate:"required,e164"`
	PhoneVerified     bool              `bson:"phoneVerified" json:"phoneVerified"`
	Price             *float64          `bson:"price" json:"price,omitempty" validate:"required,gte=0"` // Set by the fare estimator or the hourly formula
	Status            ReservationStatus `bson:"status" json:"status"`
	CreatedAt         time.Time         `bson:"createdAt" json:"createdAt"`
	SubmittedAt       *time.Time        `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
}

// NewDraft returns an empty reservation owned by a fresh session.
func NewDraft(now time.Time) *Reservation {
	return &Reservation{Status: StatusDraft, CreatedAt: now}
}

// SetPrice records a computed fare.
func (r *Reservation) SetPrice(p float64) {
	r.Price = &p
}

// PriceValue returns the price or 0 when none has been computed.
func (r *Reservation) PriceValue() float64 {
	if r.Price == nil {
		return 0
	}
	return *r.Price
}

// BagCountConsistent reports whether the bag count agrees with the luggage answer.
func (r *Reservation) BagCountConsistent() bool {
	if !r.HasLuggage {
		return r.BagCount == 0
	}
	return r.BagCount >= 1
}
