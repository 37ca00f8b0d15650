package fare

import (
	"context"
	"errors"
	"fmt"
	"math"

	"vtcland/models"
)

var (
	// ErrProviderUnavailable is returned when the routing collaborator fails.
	ErrProviderUnavailable = errors.New("fare: routing provider unavailable")
	ErrUnknownTier         = errors.New("fare: unknown service tier")
	ErrMissingHours        = errors.New("fare: hourly tier needs a number of hours")
)

// Route is a driving distance between two addresses.
type Route struct {
	Text string  // human readable, e.g. "12,3 km"
	Km   float64 // distance in kilometres
}

// RoutingService returns the driving distance between two addresses.
type RoutingService interface {
	Distance(ctx context.Context, origin, destination string) (Route, error)
}

// Trip is what a fare is computed for.
type Trip struct {
	Origin      string
	Destination string
	Tier        models.ServiceTier
	Hours       int
}

// Quote is a computed fare.
type Quote struct {
	Tier         models.ServiceTier
	DistanceText string
	Km           float64
	Price        float64
	Cached       bool
}

type cacheKey struct {
	origin, destination string
	tier                models.ServiceTier
}

// Estimator prices trips for one session. Direct-tier quotes are cached by
// (origin, destination, tier) until Reset. It is not safe for concurrent use;
// a session handles one reply at a time.
type Estimator struct {
	routing RoutingService
	script  *models.Script
	cache   map[cacheKey]Quote
}

func NewEstimator(routing RoutingService, script *models.Script) *Estimator {
	return &Estimator{
		routing: routing,
		script:  script,
		cache:   make(map[cacheKey]Quote),
	}
}

// Estimate prices a trip. Hourly tiers are priced as hours * hourly rate
// without calling the routing service.
func (e *Estimator) Estimate(ctx context.Context, trip Trip) (Quote, error) {
	tier, ok := e.script.Tier(trip.Tier)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownTier, trip.Tier)
	}

	if tier.Kind == models.TierKindHourly {
		if trip.Hours <= 0 {
			return Quote{}, ErrMissingHours
		}
		return Quote{
			Tier:  tier.ID,
			Price: round2(float64(trip.Hours) * tier.HourlyRate),
		}, nil
	}

	key := cacheKey{origin: trip.Origin, destination: trip.Destination, tier: tier.ID}
	if q, ok := e.cache[key]; ok {
		q.Cached = true
		return q, nil
	}

	route, err := e.routing.Distance(ctx, trip.Origin, trip.Destination)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	q := Quote{
		Tier:         tier.ID,
		DistanceText: route.Text,
		Km:           route.Km,
		Price:        round2(route.Km * tier.RatePerKm),
	}
	e.cache[key] = q
	return q, nil
}

// Reset drops every cached quote.
func (e *Estimator) Reset() {
	e.cache = make(map[cacheKey]Quote)
}

// Len is the number of cached quotes.
func (e *Estimator) Len() int {
	return len(e.cache)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
