package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vtcland/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "reservations"

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo returns a repository on the reservations collection
// of db and makes sure its indexes exist.
func NewMongoReservationRepo(db *mongo.Database) (*MongoReservationRepo, error) {
	repo := &MongoReservationRepo{coll: db.Collection(collectionName)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

func (r *MongoReservationRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reservationNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}

func (r *MongoReservationRepo) Insert(ctx context.Context, res *models.Reservation) (string, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, res)
	if err == nil {
		return res.ID, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		existing, getErr := r.GetByNumber(ctx, res.ReservationNumber)
		if getErr != nil {
			return "", fmt.Errorf("duplicate reservation %s: %w", res.ReservationNumber, getErr)
		}
		if !sameBooking(existing, res) {
			return "", fmt.Errorf("%w: %s", ErrNumberTaken, res.ReservationNumber)
		}
		return existing.ID, nil
	}
	return "", fmt.Errorf("failed to insert reservation %s: %w", res.ReservationNumber, err)
}

// sameBooking reports whether stored and incoming describe the same customer
// booking, which is the case when a submission is retried after a lost reply.
func sameBooking(stored, incoming *models.Reservation) bool {
	return stored.Phone == incoming.Phone &&
		stored.Name == incoming.Name &&
		stored.Date == incoming.Date &&
		stored.Time == incoming.Time &&
		stored.PickupLocation == incoming.PickupLocation &&
		stored.ServiceTier == incoming.ServiceTier
}

func (r *MongoReservationRepo) GetByNumber(ctx context.Context, number string) (*models.Reservation, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var res models.Reservation
	err := r.coll.FindOne(ctx, bson.M{"reservationNumber": number}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservation %s: %w", number, err)
	}
	return &res, nil
}

func slotFilter(date, t string) bson.M {
	return bson.M{
		"date":   date,
		"time":   t,
		"status": bson.M{"$ne": models.StatusCancelled},
	}
}

func (r *MongoReservationRepo) CountAtSlot(ctx context.Context, date, t string) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, slotFilter(date, t))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations at %s %s: %w", date, t, err)
	}
	return n, nil
}

func (r *MongoReservationRepo) FindByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations on %s: %w", date, err)
	}
	defer cur.Close(ctx)

	var out []models.Reservation
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode reservations on %s: %w", date, err)
	}
	return out, nil
}
