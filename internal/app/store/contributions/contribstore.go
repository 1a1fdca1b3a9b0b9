// internal/app/store/contributions/contribstore.go

// Package contribstore is the contribution ledger: one row per
// (username, month), collection "contribution" (singular, legacy name).
package contribstore

import (
	"context"
	"errors"
	"time"

	"github.com/anisham/contribhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("contribution not found")
	ErrExists   = errors.New("contribution already exists for this member and month")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contribution")}
}

// CreateInitial inserts the pending row written when a member is created.
// The amount is the group's base amount as of creation time, NOT the
// fine-inclusive amount. Displays recompute fines live, and changing this
// stored value would silently alter historical rows. Known inconsistency,
// kept on purpose.
func (s *Store) CreateInitial(ctx context.Context, username, month string, baseAmount int64) (models.Contribution, error) {
	c := models.Contribution{
		ID:       primitive.NewObjectID(),
		Username: username,
		Month:    month,
		Amount:   baseAmount,
		Status:   models.ContributionPending,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Contribution{}, ErrExists
		}
		return models.Contribution{}, err
	}
	return c, nil
}

// ReconcileAcceptance folds an accepted payment request into the ledger.
//
// Upsert keyed on (username, month): when no row exists one is created with
// status paid and the request's amount; when a row exists it flips to paid
// with paidDate and paymentID set, leaving the stored amount untouched.
// Running it again with the same request converges to the same state, so a
// crashed accept flow can simply be retried.
func (s *Store) ReconcileAcceptance(ctx context.Context, req models.PaymentRequest, now time.Time) error {
	paidDate := now.UTC().Format(time.RFC3339)
	filter := bson.M{"username": req.Username, "month": req.Month}
	update := bson.M{
		"$set": bson.M{
			"status":    models.ContributionPaid,
			"paidDate":  paidDate,
			"paymentID": req.PaymentID,
		},
		"$setOnInsert": bson.M{
			"_id":      primitive.NewObjectID(),
			"username": req.Username,
			"month":    req.Month,
			"amount":   req.Amount,
			"dueDate":  nil,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByUsernameMonth returns the row for one member-month.
func (s *Store) GetByUsernameMonth(ctx context.Context, username, month string) (models.Contribution, error) {
	var c models.Contribution
	err := s.c.FindOne(ctx, bson.M{"username": username, "month": month}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return models.Contribution{}, ErrNotFound
	}
	if err != nil {
		return models.Contribution{}, err
	}
	return c, nil
}

// ListByUsername returns a member's full ledger, oldest month first.
func (s *Store) ListByUsername(ctx context.Context, username string) ([]models.Contribution, error) {
	return s.list(ctx, bson.M{"username": username})
}

// ListByMonth returns every row for one month.
func (s *Store) ListByMonth(ctx context.Context, month string) ([]models.Contribution, error) {
	return s.list(ctx, bson.M{"month": month})
}

// ListPaid returns all paid rows across all months (dashboard totals).
func (s *Store) ListPaid(ctx context.Context) ([]models.Contribution, error) {
	return s.list(ctx, bson.M{"status": models.ContributionPaid})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Contribution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "month", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contribution
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a ledger row by id (admin cleanup only).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
