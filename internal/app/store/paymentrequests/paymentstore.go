// internal/app/store/paymentrequests/paymentstore.go
package paymentstore

import (
	"context"
	"errors"
	"time"

	"github.com/anisham/contribhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound       = errors.New("payment request not found")
	ErrAlreadyDecided = errors.New("payment request has already been decided")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payment_requests")}
}

// Create inserts a new pending request. CreatedAt is stored as an RFC 3339
// string; Latest relies on its lexicographic ordering.
func (s *Store) Create(ctx context.Context, req models.PaymentRequest, now time.Time) (models.PaymentRequest, error) {
	req.ID = primitive.NewObjectID()
	req.Status = models.PaymentPending
	req.CreatedAt = now.UTC().Format(time.RFC3339)
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.PaymentRequest{}, err
	}
	return req, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.PaymentRequest, error) {
	var req models.PaymentRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return models.PaymentRequest{}, ErrNotFound
	}
	if err != nil {
		return models.PaymentRequest{}, err
	}
	return req, nil
}

// Decide moves a pending request to accepted or rejected. The filter pins
// status=pending, so deciding an already-decided request matches nothing:
// accepted and rejected are terminal no matter how many admins race.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, outcome string) (models.PaymentRequest, error) {
	if outcome != models.PaymentAccepted && outcome != models.PaymentRejected {
		return models.PaymentRequest{}, errors.New("outcome must be accepted or rejected")
	}

	filter := bson.M{"_id": id, "status": models.PaymentPending}
	update := bson.M{"$set": bson.M{"status": outcome}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.PaymentRequest
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if err == mongo.ErrNoDocuments {
		// Distinguish missing from already-decided.
		if _, getErr := s.GetByID(ctx, id); getErr == nil {
			return models.PaymentRequest{}, ErrAlreadyDecided
		}
		return models.PaymentRequest{}, ErrNotFound
	}
	if err != nil {
		return models.PaymentRequest{}, err
	}
	return req, nil
}

// Latest returns the member's most recent request for a month, comparing
// createdAt strings lexicographically (RFC 3339 sorts chronologically).
// Earlier requests for the month are left untouched; the latest one is
// authoritative for display.
func (s *Store) Latest(ctx context.Context, username, month string) (models.PaymentRequest, error) {
	filter := bson.M{"username": username, "month": month}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var req models.PaymentRequest
	err := s.c.FindOne(ctx, filter, opts).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return models.PaymentRequest{}, ErrNotFound
	}
	if err != nil {
		return models.PaymentRequest{}, err
	}
	return req, nil
}

// ListPending returns all undecided requests, newest first.
func (s *Store) ListPending(ctx context.Context) ([]models.PaymentRequest, error) {
	return s.list(ctx, bson.M{"status": models.PaymentPending})
}

// ListAll returns every request, newest first (admin history view).
func (s *Store) ListAll(ctx context.Context) ([]models.PaymentRequest, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.PaymentRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PaymentRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a request. The contribution ledger is never touched here:
// a row's paid status is owned by the ledger alone.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
