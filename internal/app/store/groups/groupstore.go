// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/anisham/contribhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNoGroup        = errors.New("no group has been created yet")
	ErrDuplicateGroup = errors.New("a group with this name already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// Active returns the single active group. The app assumes one group; if
// several documents exist (legacy data), the oldest wins.
func (s *Store) Active(ctx context.Context) (models.Group, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNoGroup
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Group{}, ErrNoGroup
		}
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts the group. Fine rules missing a date or amount are dropped
// on write, mirroring what the admin form always did.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.FineRules = filterRules(g.FineRules)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroup
		}
		return models.Group{}, err
	}
	return g, nil
}

// Update replaces the editable fields of a group.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name string, baseAmount int64, rules []models.FineRule, previous int64) error {
	set := bson.M{
		"name":                 name,
		"name_ci":              text.Fold(name),
		"baseAmount":           baseAmount,
		"fineRules":            filterRules(rules),
		"previousContribution": previous,
		"updatedAt":            time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroup
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoGroup
	}
	return nil
}

// Delete removes a group by ID. Member cascade is the caller's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func filterRules(rules []models.FineRule) []models.FineRule {
	out := make([]models.FineRule, 0, len(rules))
	for _, r := range rules {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
