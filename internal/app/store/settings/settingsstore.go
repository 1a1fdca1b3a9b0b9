// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"time"

	"github.com/anisham/contribhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the singleton payment settings document
// (collection "static", _id "settings", the legacy document path).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("static")}
}

// Get returns the payment settings, or defaults (gateway off, no UPI id)
// when none have been saved yet.
func (s *Store) Get(ctx context.Context) (models.PaymentSettings, error) {
	var settings models.PaymentSettings
	err := s.c.FindOne(ctx, bson.M{"_id": models.SettingsDocID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return models.PaymentSettings{ID: models.SettingsDocID}, nil
	}
	if err != nil {
		return models.PaymentSettings{}, err
	}
	return settings, nil
}

// Save upserts the settings document.
func (s *Store) Save(ctx context.Context, settings models.PaymentSettings) error {
	filter := bson.M{"_id": models.SettingsDocID}
	update := bson.M{"$set": bson.M{
		"gatewayEnabled": settings.GatewayEnabled,
		"upiId":          settings.UPIID,
		"updatedAt":      time.Now().UTC(),
	}}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
