package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/anisham/contribhub/internal/app/system/authutil"
	"github.com/anisham/contribhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup creates a test group with the given base amount and fine rules.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, baseAmount int64, rules []models.FineRule) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		BaseAmount: baseAmount,
		FineRules:  rules,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	return group
}

// CreateMember creates a test member with a bcrypt-hashed password.
func (f *Fixtures) CreateMember(ctx context.Context, groupID primitive.ObjectID, name, username, password string) models.Member {
	f.t.Helper()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	member := models.Member{
		ID:           primitive.NewObjectID(),
		GroupID:      groupID,
		Name:         name,
		Username:     username,
		UsernameCI:   text.Fold(username),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, member); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}

	return member
}

// CreateLegacyMember creates a member document carrying a plaintext password
// field and no hash, the shape of pre-migration data.
func (f *Fixtures) CreateLegacyMember(ctx context.Context, groupID primitive.ObjectID, name, username, plaintext string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	member := models.Member{
		ID:             primitive.NewObjectID(),
		GroupID:        groupID,
		Name:           name,
		Username:       username,
		UsernameCI:     text.Fold(username),
		LegacyPassword: plaintext,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("members").InsertOne(ctx, member); err != nil {
		f.t.Fatalf("failed to create legacy test member: %v", err)
	}

	return member
}

// CreateContribution creates a ledger row with the given status.
func (f *Fixtures) CreateContribution(ctx context.Context, username, month string, amount int64, status string) models.Contribution {
	f.t.Helper()

	c := models.Contribution{
		ID:       primitive.NewObjectID(),
		Username: username,
		Month:    month,
		Amount:   amount,
		Status:   status,
	}

	if _, err := f.db.Collection("contribution").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test contribution: %v", err)
	}

	return c
}

// CreatePaymentRequest creates a payment request with the given status and
// createdAt, so tests can control latest-request ordering.
func (f *Fixtures) CreatePaymentRequest(ctx context.Context, username, month string, amount int64, status string, createdAt time.Time) models.PaymentRequest {
	f.t.Helper()

	req := models.PaymentRequest{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Month:      month,
		Amount:     amount,
		UPIID:      "test@upi",
		Screenshot: "data:image/png;base64,dGVzdA==",
		Status:     status,
		CreatedAt:  createdAt.UTC().Format(time.RFC3339),
		PaymentID:  "PI010120261234",
	}

	if _, err := f.db.Collection("payment_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test payment request: %v", err)
	}

	return req
}

// CreateNotification creates an unread notification for a user.
func (f *Fixtures) CreateNotification(ctx context.Context, userID, username, typ, message string) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Username:  username,
		Type:      typ,
		Title:     "Test notification",
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}

	return n
}

// SavePaymentSettings writes the singleton settings document.
func (f *Fixtures) SavePaymentSettings(ctx context.Context, gatewayEnabled bool, upiID string) models.PaymentSettings {
	f.t.Helper()

	settings := models.PaymentSettings{
		ID:             models.SettingsDocID,
		GatewayEnabled: gatewayEnabled,
		UPIID:          upiID,
		UpdatedAt:      time.Now().UTC(),
	}

	if _, err := f.db.Collection("static").InsertOne(ctx, settings); err != nil {
		f.t.Fatalf("failed to create test payment settings: %v", err)
	}

	return settings
}
