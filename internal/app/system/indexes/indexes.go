// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Index creation is idempotent (CreateMany
reuses an index whose name and keys already match), and we aggregate
errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	if err := ensureGroups(ctx, db, log); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureMembers(ctx, db, log); err != nil {
		problems = append(problems, "members: "+err.Error())
	}
	if err := ensureContributions(ctx, db, log); err != nil {
		problems = append(problems, "contribution: "+err.Error())
	}
	if err := ensurePaymentRequests(ctx, db, log); err != nil {
		problems = append(problems, "payment_requests: "+err.Error())
	}
	if err := ensureNotifications(ctx, db, log); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureGroups(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("groups"), log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("created_at"),
		},
	})
}

func ensureMembers(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("members"), log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetName("uniq_username_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}},
			Options: options.Index().SetName("group_id"),
		},
	})
}

// The (username, month) unique index is what makes "one ledger row per
// member-month" hold under concurrent writers; the reconcile upsert
// depends on it.
func ensureContributions(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("contribution"), log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "month", Value: 1}},
			Options: options.Index().SetName("uniq_username_month").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "month", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("month_status"),
		},
	})
}

func ensurePaymentRequests(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("payment_requests"), log, []mongo.IndexModel{
		{
			// Latest() sorts createdAt desc within a member-month.
			Keys: bson.D{
				{Key: "username", Value: 1},
				{Key: "month", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("username_month_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_created"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}},
			Options: options.Index().SetName("user_read"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
	})
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, log *zap.Logger, models []mongo.IndexModel) error {
	start := time.Now()
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("ensured indexes",
		zap.String("collection", coll.Name()),
		zap.Strings("indexes", names),
		zap.String("took", time.Since(start).String()))
	return nil
}
