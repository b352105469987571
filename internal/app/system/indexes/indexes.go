// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup when the Mongo backend is active. Each
ensure step is idempotent. Errors are aggregated so every problem shows up
in one startup failure.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	for _, spec := range Specs() {
		if err := ensureIndexSet(ctx, db.Collection(spec.Collection), spec.Indexes, logger); err != nil {
			problems = append(problems, spec.Collection+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// CollectionIndexes is the desired index set for one collection.
type CollectionIndexes struct {
	Collection string
	Indexes    []mongo.IndexModel
}

// Specs returns the desired indexes for every PipaPal collection.
func Specs() []CollectionIndexes {
	return []CollectionIndexes{
		{"users", []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_users_username")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_users_email")},
			// sparse so accounts without a google uid don't collide on null
			{Keys: bson.D{{Key: "google_uid", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_google_uid")},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "username", Value: 1}}, Options: options.Index().SetName("idx_users_role")},
		}},
		{"collections", []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_collections_owner")},
			{Keys: bson.D{{Key: "collector_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_collections_collector")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_collections_status")},
		}},
		{"impacts", []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_impacts_user")},
			{Keys: bson.D{{Key: "collection_id", Value: 1}}, Options: options.Index().SetName("idx_impacts_collection")},
		}},
		{"activities", []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_activities_user")},
		}},
		{"badges", []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "badge_type", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_badges_user_type")},
		}},
		{"eco_tips", []mongo.IndexModel{
			{Keys: bson.D{{Key: "waste_type", Value: 1}}, Options: options.Index().SetName("idx_eco_tips_waste_type")},
		}},
		{"material_interests", []mongo.IndexModel{
			{Keys: bson.D{{Key: "collection_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_interests_collection")},
			{Keys: bson.D{{Key: "recycler_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_interests_recycler")},
		}},
		{"chat_messages", []mongo.IndexModel{
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_chat_pair")},
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "read", Value: 1}}, Options: options.Index().SetName("idx_chat_unread")},
		}},
		{"feedback", []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_feedback_user")},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes and replaces ones whose key
// pattern matches but whose uniqueness or name differs.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// a collection that doesn't exist yet lists no indexes on most servers
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
				logger.Debug("reusing index", zap.String("collection", coll.Name()), zap.String("name", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop failed: %v", name, err))
				continue
			}
			logger.Info("dropped index for recreate", zap.String("collection", coll.Name()), zap.String("name", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique != nil && *unique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
