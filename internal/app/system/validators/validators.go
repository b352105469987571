// internal/app/system/validators/validators.go

// Package validators attaches MongoDB JSON-Schema validators to the
// collections whose documents carry enumerated fields (roles and statuses),
// so a bad write from any code path is rejected by the server.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/pipapal/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("collections", collectionsSchema())
	ensure("material_interests", interestsSchema())
	ensure("chat_messages", chatSchema())

	// Append-only ledgers; no validator, but they should exist before first use.
	ensure("impacts", nil)
	ensure("activities", nil)
	ensure("badges", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandError(err error, code int32, needles ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandError(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandError(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandError(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enum(values []string) bson.A {
	out := make(bson.A, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "email", "password_hash", "role", "sustainability_score"},
			"properties": bson.M{
				"username":             nonBlank,
				"email":                nonBlank,
				"password_hash":        nonBlank,
				"role":                 bson.M{"enum": enum(models.Roles)},
				"sustainability_score": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"google_uid":           bson.M{"bsonType": bson.A{"string", "null"}},
			},
		},
	}
}

func collectionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "waste_type", "address", "status", "scheduled_date"},
			"properties": bson.M{
				"user_id":        nonBlank,
				"collector_id":   bson.M{"bsonType": bson.A{"string", "null"}},
				"waste_type":     nonBlank,
				"address":        nonBlank,
				"status":         bson.M{"enum": enum(models.CollectionStatuses)},
				"scheduled_date": bson.M{"bsonType": "date"},
				"waste_amount":   bson.M{"bsonType": bson.A{"double", "null"}},
				"completed_date": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func interestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"collection_id", "recycler_id", "status"},
			"properties": bson.M{
				"collection_id": nonBlank,
				"recycler_id":   nonBlank,
				"status": bson.M{"enum": bson.A{
					models.InterestPending, models.InterestAccepted,
					models.InterestRejected, models.InterestCompleted,
				}},
			},
		},
	}
}

func chatSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"sender_id", "receiver_id", "content", "read"},
			"properties": bson.M{
				"sender_id":   nonBlank,
				"receiver_id": nonBlank,
				"content":     nonBlank,
				"read":        bson.M{"bsonType": "bool"},
			},
		},
	}
}
