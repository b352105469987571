// internal/app/store/mongostore/store.go

// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/txn"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	collUsers       = "users"
	collCollections = "collections"
	collImpacts     = "impacts"
	collActivities  = "activities"
	collBadges      = "badges"
	collEcoTips     = "eco_tips"
	collInterests   = "material_interests"
	collMessages    = "chat_messages"
	collFeedback    = "feedback"
	collCenters     = "recycling_centers"
)

// Store is a store.Store backed by one Mongo database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger

	// sess is the session context while running inside RunInTx.
	sess context.Context
}

var _ store.Store = (*Store)(nil)

// New wraps an already connected client.
func New(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{client: client, db: db, log: logger}
}

// DB returns the underlying database.
func (s *Store) DB() *mongo.Database { return s.db }

func (s *Store) c(name string) *mongo.Collection { return s.db.Collection(name) }

// use routes operations through the transaction session when one is active.
func (s *Store) use(ctx context.Context) context.Context {
	if s.sess != nil {
		return s.sess
	}
	return ctx
}

// RunInTx runs fn in a multi-document transaction. On deployments without
// transactions fn runs directly and earlier writes are not undone.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.sess != nil {
		return fn(s)
	}
	return txn.Run(ctx, s.client, s.log, func(sc context.Context) error {
		return fn(&Store{client: s.client, db: s.db, log: s.log, sess: sc})
	})
}

// Ping checks primary connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mapErr converts driver errors to store sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case wafflemongo.IsDup(err):
		return store.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// findAll decodes every document of a cursor into out.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func byID(id string) bson.M { return bson.M{"_id": id} }
