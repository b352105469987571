package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/pipapal/internal/app/system/txn"
	"github.com/dalemusser/pipapal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("collection already claimed"), false},
		{"standalone server code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"illegal operation code", mongo.CommandError{Code: 51}, true},
		{"not supported in transaction code", mongo.CommandError{Code: 263}, true},
		{"duplicate key code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped command error", fmt.Errorf("claim: %w", mongo.CommandError{Code: 20}), true},
		{"replica set message", errors.New("Transaction requires a REPLICA SET"), true},
		{"sessions unsupported", errors.New("sessions are not supported by this deployment"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_CommitsAndRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	coll := db.Collection("txn_probe")

	err := txn.Run(ctx, db.Client(), zap.NewNop(), func(sc context.Context) error {
		_, err := coll.InsertOne(sc, bson.M{"_id": "kept"})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n, _ := coll.CountDocuments(ctx, bson.M{"_id": "kept"}); n != 1 {
		t.Errorf("committed write missing")
	}

	boom := errors.New("boom")
	err = txn.Run(ctx, db.Client(), zap.NewNop(), func(sc context.Context) error {
		if _, err := coll.InsertOne(sc, bson.M{"_id": "dropped"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
