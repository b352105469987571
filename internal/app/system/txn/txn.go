// internal/app/system/txn/txn.go

// Package txn runs MongoDB multi-document transactions, falling back to
// plain sequential execution on deployments without transaction support
// (standalone servers, some DocumentDB versions).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a session transaction on client. If the server
// rejects transactions, fn is run again without one and the fallback is
// logged once per call.
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithout(ctx, logger, err, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runWithout(ctx, logger, err, fn)
	}
	return err
}

func runWithout(ctx context.Context, logger *zap.Logger, cause error, fn func(ctx context.Context) error) error {
	if logger != nil {
		logger.Debug("transactions unavailable; running without", zap.Error(cause))
	}
	return fn(ctx)
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, not a replica set member, OperationNotSupportedInTransaction
			return true
		}
	}
	s := strings.ToLower(err.Error())
	hasTxn := strings.Contains(s, "transaction")
	return (hasTxn && strings.Contains(s, "replica set")) ||
		(strings.Contains(s, "session") && strings.Contains(s, "not supported")) ||
		(hasTxn && strings.Contains(s, "session")) ||
		(strings.Contains(s, "illegal operation") && hasTxn)
}
