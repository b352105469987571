// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/pipapal/internal/app/services/ecotips"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/store/mongostore"
	"github.com/dalemusser/pipapal/internal/app/store/sqlstore"
	"github.com/dalemusser/pipapal/internal/app/system/indexes"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/pipapal/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured store backend.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{Backend: appCfg.StoreBackend}

	switch appCfg.StoreBackend {
	case BackendMemory:
		deps.Store = memory.New()

	case BackendMongo:
		opts := options.Client().
			ApplyURI(appCfg.MongoURI).
			SetMaxPoolSize(appCfg.MongoMaxPool).
			SetMinPoolSize(appCfg.MongoMinPool)

		cctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()

		client, err := mongo.Connect(cctx, opts)
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
		}
		pctx, pcancel := context.WithTimeout(ctx, timeouts.Ping())
		defer pcancel()
		if err := client.Ping(pctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
		}
		db := client.Database(appCfg.MongoDatabase)
		deps.MongoClient = client
		deps.MongoDatabase = db
		deps.Store = mongostore.New(client, db, logger)

	case BackendPostgres, BackendSQLite:
		sqlStore, err := sqlstore.Open(appCfg.StoreBackend, appCfg.SQLDSN, logger)
		if err != nil {
			return DBDeps{}, err
		}
		deps.SQL = sqlStore
		deps.Store = sqlStore

	default:
		return DBDeps{}, fmt.Errorf("unknown store_backend %q", appCfg.StoreBackend)
	}

	logger.Info("store connected", zap.String("backend", deps.Backend))
	return deps, nil
}

// EnsureSchema creates Mongo indexes and validators or runs the SQL
// migrations, then seeds reference content.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	sctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	switch {
	case deps.MongoDatabase != nil:
		if err := indexes.EnsureAll(sctx, deps.MongoDatabase, logger); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		if err := validators.EnsureAll(sctx, deps.MongoDatabase, logger); err != nil {
			return fmt.Errorf("ensure validators: %w", err)
		}
	case deps.SQL != nil:
		if err := deps.SQL.Migrate(sctx); err != nil {
			return err
		}
	}

	if _, err := ecotips.New(deps.Store, logger).Seed(sctx); err != nil {
		// Tips fall back to the built-in set, so a failed seed is not fatal.
		logger.Warn("seed eco tips failed", zap.Error(err))
	}
	return nil
}
