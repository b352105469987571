// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/store/sqlstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the persistence backend chosen by store_backend.
// Store is always set; the backend-specific handles are set only for
// their backend and are used for schema setup.
type DBDeps struct {
	Backend string
	Store   store.Store

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	SQL *sqlstore.Store
}
