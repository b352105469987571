// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires PipaPal into WAFFLE's lifecycle. WAFFLE runs them in order:
// config load and validation, store connection, schema and seed data,
// startup, handler construction, and Shutdown once the server drains.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "pipapal",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
