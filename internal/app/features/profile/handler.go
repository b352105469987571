// internal/app/features/profile/handler.go
package profile

import (
	"github.com/dalemusser/pipapal/internal/app/services/accounts"
	"go.uber.org/zap"
)

// Handler owns the current-user and profile endpoints under /api/user.
type Handler struct {
	Accounts *accounts.Service
	Log      *zap.Logger
}

// NewHandler constructs a Handler bound to the account service and logger.
func NewHandler(acct *accounts.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: acct,
		Log:      logger,
	}
}
