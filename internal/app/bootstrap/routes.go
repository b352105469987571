// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	activityfeature "github.com/dalemusser/pipapal/internal/app/features/activity"
	authgooglefeature "github.com/dalemusser/pipapal/internal/app/features/authgoogle"
	chatfeature "github.com/dalemusser/pipapal/internal/app/features/chat"
	collectionsfeature "github.com/dalemusser/pipapal/internal/app/features/collections"
	dashboardfeature "github.com/dalemusser/pipapal/internal/app/features/dashboard"
	ecotipsfeature "github.com/dalemusser/pipapal/internal/app/features/ecotips"
	feedbackfeature "github.com/dalemusser/pipapal/internal/app/features/feedback"
	healthfeature "github.com/dalemusser/pipapal/internal/app/features/health"
	impactfeature "github.com/dalemusser/pipapal/internal/app/features/impact"
	loginfeature "github.com/dalemusser/pipapal/internal/app/features/login"
	logoutfeature "github.com/dalemusser/pipapal/internal/app/features/logout"
	materialsfeature "github.com/dalemusser/pipapal/internal/app/features/materials"
	profilefeature "github.com/dalemusser/pipapal/internal/app/features/profile"
	centersfeature "github.com/dalemusser/pipapal/internal/app/features/recyclingcenters"
	wsfeature "github.com/dalemusser/pipapal/internal/app/features/ws"
	"github.com/dalemusser/pipapal/internal/app/services/accounts"
	chatsvc "github.com/dalemusser/pipapal/internal/app/services/chat"
	collectionsvc "github.com/dalemusser/pipapal/internal/app/services/collections"
	"github.com/dalemusser/pipapal/internal/app/services/dashboards"
	ecotipsvc "github.com/dalemusser/pipapal/internal/app/services/ecotips"
	impactsvc "github.com/dalemusser/pipapal/internal/app/services/impact"
	"github.com/dalemusser/pipapal/internal/app/services/marketplace"
	userstore "github.com/dalemusser/pipapal/internal/app/store/users"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/app/system/oauthstate"
	"github.com/dalemusser/pipapal/internal/app/system/ratelimit"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/wstoken"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// loginLimiter is stopped by Shutdown.
var loginLimiter *ratelimit.Limiter

// BuildHandler constructs the root HTTP handler for PipaPal.
//
// WAFFLE calls this after configuration, store connection, schema setup,
// and Startup have completed. Services are built once here and shared by
// the feature handlers; the notification hub is shared by the services
// that push events and the websocket endpoint that delivers them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Refetch the user on every request so score and profile changes show up
	// without a new login.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.Store, logger))

	tokens, err := wstoken.New(appCfg.WSTokenSecret, appCfg.WSTokenTTL)
	if err != nil {
		logger.Error("ws token issuer init failed", zap.Error(err))
		return nil, err
	}

	st := deps.Store
	hub := notify.NewHub(logger)
	state := oauthstate.New(appCfg.SessionKey, secure)
	loginLimiter = ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	acct := accounts.New(st, logger)
	collections := collectionsvc.New(st, hub, logger)
	market := marketplace.New(st, hub, logger)
	chat := chatsvc.New(st, hub, logger)
	impact := impactsvc.New(st, logger)
	dash := dashboards.New(st, logger)
	tips := ecotipsvc.New(st, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(appCfg.WSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.WSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Loads SessionUser into context when a session cookie is present.
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	healthHandler := healthfeature.NewHandler(st, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(acct, sessionMgr, logger)
	r.Mount("/api/register", loginfeature.RegisterRoutes(loginHandler))
	r.Mount("/api/login", loginfeature.Routes(loginHandler, loginLimiter))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/api/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(acct, sessionMgr, state,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/api/login-with-google", authgooglefeature.APIRoutes(googleHandler))
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	profileHandler := profilefeature.NewHandler(acct, logger)
	r.Mount("/api/user", profilefeature.Routes(profileHandler, sessionMgr))

	// Marketplace
	collectionsHandler := collectionsfeature.NewHandler(collections, market, logger)
	r.Mount("/api/collections", collectionsfeature.Routes(collectionsHandler, sessionMgr))

	materialsHandler := materialsfeature.NewHandler(market, st, logger)
	r.Mount("/api/materials", materialsfeature.Routes(materialsHandler, sessionMgr))
	r.Mount("/api/material-interests", materialsfeature.InterestRoutes(materialsHandler, sessionMgr))

	// Engagement
	impactHandler := impactfeature.NewHandler(impact, logger)
	r.Mount("/api/impact", impactfeature.Routes(impactHandler, sessionMgr))

	activityHandler := activityfeature.NewHandler(st, st, logger)
	r.Mount("/api/activities", activityfeature.Routes(activityHandler, sessionMgr))
	r.Mount("/api/badges", activityfeature.BadgeRoutes(activityHandler, sessionMgr))

	dashboardHandler := dashboardfeature.NewHandler(dash, logger)
	r.Mount("/api/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	tipsHandler := ecotipsfeature.NewHandler(tips, logger)
	r.Mount("/api/eco-tips", ecotipsfeature.Routes(tipsHandler, sessionMgr))

	feedbackHandler := feedbackfeature.NewHandler(st, logger)
	r.Mount("/api/feedback", feedbackfeature.Routes(feedbackHandler, sessionMgr))

	centersHandler := centersfeature.NewHandler(st, logger)
	r.Mount("/api/recycling-centers", centersfeature.Routes(centersHandler, sessionMgr))

	// Messaging
	chatHandler := chatfeature.NewHandler(chat, logger)
	r.Mount("/api/chat", chatfeature.Routes(chatHandler, sessionMgr))

	wsHandler := wsfeature.NewHandler(hub, chat, tokens, appCfg.WSAllowedOrigins, logger)
	r.Mount("/api/ws-token", wsfeature.TokenRoutes(wsHandler, sessionMgr))
	r.Mount("/ws", wsfeature.Routes(wsHandler))

	return r, nil
}
