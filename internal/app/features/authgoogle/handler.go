// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/pipapal/internal/app/features/shared/views"
	"github.com/dalemusser/pipapal/internal/app/services/accounts"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/navigation"
	"github.com/dalemusser/pipapal/internal/app/system/oauthstate"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultUserInfoURL is Google's v2 userinfo endpoint.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Handler handles Google sign-in, both the server-side OAuth code flow and
// the JSON upsert used by clients that already hold a Google identity.
type Handler struct {
	Accounts   *accounts.Service
	SessionMgr *auth.SessionManager
	State      *oauthstate.Manager
	Log        *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://pipapal.example/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's; tests point them at a fake.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google sign-in handler.
func NewHandler(
	acct *accounts.Service,
	sessionMgr *auth.SessionManager,
	state *oauthstate.Manager,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Accounts:     acct,
		SessionMgr:   sessionMgr,
		State:        state,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  DefaultUserInfoURL,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Redirects to Google's consent screen.                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	returnURL := navigation.SafeBackURL(r, navigation.SignInReturn)
	state, err := h.State.Issue(w, returnURL)
	if err != nil {
		h.Log.Error("failed to issue OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, reads the Google profile, upserts the account and        |
| starts a session.                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	returnURL, err := h.State.Validate(w, r, query.Get(r, "state"))
	if err != nil {
		h.Log.Warn("invalid or expired OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "google callback")
	defer cancel()

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	u, created, err := h.Accounts.GoogleUpsert(ctx, accounts.GoogleInput{
		UID:           info.ID,
		Email:         info.Email,
		DisplayName:   info.Name,
		EmailVerified: info.EmailVerified,
	})
	if err != nil {
		h.Log.Error("google upsert failed", zap.String("google_id", info.ID), zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if err := h.SessionMgr.Login(w, r, views.SessionUser(u)); err != nil {
		h.Log.Error("failed to save session", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.Log.Info("google sign-in", zap.String("user_id", u.ID), zap.Bool("created", created))
	if created {
		returnURL = "/onboarding"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.New("user info is missing id or email")
	}
	return &info, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/login-with-google                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// upsertRequest carries a Google access token the client obtained itself.
// The identity is read from Google with it; uid and email, when sent, must
// match what Google returns.
type upsertRequest struct {
	AccessToken string `json:"accessToken" validate:"required" label:"Access token"`
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Role        string `json:"role" validate:"omitempty,role" label:"Role"`
}

// ServeUpsert signs in with a Google access token held by the client.
func (h *Handler) ServeUpsert(w http.ResponseWriter, r *http.Request) {
	var in upsertRequest
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "google upsert")
	defer cancel()

	info, err := h.fetchUserInfo(ctx, &oauth2.Token{AccessToken: in.AccessToken, TokenType: "Bearer"})
	if err != nil {
		h.Log.Warn("google token rejected", zap.Error(err))
		respond.Err(w, h.Log, respond.Unauthorized("Invalid Google credential"))
		return
	}
	if (in.UID != "" && in.UID != info.ID) || (in.Email != "" && !strings.EqualFold(strings.TrimSpace(in.Email), info.Email)) {
		h.Log.Warn("google identity mismatch", zap.String("google_id", info.ID))
		respond.Err(w, h.Log, respond.Unauthorized("Invalid Google credential"))
		return
	}

	u, created, err := h.Accounts.GoogleUpsert(ctx, accounts.GoogleInput{
		UID:           info.ID,
		Email:         info.Email,
		DisplayName:   info.Name,
		Role:          in.Role,
		EmailVerified: info.EmailVerified,
	})
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := h.SessionMgr.Login(w, r, views.SessionUser(u)); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, views.NewUser(u))
}
