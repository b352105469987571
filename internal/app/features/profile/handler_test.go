package profile_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/profile"
	"github.com/dalemusser/pipapal/internal/app/services/accounts"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	h    *profile.Handler
	sm   *auth.SessionManager
	acct *accounts.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	acct := accounts.New(memory.New(), logger)
	return &env{h: profile.NewHandler(acct, logger), sm: sm, acct: acct}
}

func (e *env) register(t *testing.T, username, role string) models.User {
	t.Helper()
	u, err := e.acct.Register(context.Background(), accounts.RegisterInput{
		Username: username, Email: username + "@example.com", Password: "secret1", Role: role,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	profile.Routes(e.h, e.sm).ServeHTTP(rec, req)
	return rec
}

func TestServeCurrentUser(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "ann", models.RoleHousehold)

	rec := e.do(testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = e.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(u)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"username":"ann"`)
	rec.AssertContains(t, `"permissions"`)

	// A session for a user that no longer exists reads as signed out.
	rec = e.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.HouseholdUser()))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleUpdateProfile(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "ann", models.RoleHousehold)
	e.register(t, "ben", models.RoleHousehold)

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/profile",
		`{"fullName":"Ann Lee","phone":"555-0101"}`), testutil.AsTestUser(u))
	rec := e.do(req)
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
	}
	rec.DecodeJSON(t, &body)
	if body.FullName != "Ann Lee" || body.Phone != "555-0101" {
		t.Errorf("unexpected body: %+v", body)
	}

	req = testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/profile",
		`{"email":"ben@example.com"}`), testutil.AsTestUser(u))
	e.do(req).AssertStatus(t, http.StatusBadRequest)

	req = testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/profile",
		`{"email":"not-an-email"}`), testutil.AsTestUser(u))
	e.do(req).AssertStatus(t, http.StatusBadRequest)

	e.do(testutil.NewJSONRequest(http.MethodPatch, "/profile", `{}`)).AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleCompleteOnboarding(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "ann", models.RoleHousehold)

	var body struct {
		OnboardingCompleted bool `json:"onboardingCompleted"`
		BadgeAwarded        bool `json:"badgeAwarded"`
	}
	rec := e.do(testutil.NewAuthenticatedRequest(http.MethodPost, "/onboarding", testutil.AsTestUser(u)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	if !body.OnboardingCompleted || !body.BadgeAwarded {
		t.Errorf("first call: %+v", body)
	}

	rec = e.do(testutil.NewAuthenticatedRequest(http.MethodPost, "/onboarding", testutil.AsTestUser(u)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	if body.BadgeAwarded {
		t.Error("badge awarded twice")
	}
}

func TestHandleUpdateBusiness(t *testing.T) {
	e := newEnv(t)
	home := e.register(t, "ann", models.RoleHousehold)
	col := e.register(t, "carl", models.RoleCollector)

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/business",
		`{"businessName":"Carl Hauling"}`), testutil.AsTestUser(col))
	rec := e.do(req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"businessName":"Carl Hauling"`)

	req = testutil.WithUser(testutil.NewJSONRequest(http.MethodPatch, "/business",
		`{"businessName":"Ann Inc"}`), testutil.AsTestUser(home))
	e.do(req).AssertStatus(t, http.StatusForbidden)
}

func TestHandleChangePassword(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "ann", models.RoleHousehold)

	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/password",
		`{"currentPassword":"secret1","newPassword":"123"}`), testutil.AsTestUser(u))
	e.do(req).AssertStatus(t, http.StatusBadRequest)

	req = testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/password",
		`{"currentPassword":"secret1","newPassword":"brandnew"}`), testutil.AsTestUser(u))
	e.do(req).AssertStatus(t, http.StatusOK)

	if _, err := e.acct.Login(context.Background(), accounts.LoginInput{Username: "ann", Password: "brandnew"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
