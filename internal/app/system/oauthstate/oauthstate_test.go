package oauthstate_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/pipapal/internal/app/system/oauthstate"
)

const key = "0123456789abcdef0123456789abcdef"

// roundTrip issues a state and returns a callback request carrying the cookie.
func roundTrip(t *testing.T, m *oauthstate.Manager, returnURL string) (string, *http.Request) {
	t.Helper()
	rec := httptest.NewRecorder()
	state, err := m.Issue(rec, returnURL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return state, req
}

func TestValidate_Matches(t *testing.T) {
	m := oauthstate.New(key, false)
	state, req := roundTrip(t, m, "/dashboard")

	rec := httptest.NewRecorder()
	ret, err := m.Validate(rec, req, state)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ret != "/dashboard" {
		t.Errorf("return url: %q", ret)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the state cookie to be cleared")
	}
}

func TestValidate_Rejects(t *testing.T) {
	m := oauthstate.New(key, false)

	t.Run("wrong state", func(t *testing.T) {
		_, req := roundTrip(t, m, "")
		if _, err := m.Validate(httptest.NewRecorder(), req, "other"); !errors.Is(err, oauthstate.ErrInvalid) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if _, err := m.Validate(httptest.NewRecorder(), req, "abc"); !errors.Is(err, oauthstate.ErrInvalid) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("signed with another key", func(t *testing.T) {
		other := oauthstate.New("fedcba9876543210fedcba9876543210", false)
		state, req := roundTrip(t, other, "")
		if _, err := m.Validate(httptest.NewRecorder(), req, state); !errors.Is(err, oauthstate.ErrInvalid) {
			t.Errorf("got %v", err)
		}
	})
}

func TestIssue_StatesAreUnique(t *testing.T) {
	m := oauthstate.New(key, true)
	a, _ := m.Issue(httptest.NewRecorder(), "")
	b, _ := m.Issue(httptest.NewRecorder(), "")
	if a == b || len(a) != 32 {
		t.Errorf("states %q %q", a, b)
	}
}
