// internal/app/system/oauthstate/oauthstate.go

// Package oauthstate carries the OAuth2 state parameter in a signed,
// short-lived cookie so the callback can check it without server storage.
package oauthstate

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	cookieName = "pipapal_oauth_state"
	maxAge     = 10 * time.Minute
)

// ErrInvalid means the state is missing, expired, tampered with, or does
// not match the query parameter.
var ErrInvalid = errors.New("oauthstate: invalid state")

type payload struct {
	State     string `json:"s"`
	ReturnURL string `json:"r,omitempty"`
}

// Manager signs and checks state cookies.
type Manager struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// New returns a Manager that signs cookies with hashKey.
func New(hashKey string, secure bool) *Manager {
	sc := securecookie.New([]byte(hashKey), nil)
	sc.MaxAge(int(maxAge.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Manager{sc: sc, secure: secure}
}

// Issue generates a random state, stores it with returnURL in a cookie on
// w and returns the state for the authorization URL.
func (m *Manager) Issue(w http.ResponseWriter, returnURL string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("oauthstate: random: %w", err)
	}
	state := hex.EncodeToString(buf)

	encoded, err := m.sc.Encode(cookieName, payload{State: state, ReturnURL: returnURL})
	if err != nil {
		return "", fmt.Errorf("oauthstate: encode: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// Validate checks state against the cookie on r and clears the cookie.
// It returns the return URL stored at Issue time.
func (m *Manager) Validate(w http.ResponseWriter, r *http.Request, state string) (string, error) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	c, err := r.Cookie(cookieName)
	if err != nil || state == "" {
		return "", ErrInvalid
	}
	var p payload
	if err := m.sc.Decode(cookieName, c.Value, &p); err != nil {
		return "", ErrInvalid
	}
	if subtle.ConstantTimeCompare([]byte(p.State), []byte(state)) != 1 {
		return "", ErrInvalid
	}
	return p.ReturnURL, nil
}
