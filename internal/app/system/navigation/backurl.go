// internal/app/system/navigation/backurl.go

// Package navigation validates client-supplied return URLs.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures SafeBackURL.
type BackURLOptions struct {
	// ExcludedPrefixes are paths that must not be returned to, such as the
	// sign-in pages themselves.
	ExcludedPrefixes []string

	// Fallback is used when no acceptable return URL is supplied.
	Fallback string
}

// SafeBackURL reads the "return" query parameter and returns it when it is
// a local path outside every excluded prefix. Anything else yields the
// fallback, so an attacker cannot turn a redirect into an open redirect.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return opts.Fallback
	}
	for _, p := range opts.ExcludedPrefixes {
		if strings.HasPrefix(ret, p) {
			return opts.Fallback
		}
	}
	return ret
}

// SignInReturn is used after an external sign-in completes.
var SignInReturn = BackURLOptions{
	ExcludedPrefixes: []string{"/login", "/register", "/auth/", "/api/"},
	Fallback:         "/dashboard",
}
