package middleware

import (
	"context"
	"net/http"
	"strings"

	"wedding-site/pkg/locale"
)

// LocaleSource is satisfied by *locale.Resolver.
type LocaleSource interface {
	Supported(ctx context.Context) locale.Supported
}

var localeBypass = []string{"/api", "/_next", "/static", "/admin"}

// LocaleRedirect sends "/" to the default locale and persists the locale
// preference cookie. Unsupported first segments pass through untouched.
func LocaleRedirect(src LocaleSource, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if skipLocale(p) {
				next.ServeHTTP(w, r)
				return
			}

			_, cookieErr := r.Cookie(locale.CookieName)
			hasCookie := cookieErr == nil

			if p == "" || p == "/" {
				sup := src.Supported(r.Context())
				target := "/" + sup.DefaultLocale
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				if !hasCookie {
					http.SetCookie(w, locale.PreferenceCookie(sup.DefaultLocale, secure))
				}
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			if !hasCookie {
				seg := locale.FirstSegment(p)
				if sup := src.Supported(r.Context()); sup.Contains(seg) {
					http.SetCookie(w, locale.PreferenceCookie(seg, secure))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func skipLocale(p string) bool {
	if strings.Contains(p, ".") {
		return true
	}
	for _, prefix := range localeBypass {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
