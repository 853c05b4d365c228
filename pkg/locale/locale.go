// Package locale resolves the set of locales the site serves.
package locale

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/pkg/models"
)

// Static locales compiled into the site. The CMS can narrow this list but never widen it.
var StaticLocales = []string{"fr", "en", "it"}

// DefaultLocale is used whenever the CMS does not name a usable default.
const DefaultLocale = "fr"

// CookieName holds the persisted locale preference.
const CookieName = "locale"

// Source fetches locales from the content service.
type Source interface {
	Locales(ctx context.Context) ([]models.Locale, error)
}

// Supported is a resolved locale list.
type Supported struct {
	Locales       []string `json:"locales"`
	DefaultLocale string   `json:"defaultLocale"`
}

// Contains reports whether code is one of the supported locales.
func (s Supported) Contains(code string) bool {
	for _, l := range s.Locales {
		if l == code {
			return true
		}
	}
	return false
}

// Resolver caches the supported locales for a bounded interval.
type Resolver struct {
	source Source
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	cached    *Supported
	fetchedAt time.Time
}

// NewResolver creates a resolver. A zero ttl means one hour.
func NewResolver(source Source, ttl time.Duration, log zerolog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Resolver{source: source, ttl: ttl, log: log, now: time.Now}
}

// Supported returns the cached list, refreshing it when expired. On fetch
// failure it serves the stale copy, or the static list when nothing is cached.
func (r *Resolver) Supported(ctx context.Context) Supported {
	r.mu.RLock()
	if r.cached != nil && r.now().Sub(r.fetchedAt) < r.ttl {
		s := *r.cached
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if r.cached != nil && r.now().Sub(r.fetchedAt) < r.ttl {
		return *r.cached
	}

	remote, err := r.source.Locales(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("locale fetch failed, using fallback")
		if r.cached != nil {
			return *r.cached
		}
		return Resolve(nil)
	}

	s := Resolve(remote)
	r.cached = &s
	r.fetchedAt = r.now()
	return s
}

// Invalidate drops the cached list.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// Resolve intersects the CMS locales with StaticLocales. An empty CMS list or
// an empty intersection yields the static list. Order follows the CMS.
func Resolve(remote []models.Locale) Supported {
	candidates := make([]string, 0, len(remote))
	defaultLocale := ""
	for _, l := range remote {
		code := strings.TrimSpace(l.Code)
		if code == "" {
			continue
		}
		candidates = append(candidates, code)
		if l.IsDefault && defaultLocale == "" {
			defaultLocale = code
		}
	}
	if len(candidates) == 0 {
		candidates = StaticLocales
	}

	seen := make(map[string]bool, len(candidates))
	locales := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !isStatic(c) || seen[c] {
			continue
		}
		seen[c] = true
		locales = append(locales, c)
	}
	if len(locales) == 0 {
		locales = append([]string(nil), StaticLocales...)
	}

	s := Supported{Locales: locales, DefaultLocale: DefaultLocale}
	if defaultLocale != "" && s.Contains(defaultLocale) {
		s.DefaultLocale = defaultLocale
	}
	return s
}

func isStatic(code string) bool {
	for _, l := range StaticLocales {
		if l == code {
			return true
		}
	}
	return false
}

// FirstSegment returns the first path segment of p, or "".
func FirstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

// PreferenceCookie builds the best-effort locale cookie.
func PreferenceCookie(code string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}
