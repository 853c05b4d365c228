package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"wedding-site/pkg/config"
)

const cloudinary = "https://res.cloudinary.com"

// CSP sets Content-Security-Policy on every response.
func CSP(cfg *config.Config) func(http.Handler) http.Handler {
	policy := BuildCSP(cfg.CSP, FrameOrigins(cfg.AllowedOrigins, cfg.ClientURL))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", policy)
			next.ServeHTTP(w, r)
		})
	}
}

// FrameOrigins lists the origins allowed to frame the site. Without explicit
// origins, a non-localhost client URL expands to its apex, www and wildcard hosts.
func FrameOrigins(allowed []string, clientURL string) []string {
	if len(allowed) > 0 {
		return allowed
	}
	if clientURL == "" {
		clientURL = "http://localhost:3000"
	}

	origins := []string{clientURL}
	if strings.Contains(clientURL, "localhost") {
		return origins
	}

	host := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(clientURL, "https://"), "http://"), "/")
	base := strings.TrimPrefix(host, "www.")
	for _, o := range []string{"https://" + base, "https://www." + base, "https://*." + base} {
		if o != clientURL {
			origins = append(origins, o)
		}
	}
	return origins
}

var (
	imgSrc    = regexp.MustCompile(`img-src([^;]*)`)
	mediaSrc  = regexp.MustCompile(`media-src([^;]*)`)
	objectSrc = regexp.MustCompile(`object-src([^;]*)`)
)

// BuildCSP returns the default policy when base is empty, otherwise base with
// Cloudinary ensured in img-src, media-src and object-src.
func BuildCSP(base string, origins []string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		o := strings.Join(origins, " ")
		return "default-src 'self'; img-src 'self' data: " + cloudinary + " https://market-assets.strapi.io; " +
			"frame-src 'self' " + o + "; frame-ancestors 'self' " + o + "; " +
			"script-src 'self'; style-src 'self' 'unsafe-inline'"
	}

	csp := strings.TrimSuffix(base, ";")
	csp = ensureSource(csp, imgSrc, "img-src 'self' data: "+cloudinary+" https://market-assets.strapi.io", false)
	csp = ensureSource(csp, mediaSrc, "media-src 'self' data: blob: "+cloudinary, false)
	csp = ensureSource(csp, objectSrc, "object-src 'self' "+cloudinary, true)
	return csp
}

// ensureSource appends Cloudinary to directive re, or appends fallback when
// the directive is missing. With replaceNone, a 'none' directive is replaced whole.
func ensureSource(csp string, re *regexp.Regexp, fallback string, replaceNone bool) string {
	loc := re.FindStringIndex(csp)
	if loc == nil {
		return csp + "; " + fallback
	}
	match := csp[loc[0]:loc[1]]
	if strings.Contains(match, cloudinary) {
		return csp
	}
	name := match[:strings.IndexByte(match, '-')] + "-src"
	var repl string
	if replaceNone && strings.Contains(match, "'none'") {
		repl = name + " 'self' " + cloudinary
	} else {
		repl = strings.TrimRight(match, " ") + " " + cloudinary
	}
	return csp[:loc[0]] + repl + csp[loc[1]:]
}
