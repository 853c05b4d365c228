package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/cors"

	"wedding-site/pkg/config"
)

// vercelPreview matches preview deployments.
var vercelPreview = regexp.MustCompile(`^https://.*\.vercel\.app$`)

// CORS 创建CORS中间件
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	corsOptions := cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return OriginAllowed(cfg, origin)
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"X-Webhook-Secret",
			"Cache-Control",
		},
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300, // 5分钟
	}
	return cors.Handler(corsOptions)
}

// OriginAllowed 检查来源是否被允许
// Configured origins match exactly or by trailing "*" prefix; Vercel previews
// are always allowed; development allows everything.
func OriginAllowed(cfg *config.Config, origin string) bool {
	if origin == "" {
		return false
	}
	if cfg.IsDevelopment() || vercelPreview.MatchString(origin) {
		return true
	}

	for _, allowed := range cfg.AllowedOrigins {
		switch {
		case allowed == "*", allowed == origin:
			return true
		case strings.HasSuffix(allowed, "*") && strings.HasPrefix(origin, strings.TrimSuffix(allowed, "*")):
			return true
		}
	}
	return false
}
