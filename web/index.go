package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wedding-site/pkg/config"
	"wedding-site/pkg/logger"
	customMiddleware "wedding-site/pkg/middleware"
	"wedding-site/pkg/site"
	"wedding-site/pkg/utils"
)

var (
	routerOnce sync.Once
	router     http.Handler
)

// Handler 是展示服务的Vercel函数入口
// 依赖在进程内只构建一次，locale 与页面缓存跨请求复用
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	routerOnce.Do(func() {
		router = NewRouter(site.NewDeps(cfg, logger.New(cfg, "web")))
	})
	router.ServeHTTP(w, r)
}

// NewRouter builds the presentation service router.
func NewRouter(d *site.Deps) *chi.Mux {
	r := chi.NewRouter()
	setupMiddleware(r, d)
	setupRoutes(r, d)
	return r
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, d *site.Deps) {
	cfg := d.Config

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.RequestLogger(d.Log))
	router.Use(customMiddleware.Recovery(cfg, d.Log))

	router.Use(customMiddleware.CORS(cfg))
	router.Use(customMiddleware.CSP(cfg))
	router.Use(customMiddleware.LocaleRedirect(d.Locales, cfg.IsProduction()))

	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))
}

// setupRoutes 设置展示层路由
func setupRoutes(router *chi.Mux, d *site.Deps) {
	ops := site.NewOpsHandler(d)
	relay := site.NewRSVPHandler(d)
	contact := site.NewContactHandler(d)
	admin := site.NewAdminHandler(d)
	pages := site.NewPagesHandler(d)

	router.Get("/healthz", ops.Health)
	router.Get("/sitemap.xml", ops.Sitemap)
	router.Get("/robots.txt", ops.Robots)

	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.MaxBodySize(1 << 20))

		r.Get("/locales", ops.ListLocales)
		r.Post("/revalidate", ops.Revalidate)
		r.Get("/preview", ops.Preview)
		r.Get("/preview/disable", ops.DisablePreview)

		r.With(customMiddleware.ContentTypeJSON).Put("/rsvp/{token}", relay.Submit)
		r.Route("/guests/by-token/{token}", func(r chi.Router) {
			r.Get("/", relay.Guest)
			r.With(customMiddleware.ContentTypeJSON).Put("/rsvp", relay.Submit)
		})

		r.With(customMiddleware.ContentTypeJSON).Post("/contact", contact.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.With(customMiddleware.RateLimitByIP(d.LoginLimiter), customMiddleware.ContentTypeJSON).
				Post("/login", admin.Login)
			r.Post("/logout", admin.Logout)

			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.AdminSession(d.Tokens, d.Log))
				r.Get("/invitations", admin.Invitations)
			})
		})
	})

	router.Get("/{locale}", pages.Home)
	router.Get("/{locale}/{slug}", pages.Page)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
