package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wedding-site/pkg/config"
	"wedding-site/pkg/database"
	"wedding-site/pkg/handlers"
	"wedding-site/pkg/logger"
	customMiddleware "wedding-site/pkg/middleware"
	"wedding-site/pkg/utils"
)

// Handler 是Vercel函数的入口点
// 所有内容服务端点集中在一个Chi路由器中
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}
	log := logger.New(cfg, "content")

	// 进程级连接复用，首次获取时执行迁移
	db, err := database.GetDatabase(r.Context(), DatabaseConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("database unavailable")
		utils.WriteServiceUnavailableResponse(w, "Database unavailable")
		return
	}

	NewRouter(cfg, db, log).ServeHTTP(w, r)
}

// DatabaseConfig maps the application config onto the store config.
func DatabaseConfig(cfg *config.Config) database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:      cfg.DBDriver,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}
}

// NewRouter builds the content service router.
func NewRouter(cfg *config.Config, db database.DatabaseInterface, log zerolog.Logger) *chi.Mux {
	router := chi.NewRouter()
	setupMiddleware(router, cfg, log)
	setupRoutes(router, cfg, db, log)
	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, log zerolog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.RequestLogger(log))
	router.Use(customMiddleware.Recovery(cfg, log))

	router.Use(customMiddleware.CORS(cfg))
	router.Use(customMiddleware.CSP(cfg))

	// 超时中间件（Vercel函数有时间限制）
	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface, log zerolog.Logger) {
	guestsHandler := handlers.NewGuestsHandler(cfg, db, logger.Component(log, "guests"))
	weddingsHandler := handlers.NewWeddingsHandler(cfg, db, logger.Component(log, "weddings"))
	contentHandler := handlers.NewContentHandler(cfg, db, logger.Component(log, "content"))
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	router.Get("/healthz", contentHandler.Health)

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.MaxBodySize(1 << 20))

		// 公开路由：宾客通过邀请 token 访问
		r.Route("/guests/by-token/{token}", func(r chi.Router) {
			r.Get("/", guestsHandler.ByToken)
			r.With(customMiddleware.ContentTypeJSON).Put("/rsvp", guestsHandler.RSVPByToken)
		})

		r.Get("/pages", contentHandler.FindPages)
		r.Get("/header", contentHandler.GetHeader)
		r.Get("/i18n/locales", contentHandler.Locales)

		// 需要 API token 的路由
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.APITokenAuth(jwtService, log))
			r.Use(customMiddleware.ContentTypeJSON)

			r.Route("/guests", func(r chi.Router) {
				r.Get("/", guestsHandler.List)
				r.With(customMiddleware.SanitizeGuestStatus).Post("/", guestsHandler.Create)
				r.Get("/{id}", guestsHandler.Get)
				r.With(customMiddleware.SanitizeGuestStatus).Put("/{id}", guestsHandler.Update)
				r.Delete("/{id}", guestsHandler.Delete)
			})

			r.Route("/weddings", func(r chi.Router) {
				r.Get("/", weddingsHandler.List)
				r.Post("/", weddingsHandler.Create)
				r.Get("/{id}", weddingsHandler.Get)
			})

			r.Post("/pages", contentHandler.CreatePage)
			r.Put("/header", contentHandler.SaveHeader)
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
