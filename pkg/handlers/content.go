package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/pkg/config"
	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
	"wedding-site/pkg/utils"
)

// ContentHandler 页面、头部与语言接口
type ContentHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	log    zerolog.Logger
}

// NewContentHandler 创建内容处理器
func NewContentHandler(cfg *config.Config, db database.DatabaseInterface, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{config: cfg, db: db, log: log}
}

// FindPages GET /api/pages?slug=&locale=&populate=sections
func (h *ContentHandler) FindPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pages, err := h.db.FindPages(r.Context(), database.PageFilter{
		Slug:         strings.TrimSpace(q.Get("slug")),
		Locale:       strings.TrimSpace(q.Get("locale")),
		WithSections: q.Get("populate") == "sections" || q.Get("populate") == "*",
	})
	if err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteSuccessResponse(w, pages)
}

// CreatePage POST /api/pages
func (h *ContentHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var in models.PageInput
	if err := utils.ParseJSONBody(r, &in); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	p := &models.Page{
		Slug:           strings.TrimSpace(in.Slug),
		Locale:         strings.TrimSpace(in.Locale),
		Title:          strings.TrimSpace(in.Title),
		HideTitle:      in.HideTitle,
		Sections:       in.Sections,
		SEOTitle:       in.SEOTitle,
		SEODescription: in.SEODescription,
		SEOImageURL:    in.SEOImageURL,
		NoIndex:        in.NoIndex,
	}
	if p.Slug == "" || p.Locale == "" {
		utils.WriteValidationErrorResponse(w, "slug and locale are required", "slug,locale")
		return
	}

	if err := h.db.CreatePage(r.Context(), p); err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	p.SortSections()
	utils.WriteCreatedResponse(w, p)
}

// GetHeader GET /api/header?locale=&populate=page|section
// The section shape is refused when HEADER_SECTION_POPULATE is off, as some
// installations do.
func (h *ContentHandler) GetHeader(w http.ResponseWriter, r *http.Request) {
	locale := utils.GetQueryParam(r, "locale", "fr")

	var populate database.NavPopulate
	switch r.URL.Query().Get("populate") {
	case "page":
		populate = database.PopulatePage
	case "section":
		if !h.config.HeaderSectionPopulate {
			utils.WriteBadRequestResponse(w, "Invalid populate: navigation.section")
			return
		}
		populate = database.PopulateSection | database.PopulatePage
	case "", "*":
		populate = database.PopulateAll
	default:
		utils.WriteBadRequestResponse(w, "Invalid populate value")
		return
	}

	header, err := h.db.GetHeader(r.Context(), locale, populate)
	if err != nil {
		writeStoreError(w, h.log, err, "Header not found")
		return
	}
	utils.WriteSuccessResponse(w, header)
}

// SaveHeader PUT /api/header
func (h *ContentHandler) SaveHeader(w http.ResponseWriter, r *http.Request) {
	var in models.HeaderInput
	if err := utils.ParseJSONBody(r, &in); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	in.Locale = strings.TrimSpace(in.Locale)
	if in.Locale == "" {
		utils.WriteValidationErrorResponse(w, "locale is required", "locale")
		return
	}
	if in.Variant != "" && in.Variant != "default" && in.Variant != "stacked" {
		utils.WriteValidationErrorResponse(w, "variant must be default or stacked", "variant")
		return
	}

	header, err := h.db.SaveHeader(r.Context(), in)
	if err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteSuccessResponse(w, header)
}

// Locales GET /api/i18n/locales
func (h *ContentHandler) Locales(w http.ResponseWriter, r *http.Request) {
	locales, err := h.db.ListLocales(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteSuccessResponse(w, locales)
}

// Health GET /healthz
func (h *ContentHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		utils.WriteServiceUnavailableResponse(w, "database unavailable")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status":      "ok",
		"environment": h.config.Environment,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
