package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wedding-site/pkg/locale"
	"wedding-site/pkg/models"
	"wedding-site/pkg/navigation"
	"wedding-site/pkg/seo"
	"wedding-site/pkg/utils"
)

// PagePayload is everything a page renderer needs.
type PagePayload struct {
	Locale string       `json:"locale"`
	Page   PageView     `json:"page"`
	Header *HeaderView  `json:"header"`
	SEO    seo.Metadata `json:"seo"`
	Draft  bool         `json:"draft,omitempty"`
}

// PageView 页面正文
type PageView struct {
	Slug      string           `json:"slug"`
	Title     string           `json:"title"`
	HideTitle bool             `json:"hideTitle"`
	Sections  []models.Section `json:"sections"`
}

// HeaderView 渲染后的站点头部
type HeaderView struct {
	Title                string            `json:"title"`
	Logo                 string            `json:"logo,omitempty"`
	Variant              string            `json:"variant,omitempty"`
	HideLanguageSwitcher bool              `json:"hideLanguageSwitcher"`
	Links                []navigation.Link `json:"links"`
}

// PagesHandler 页面数据
type PagesHandler struct {
	*Deps
}

// NewPagesHandler 创建页面处理器
func NewPagesHandler(d *Deps) *PagesHandler {
	return &PagesHandler{Deps: d}
}

// Home GET /{locale}
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "locale"), seo.HomeSlug)
}

// Page GET /{locale}/{slug}
func (h *PagesHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "locale"), chi.URLParam(r, "slug"))
}

func (h *PagesHandler) serve(w http.ResponseWriter, r *http.Request, loc, slug string) {
	ctx := r.Context()
	sup := h.Locales.Supported(ctx)
	if !sup.Contains(loc) {
		utils.WriteNotFoundResponse(w, "Page not found")
		return
	}

	// every locale at once: the current one, the redirect fallbacks and the hreflang set
	pages, err := h.CMS.FindPages(ctx, slug, "")
	if err != nil {
		h.Log.Error().Err(err).Str("slug", slug).Msg("fetch page")
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Content unavailable")
		return
	}

	page, published := pickPage(pages, loc, sup)
	if page == nil {
		if target := fallbackLocale(pages, loc, sup); target != "" {
			http.Redirect(w, r, seo.Path(target, slug), http.StatusTemporaryRedirect)
			return
		}
		utils.WriteNotFoundResponse(w, "Page not found")
		return
	}

	payload := PagePayload{
		Locale: loc,
		Page: PageView{
			Slug:      page.Slug,
			Title:     page.Title,
			HideTitle: page.HideTitle,
			Sections:  page.Sections,
		},
		SEO:   h.SEO.Page(*page, published, sup.DefaultLocale),
		Draft: r.URL.Query().Get("draft") == "true",
	}
	if payload.Page.Sections == nil {
		payload.Page.Sections = []models.Section{}
	}
	if hdr := h.Nav.Header(ctx, loc); hdr != nil {
		payload.Header = &HeaderView{
			Title:                hdr.Title,
			Logo:                 hdr.LogoURL,
			Variant:              hdr.Variant,
			HideLanguageSwitcher: hdr.HideLanguageSwitcher,
			Links:                navigation.Links(loc, hdr.Navigation),
		}
	}

	utils.WriteSuccessResponse(w, payload)
}

// pickPage returns the page in loc plus every supported locale the slug is
// published in.
func pickPage(pages []models.Page, loc string, sup locale.Supported) (*models.Page, []string) {
	var found *models.Page
	var published []string
	for i := range pages {
		p := &pages[i]
		if sup.Contains(p.Locale) && !containsString(published, p.Locale) {
			published = append(published, p.Locale)
		}
		if found == nil && p.Locale == loc {
			found = p
		}
	}
	return found, published
}

// fallbackLocale prefers the default locale, then any locale the page exists in.
func fallbackLocale(pages []models.Page, loc string, sup locale.Supported) string {
	if loc != sup.DefaultLocale {
		for _, p := range pages {
			if p.Locale == sup.DefaultLocale {
				return p.Locale
			}
		}
	}
	for _, p := range pages {
		if p.Locale != loc && p.Locale != "" {
			return p.Locale
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
