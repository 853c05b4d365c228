package navigation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wedding-site/pkg/models"
)

// Source is the content-service surface the assembler needs.
type Source interface {
	// Header returns the header with navigation populated by "page" or "section".
	Header(ctx context.Context, locale, populate string) (*models.Header, error)
	// PageSections returns the sections of the page with slug in locale.
	PageSections(ctx context.Context, slug, locale string) ([]models.Section, error)
	// AbsoluteURL resolves a CMS-relative media URL.
	AbsoluteURL(u string) string
}

// Assembler builds the merged header for a locale.
type Assembler struct {
	src Source
	log zerolog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(src Source, log zerolog.Logger) *Assembler {
	return &Assembler{src: src, log: log}
}

// Header fetches both navigation shapes concurrently and merges them.
// A failed section fetch is tolerated; nil is returned only when both fail.
func (a *Assembler) Header(ctx context.Context, locale string) *models.Header {
	var pageHeader, sectionHeader *models.Header

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := a.src.Header(gctx, locale, "page")
		if err != nil {
			a.log.Warn().Err(err).Str("locale", locale).Msg("header page navigation unavailable")
			return nil
		}
		pageHeader = h
		return nil
	})
	g.Go(func() error {
		h, err := a.src.Header(gctx, locale, "section")
		if err != nil {
			a.log.Debug().Err(err).Str("locale", locale).Msg("header section navigation unavailable")
			return nil
		}
		sectionHeader = h
		return nil
	})
	_ = g.Wait()

	if pageHeader == nil && sectionHeader == nil {
		return nil
	}

	out := models.Header{}
	var pageNav, sectionNav []models.NavLink
	if pageHeader != nil {
		out = *pageHeader
		pageNav = pageHeader.Navigation
	} else {
		out = *sectionHeader
	}
	if sectionHeader != nil {
		sectionNav = sectionHeader.Navigation
	}

	out.Navigation = a.Enrich(ctx, locale, Merge(pageNav, sectionNav))
	if out.LogoURL != "" {
		out.LogoURL = a.src.AbsoluteURL(out.LogoURL)
	}
	if out.Variant != "default" && out.Variant != "stacked" {
		out.Variant = ""
	}
	return &out
}

// Enrich reattaches section anchors to links that lost them, by fuzzy
// matching the link label against the target page's sections.
// Page sections are fetched at most once per slug.
func (a *Assembler) Enrich(ctx context.Context, locale string, links []models.NavLink) []models.NavLink {
	cache := make(map[string][]models.Section)

	for i := range links {
		item := &links[i]
		if item.Section != nil || item.PageSlug() == "" || strings.TrimSpace(item.CustomLabel) == "" {
			continue
		}

		slug := item.PageSlug()
		sections, ok := cache[slug]
		if !ok {
			var err error
			sections, err = a.src.PageSections(ctx, slug, locale)
			if err != nil {
				a.log.Debug().Err(err).Str("slug", slug).Msg("page sections unavailable")
				sections = nil
			}
			cache[slug] = sections
		}

		if sec := FindSection(item.CustomLabel, sections); sec != nil {
			item.Section = &models.SectionRef{ID: sec.ID, Identifier: sec.Identifier, Title: sec.Title}
		}
	}
	return links
}

// Link is a rendered header link.
type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	IsHome bool   `json:"isHome"`
}

// Links projects navigation into hrefs for locale. Entries without a page
// slug are skipped.
func Links(locale string, nav []models.NavLink) []Link {
	out := make([]Link, 0, len(nav))
	for _, item := range nav {
		slug := item.PageSlug()
		if slug == "" {
			continue
		}

		label := item.CustomLabel
		if label == "" && item.Section != nil {
			label = item.Section.Title
		}
		if label == "" {
			label = item.Page.Title
		}

		isHome := slug == "home"
		href := "/" + locale
		if !isHome {
			href += "/" + slug
		}
		if item.Section != nil && item.Section.Identifier != "" {
			href += "#" + item.Section.Identifier
		}
		out = append(out, Link{Label: label, Href: href, IsHome: isHome})
	}
	return out
}
