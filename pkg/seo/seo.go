// Package seo builds page metadata, hreflang alternates and the sitemap.
package seo

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"wedding-site/pkg/models"
)

// HomeSlug is served at /{locale} rather than /{locale}/home.
const HomeSlug = "home"

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// Image is the Open Graph image.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt,omitempty"`
}

// Metadata 页面 SEO 信息
type Metadata struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Canonical   string      `json:"canonical"`
	Robots      string      `json:"robots"`
	Alternates  []Alternate `json:"alternates"`
	OGImage     Image       `json:"ogImage"`
	OGLocale    string      `json:"ogLocale,omitempty"`
	SiteName    string      `json:"siteName,omitempty"`
}

// Builder 生成站点内的绝对地址与元数据
type Builder struct {
	SiteURL  string
	SiteName string
	// MediaURL resolves CMS-relative image paths; nil leaves them untouched.
	MediaURL func(string) string
}

// NewBuilder trims the trailing slash of siteURL.
func NewBuilder(siteURL, siteName string, mediaURL func(string) string) *Builder {
	if siteURL == "" {
		siteURL = "http://localhost:3000"
	}
	return &Builder{SiteURL: strings.TrimRight(siteURL, "/"), SiteName: siteName, MediaURL: mediaURL}
}

// Path returns the site path of slug in locale.
func Path(locale, slug string) string {
	if slug == "" || slug == HomeSlug {
		return "/" + locale
	}
	return "/" + locale + "/" + slug
}

// URL makes path absolute.
func (b *Builder) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.SiteURL + path
}

// Alternates lists slug in every locale plus x-default pointing at the default locale.
func (b *Builder) Alternates(slug string, locales []string, defaultLocale string) []Alternate {
	out := make([]Alternate, 0, len(locales)+1)
	for _, l := range locales {
		out = append(out, Alternate{Hreflang: l, Href: b.URL(Path(l, slug))})
	}
	return append(out, Alternate{Hreflang: "x-default", Href: b.URL(Path(defaultLocale, slug))})
}

// Page builds the metadata of p. locales are the locales p is published in.
func (b *Builder) Page(p models.Page, locales []string, defaultLocale string) Metadata {
	title := p.SEOTitle
	if title == "" {
		title = p.Title
	}
	if title == "" {
		title = b.SiteName
	}

	robots := "index, follow"
	if p.NoIndex {
		robots = "noindex, nofollow"
	}

	img := Image{URL: b.URL("/images/logo.png"), Width: 800, Height: 600, Alt: title}
	if p.SEOImageURL != "" {
		u := p.SEOImageURL
		if b.MediaURL != nil {
			u = b.MediaURL(u)
		}
		img = Image{URL: u, Width: 1200, Height: 630, Alt: title}
	}

	return Metadata{
		Title:       title,
		Description: p.SEODescription,
		Canonical:   b.URL(Path(p.Locale, p.Slug)),
		Robots:      robots,
		Alternates:  b.Alternates(p.Slug, locales, defaultLocale),
		OGImage:     img,
		OGLocale:    p.Locale,
		SiteName:    b.SiteName,
	}
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
}

// Sitemap renders the root URL and one entry per locale.
func (b *Builder) Sitemap(locales []string, now time.Time) ([]byte, error) {
	mod := now.UTC().Format("2006-01-02")
	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{Loc: b.URL("/"), LastMod: mod, ChangeFreq: "monthly"})
	for _, l := range locales {
		set.URLs = append(set.URLs, sitemapURL{Loc: b.URL(Path(l, HomeSlug)), LastMod: mod, ChangeFreq: "monthly"})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots renders robots.txt. Admin and API paths are never crawled.
func (b *Builder) Robots() string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	sb.WriteString("Allow: /\n")
	sb.WriteString("Disallow: /admin\n")
	sb.WriteString("Disallow: /api/\n")
	sb.WriteString("Disallow: /invitation/\n")
	fmt.Fprintf(&sb, "\nSitemap: %s\n", b.URL("/sitemap.xml"))
	return sb.String()
}
