package seo

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/pkg/models"
)

func TestPath(t *testing.T) {
	assert.Equal(t, "/fr", Path("fr", "home"))
	assert.Equal(t, "/fr", Path("fr", ""))
	assert.Equal(t, "/en/programme", Path("en", "programme"))
}

func TestAlternates(t *testing.T) {
	b := NewBuilder("https://mariage.example/", "Mariage", nil)

	got := b.Alternates("home", []string{"fr", "en"}, "fr")
	want := []Alternate{
		{Hreflang: "fr", Href: "https://mariage.example/fr"},
		{Hreflang: "en", Href: "https://mariage.example/en"},
		{Hreflang: "x-default", Href: "https://mariage.example/fr"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("alternates mismatch (-want +got):\n%s", diff)
	}
}

func TestPageMetadata(t *testing.T) {
	b := NewBuilder("https://mariage.example", "Mariage", func(u string) string { return "https://cms.example" + u })

	m := b.Page(models.Page{Slug: "infos", Locale: "en", Title: "Infos", SEOImageURL: "/uploads/og.jpg", NoIndex: true},
		[]string{"fr", "en"}, "fr")
	assert.Equal(t, "Infos", m.Title)
	assert.Equal(t, "https://mariage.example/en/infos", m.Canonical)
	assert.Equal(t, "noindex, nofollow", m.Robots)
	assert.Equal(t, "https://cms.example/uploads/og.jpg", m.OGImage.URL)
	assert.Equal(t, 1200, m.OGImage.Width)
	assert.Len(t, m.Alternates, 3)

	m = b.Page(models.Page{Slug: "home", Locale: "fr", SEOTitle: "Bienvenue"}, []string{"fr"}, "fr")
	assert.Equal(t, "Bienvenue", m.Title)
	assert.Equal(t, "index, follow", m.Robots)
	assert.Equal(t, "https://mariage.example/images/logo.png", m.OGImage.URL)
}

func TestSitemap(t *testing.T) {
	b := NewBuilder("https://mariage.example", "", nil)
	out, err := b.Sitemap([]string{"fr", "en"}, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, "<loc>https://mariage.example/</loc>")
	assert.Contains(t, s, "<loc>https://mariage.example/en</loc>")
	assert.Contains(t, s, "<lastmod>2026-05-01</lastmod>")
}

func TestRobots(t *testing.T) {
	r := NewBuilder("https://mariage.example", "", nil).Robots()
	assert.Contains(t, r, "Disallow: /api/")
	assert.Contains(t, r, "Sitemap: https://mariage.example/sitemap.xml")
}
