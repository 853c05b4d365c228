package models

import "sort"

// Page represents a localized CMS page
type Page struct {
	ID        int64     `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Locale    string    `json:"locale" db:"locale"`
	Title     string    `json:"title" db:"title"`
	HideTitle bool      `json:"hideTitle" db:"hide_title"`
	Sections  []Section `json:"sections,omitempty" db:"-"`

	// SEO
	SEOTitle       string `json:"seoTitle,omitempty" db:"seo_title"`
	SEODescription string `json:"seoDescription,omitempty" db:"seo_description"`
	SEOImageURL    string `json:"seoImageUrl,omitempty" db:"seo_image_url"`
	NoIndex        bool   `json:"noIndex" db:"no_index"`
}

// Section is an anchorable block inside a page
type Section struct {
	ID         int64  `json:"id" db:"id"`
	PageID     int64  `json:"pageId,omitempty" db:"page_id"`
	Identifier string `json:"identifier" db:"identifier"`
	Title      string `json:"title" db:"title"`
	Order      int    `json:"order" db:"sort_order"`
	HideTitle  bool   `json:"hideTitle" db:"hide_title"`
}

// SortSections orders sections by Order, keeping insertion order for ties.
func (p *Page) SortSections() {
	sort.SliceStable(p.Sections, func(i, j int) bool {
		return p.Sections[i].Order < p.Sections[j].Order
	})
}

// PageInput 创建页面请求体
type PageInput struct {
	Slug      string    `json:"slug"`
	Locale    string    `json:"locale"`
	Title     string    `json:"title"`
	HideTitle bool      `json:"hideTitle"`
	Sections  []Section `json:"sections"`

	SEOTitle       string `json:"seoTitle"`
	SEODescription string `json:"seoDescription"`
	SEOImageURL    string `json:"seoImageUrl"`
	NoIndex        bool   `json:"noIndex"`
}
