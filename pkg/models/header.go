package models

// PageRef 导航项引用的页面
type PageRef struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// SectionRef 导航项引用的页面区块
type SectionRef struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
}

// NavLink is a single header navigation entry.
type NavLink struct {
	ID          int64       `json:"id,omitempty"`
	CustomLabel string      `json:"customLabel,omitempty"`
	Page        *PageRef    `json:"page,omitempty"`
	Section     *SectionRef `json:"section,omitempty"`
}

// PageID returns 0 when the link has no page.
func (l NavLink) PageID() int64 {
	if l.Page == nil {
		return 0
	}
	return l.Page.ID
}

// PageSlug returns "" when the link has no page.
func (l NavLink) PageSlug() string {
	if l.Page == nil {
		return ""
	}
	return l.Page.Slug
}

// Header 站点头部（按语言）
type Header struct {
	ID                   int64     `json:"id" db:"id"`
	Locale               string    `json:"locale" db:"locale"`
	Title                string    `json:"title" db:"title"`
	LogoURL              string    `json:"logoUrl,omitempty" db:"logo_url"`
	Variant              string    `json:"variant,omitempty" db:"variant"`
	HideLanguageSwitcher bool      `json:"hideLanguageSwitcher" db:"hide_language_switcher"`
	Navigation           []NavLink `json:"navigation" db:"-"`
}

// NavLinkInput 头部导航写入结构（按 id 引用）
type NavLinkInput struct {
	CustomLabel string `json:"customLabel"`
	PageID      *int64 `json:"pageId"`
	SectionID   *int64 `json:"sectionId"`
}

// HeaderInput PUT /api/header 请求体
type HeaderInput struct {
	Locale               string         `json:"locale"`
	Title                string         `json:"title"`
	LogoURL              string         `json:"logoUrl"`
	Variant              string         `json:"variant"`
	HideLanguageSwitcher bool           `json:"hideLanguageSwitcher"`
	Navigation           []NavLinkInput `json:"navigation"`
}
