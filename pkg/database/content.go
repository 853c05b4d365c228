package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"wedding-site/pkg/models"
)

// CreatePage 创建页面及其区块
func (s *sqlStore) CreatePage(ctx context.Context, p *models.Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, s.q(`
		INSERT INTO pages (slug, locale, title, hide_title, seo_title, seo_description, seo_image_url, no_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		p.Slug, p.Locale, p.Title, p.HideTitle, p.SEOTitle, p.SEODescription, p.SEOImageURL, p.NoIndex,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("page %s/%s: %w", p.Locale, p.Slug, ErrConflict)
		}
		return fmt.Errorf("failed to create page: %w", err)
	}

	for i := range p.Sections {
		sec := &p.Sections[i]
		sec.PageID = p.ID
		err := tx.QueryRowContext(ctx, s.q(`
			INSERT INTO sections (page_id, identifier, title, sort_order, hide_title)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
			sec.PageID, sec.Identifier, sec.Title, sec.Order, sec.HideTitle,
		).Scan(&sec.ID)
		if err != nil {
			return fmt.Errorf("failed to create section %q: %w", sec.Identifier, err)
		}
	}

	return tx.Commit()
}

// FindPages 按 slug / locale 查找页面
func (s *sqlStore) FindPages(ctx context.Context, filter PageFilter) ([]models.Page, error) {
	var (
		where []string
		args  []any
	)
	if filter.Slug != "" {
		where = append(where, "slug = ?")
		args = append(args, filter.Slug)
	}
	if filter.Locale != "" {
		where = append(where, "locale = ?")
		args = append(args, filter.Locale)
	}

	query := `SELECT id, slug, locale, title, hide_title, seo_title, seo_description, seo_image_url, no_index FROM pages`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find pages: %w", err)
	}
	pages := []models.Page{}
	for rows.Next() {
		var p models.Page
		if err := rows.Scan(&p.ID, &p.Slug, &p.Locale, &p.Title, &p.HideTitle,
			&p.SEOTitle, &p.SEODescription, &p.SEOImageURL, &p.NoIndex); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if filter.WithSections {
		for i := range pages {
			sections, err := s.pageSections(ctx, pages[i].ID)
			if err != nil {
				return nil, err
			}
			pages[i].Sections = sections
		}
	}
	return pages, nil
}

func (s *sqlStore) pageSections(ctx context.Context, pageID int64) ([]models.Section, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, page_id, identifier, title, sort_order, hide_title
		FROM sections WHERE page_id = ? ORDER BY sort_order, id`), pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.ID, &sec.PageID, &sec.Identifier, &sec.Title, &sec.Order, &sec.HideTitle); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// GetHeader 获取某语言的头部及导航
// populate decides whether page refs, section refs, or both are attached to the links.
func (s *sqlStore) GetHeader(ctx context.Context, locale string, populate NavPopulate) (*models.Header, error) {
	var h models.Header
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, locale, title, logo_url, variant, hide_language_switcher FROM headers WHERE locale = ?`), locale,
	).Scan(&h.ID, &h.Locale, &h.Title, &h.LogoURL, &h.Variant, &h.HideLanguageSwitcher)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get header: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT n.id, n.custom_label, p.id, p.slug, p.title, sc.id, sc.identifier, sc.title
		FROM nav_links n
		LEFT JOIN pages p ON p.id = n.page_id
		LEFT JOIN sections sc ON sc.id = n.section_id
		WHERE n.header_id = ?
		ORDER BY n.position, n.id`), h.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load navigation: %w", err)
	}
	defer rows.Close()

	h.Navigation = []models.NavLink{}
	for rows.Next() {
		var (
			link                    models.NavLink
			pageID, sectionID       sql.NullInt64
			pageSlug, pageTitle     sql.NullString
			sectionIdent, sectTitle sql.NullString
		)
		if err := rows.Scan(&link.ID, &link.CustomLabel, &pageID, &pageSlug, &pageTitle,
			&sectionID, &sectionIdent, &sectTitle); err != nil {
			return nil, fmt.Errorf("failed to scan nav link: %w", err)
		}
		if populate&PopulatePage != 0 && pageID.Valid {
			link.Page = &models.PageRef{ID: pageID.Int64, Slug: pageSlug.String, Title: pageTitle.String}
		}
		if populate&PopulateSection != 0 && sectionID.Valid {
			link.Section = &models.SectionRef{ID: sectionID.Int64, Identifier: sectionIdent.String, Title: sectTitle.String}
		}
		h.Navigation = append(h.Navigation, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &h, nil
}

// SaveHeader 创建或替换某语言的头部与导航
func (s *sqlStore) SaveHeader(ctx context.Context, in models.HeaderInput) (*models.Header, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var headerID int64
	err = tx.QueryRowContext(ctx, s.q(`SELECT id FROM headers WHERE locale = ?`), in.Locale).Scan(&headerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, s.q(`
			INSERT INTO headers (locale, title, logo_url, variant, hide_language_switcher)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
			in.Locale, in.Title, in.LogoURL, in.Variant, in.HideLanguageSwitcher,
		).Scan(&headerID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert header: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up header: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE headers SET title = ?, logo_url = ?, variant = ?, hide_language_switcher = ? WHERE id = ?`),
			in.Title, in.LogoURL, in.Variant, in.HideLanguageSwitcher, headerID); err != nil {
			return nil, fmt.Errorf("failed to update header: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM nav_links WHERE header_id = ?`), headerID); err != nil {
			return nil, fmt.Errorf("failed to clear navigation: %w", err)
		}
	}

	for i, link := range in.Navigation {
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO nav_links (header_id, position, custom_label, page_id, section_id) VALUES (?, ?, ?, ?, ?)`),
			headerID, i, link.CustomLabel, nullInt(link.PageID), nullInt(link.SectionID)); err != nil {
			return nil, fmt.Errorf("failed to insert nav link %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit header: %w", err)
	}
	return s.GetHeader(ctx, in.Locale, PopulateAll)
}

// ListLocales 列出语言（默认语言在前）
func (s *sqlStore) ListLocales(ctx context.Context) ([]models.Locale, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, is_default FROM locales ORDER BY is_default DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}
	defer rows.Close()

	locales := []models.Locale{}
	for rows.Next() {
		var l models.Locale
		if err := rows.Scan(&l.Code, &l.Name, &l.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan locale: %w", err)
		}
		locales = append(locales, l)
	}
	return locales, rows.Err()
}

// UpsertLocale 新增或更新语言；设为默认时清除其他默认标记
func (s *sqlStore) UpsertLocale(ctx context.Context, l models.Locale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if l.IsDefault {
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE locales SET is_default = ? WHERE code <> ?`), false, l.Code); err != nil {
			return fmt.Errorf("failed to reset default locale: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO locales (code, name, is_default) VALUES (?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET name = excluded.name, is_default = excluded.is_default`),
		l.Code, l.Name, l.IsDefault); err != nil {
		return fmt.Errorf("failed to upsert locale: %w", err)
	}
	return tx.Commit()
}
