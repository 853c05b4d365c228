package database

import (
	"context"
	"fmt"
	"strings"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// rebind rewrites ? placeholders into $n for postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d dialect) schema() []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "DATETIME"
	if d == dialectPostgres {
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
	}
	r := strings.NewReplacer("{{id}}", id, "{{ts}}", ts)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS weddings (
			id {{id}},
			event_name TEXT NOT NULL,
			date TEXT NOT NULL,
			cover_message TEXT NOT NULL DEFAULT '',
			created_at {{ts}} NOT NULL,
			updated_at {{ts}} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS guests (
			id {{id}},
			token TEXT NOT NULL UNIQUE,
			name1 TEXT NOT NULL,
			name2 TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			greeting TEXT NOT NULL DEFAULT '',
			cover_message TEXT NOT NULL DEFAULT '',
			rsvp_status TEXT NOT NULL DEFAULT 'pending' CHECK (rsvp_status IN ('pending','attending','declining')),
			ask_partner_attendance BOOLEAN NOT NULL DEFAULT FALSE,
			partner_attending BOOLEAN,
			confirm_attending_solo_title TEXT NOT NULL DEFAULT '',
			confirm_attending_solo_body TEXT NOT NULL DEFAULT '',
			confirm_attending_with_partner_title TEXT NOT NULL DEFAULT '',
			confirm_attending_with_partner_body TEXT NOT NULL DEFAULT '',
			confirm_declining_title TEXT NOT NULL DEFAULT '',
			confirm_declining_body TEXT NOT NULL DEFAULT '',
			message TEXT,
			responded_at {{ts}},
			wedding_id BIGINT REFERENCES weddings(id) ON DELETE SET NULL,
			created_at {{ts}} NOT NULL,
			updated_at {{ts}} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			id {{id}},
			slug TEXT NOT NULL,
			locale TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			hide_title BOOLEAN NOT NULL DEFAULT FALSE,
			seo_title TEXT NOT NULL DEFAULT '',
			seo_description TEXT NOT NULL DEFAULT '',
			seo_image_url TEXT NOT NULL DEFAULT '',
			no_index BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (slug, locale)
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			id {{id}},
			page_id BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			identifier TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			hide_title BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS headers (
			id {{id}},
			locale TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			logo_url TEXT NOT NULL DEFAULT '',
			variant TEXT NOT NULL DEFAULT '',
			hide_language_switcher BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS nav_links (
			id {{id}},
			header_id BIGINT NOT NULL REFERENCES headers(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			custom_label TEXT NOT NULL DEFAULT '',
			page_id BIGINT REFERENCES pages(id) ON DELETE SET NULL,
			section_id BIGINT REFERENCES sections(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS locales (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_guests_wedding ON guests (wedding_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_page ON sections (page_id)`,
	}
	for i := range stmts {
		stmts[i] = r.Replace(stmts[i])
	}
	return stmts
}

var defaultLocales = []struct {
	code, name string
	isDefault  bool
}{
	{"fr", "Français", true},
	{"en", "English", false},
	{"it", "Italiano", false},
}

// Migrate 创建数据表并写入默认语言
func (s *sqlStore) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range s.dialect.schema() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM locales`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count locales: %w", err)
	}
	if count == 0 {
		for _, l := range defaultLocales {
			if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO locales (code, name, is_default) VALUES (?, ?, ?)`),
				l.code, l.name, l.isDefault); err != nil {
				return fmt.Errorf("failed to seed locale %s: %w", l.code, err)
			}
		}
	}

	return tx.Commit()
}
