package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	content "wedding-site/api"
	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and seed the default locales",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := database.NewDatabase(ctx, content.DatabaseConfig(cfg))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DBDriver)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load weddings, guests, pages, headers and locales from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		seed, err := loadSeed(f)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := database.NewDatabase(ctx, content.DatabaseConfig(cfg))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return err
		}
		return applySeed(ctx, db, seed, cmd.OutOrStdout())
	},
}

// seedFile is the YAML fixture layout. Guests and headers refer to
// weddings, pages and sections by key, slug and identifier.
type seedFile struct {
	Locales  []seedLocale  `yaml:"locales"`
	Weddings []seedWedding `yaml:"weddings"`
	Guests   []seedGuest   `yaml:"guests"`
	Pages    []seedPage    `yaml:"pages"`
	Headers  []seedHeader  `yaml:"headers"`
}

type seedLocale struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Default bool   `yaml:"default"`
}

type seedWedding struct {
	Key          string `yaml:"key"`
	EventName    string `yaml:"eventName"`
	Date         string `yaml:"date"`
	CoverMessage string `yaml:"coverMessage"`
}

type seedGuest struct {
	Name1                string `yaml:"name1"`
	Name2                string `yaml:"name2"`
	Gender               string `yaml:"gender"`
	Greeting             string `yaml:"greeting"`
	CoverMessage         string `yaml:"coverMessage"`
	AskPartnerAttendance bool   `yaml:"askPartnerAttendance"`
	Wedding              string `yaml:"wedding"`
}

type seedPage struct {
	Slug           string        `yaml:"slug"`
	Locale         string        `yaml:"locale"`
	Title          string        `yaml:"title"`
	HideTitle      bool          `yaml:"hideTitle"`
	SEOTitle       string        `yaml:"seoTitle"`
	SEODescription string        `yaml:"seoDescription"`
	SEOImageURL    string        `yaml:"seoImageUrl"`
	NoIndex        bool          `yaml:"noIndex"`
	Sections       []seedSection `yaml:"sections"`
}

type seedSection struct {
	Identifier string `yaml:"identifier"`
	Title      string `yaml:"title"`
	HideTitle  bool   `yaml:"hideTitle"`
}

type seedHeader struct {
	Locale               string        `yaml:"locale"`
	Title                string        `yaml:"title"`
	LogoURL              string        `yaml:"logoUrl"`
	Variant              string        `yaml:"variant"`
	HideLanguageSwitcher bool          `yaml:"hideLanguageSwitcher"`
	Navigation           []seedNavLink `yaml:"navigation"`
}

type seedNavLink struct {
	Label   string `yaml:"label"`
	Page    string `yaml:"page"`
	Section string `yaml:"section"`
}

func loadSeed(r io.Reader) (*seedFile, error) {
	var s seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &s, nil
}

// applySeed writes s in dependency order and prints each guest's invitation token.
func applySeed(ctx context.Context, db database.DatabaseInterface, s *seedFile, out io.Writer) error {
	for _, l := range s.Locales {
		if err := db.UpsertLocale(ctx, models.Locale{Code: l.Code, Name: l.Name, IsDefault: l.Default}); err != nil {
			return fmt.Errorf("locale %s: %w", l.Code, err)
		}
	}

	weddings := make(map[string]int64, len(s.Weddings))
	for _, sw := range s.Weddings {
		if _, err := time.Parse(time.DateOnly, sw.Date); err != nil {
			return fmt.Errorf("wedding %q: date must be YYYY-MM-DD", sw.Key)
		}
		w := &models.Wedding{EventName: sw.EventName, Date: sw.Date, CoverMessage: sw.CoverMessage}
		if err := db.CreateWedding(ctx, w); err != nil {
			return fmt.Errorf("wedding %q: %w", sw.Key, err)
		}
		weddings[sw.Key] = w.ID
	}

	for _, sg := range s.Guests {
		g := &models.Guest{
			Name1:                sg.Name1,
			Name2:                sg.Name2,
			Gender:               sg.Gender,
			Greeting:             sg.Greeting,
			CoverMessage:         sg.CoverMessage,
			AskPartnerAttendance: sg.AskPartnerAttendance,
			RSVPStatus:           models.RSVPPending,
		}
		if sg.Wedding != "" {
			id, ok := weddings[sg.Wedding]
			if !ok {
				return fmt.Errorf("guest %q: unknown wedding %q", sg.Name1, sg.Wedding)
			}
			g.WeddingID = &id
		}
		if err := db.CreateGuest(ctx, g); err != nil {
			return fmt.Errorf("guest %q: %w", sg.Name1, err)
		}
		fmt.Fprintf(out, "guest %-30s %s\n", g.DisplayName(), g.Token)
	}

	// page and section ids per locale, for header navigation
	type pageRef struct {
		id       int64
		sections map[string]int64
	}
	pages := make(map[string]pageRef)
	for _, sp := range s.Pages {
		p := &models.Page{
			Slug:           sp.Slug,
			Locale:         sp.Locale,
			Title:          sp.Title,
			HideTitle:      sp.HideTitle,
			SEOTitle:       sp.SEOTitle,
			SEODescription: sp.SEODescription,
			SEOImageURL:    sp.SEOImageURL,
			NoIndex:        sp.NoIndex,
		}
		for i, sec := range sp.Sections {
			p.Sections = append(p.Sections, models.Section{
				Identifier: sec.Identifier,
				Title:      sec.Title,
				Order:      i,
				HideTitle:  sec.HideTitle,
			})
		}
		if err := db.CreatePage(ctx, p); err != nil {
			return fmt.Errorf("page %s/%s: %w", sp.Locale, sp.Slug, err)
		}

		ref := pageRef{id: p.ID, sections: make(map[string]int64, len(p.Sections))}
		for _, sec := range p.Sections {
			ref.sections[sec.Identifier] = sec.ID
		}
		pages[sp.Locale+"/"+sp.Slug] = ref
	}

	for _, sh := range s.Headers {
		in := models.HeaderInput{
			Locale:               sh.Locale,
			Title:                sh.Title,
			LogoURL:              sh.LogoURL,
			Variant:              sh.Variant,
			HideLanguageSwitcher: sh.HideLanguageSwitcher,
		}
		for _, link := range sh.Navigation {
			nav := models.NavLinkInput{CustomLabel: link.Label}
			if link.Page != "" {
				ref, ok := pages[sh.Locale+"/"+link.Page]
				if !ok {
					return fmt.Errorf("header %s: unknown page %q", sh.Locale, link.Page)
				}
				pageID := ref.id
				nav.PageID = &pageID
				if link.Section != "" {
					sectionID, ok := ref.sections[link.Section]
					if !ok {
						return fmt.Errorf("header %s: unknown section %q on page %q", sh.Locale, link.Section, link.Page)
					}
					nav.SectionID = &sectionID
				}
			}
			in.Navigation = append(in.Navigation, nav)
		}
		if _, err := db.SaveHeader(ctx, in); err != nil {
			return fmt.Errorf("header %s: %w", sh.Locale, err)
		}
	}

	fmt.Fprintf(out, "seeded %d locales, %d weddings, %d guests, %d pages, %d headers\n",
		len(s.Locales), len(s.Weddings), len(s.Guests), len(s.Pages), len(s.Headers))
	return nil
}
