package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/pkg/models"
)

func newTestStore(t *testing.T) DatabaseInterface {
	t.Helper()
	ctx := context.Background()
	db, err := NewSQLiteDatabase(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })
	return db
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }

func TestRebind(t *testing.T) {
	q := "SELECT * FROM guests WHERE id = ? AND token = ?"
	assert.Equal(t, q, dialectSQLite.rebind(q))
	assert.Equal(t, "SELECT * FROM guests WHERE id = $1 AND token = $2", dialectPostgres.rebind(q))
}

func TestAddConnectionParams(t *testing.T) {
	assert.Equal(t, "postgres://h/db?connect_timeout=10", addConnectionParams("postgres://h/db", "connect_timeout=10"))
	assert.Equal(t, "postgres://h/db?a=1&connect_timeout=10", addConnectionParams("postgres://h/db?a=1", "connect_timeout=10"))
	assert.Equal(t, "host=h dbname=db sslmode=require connect_timeout=10",
		addConnectionParams("host=h dbname=db", "sslmode=require&connect_timeout=10"))
}

func TestMigrate_SeedsLocalesOnce(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	locales, err := db.ListLocales(ctx)
	require.NoError(t, err)
	require.Len(t, locales, 3)
	assert.Equal(t, "fr", locales[0].Code)
	assert.True(t, locales[0].IsDefault)
}

func TestCreateGuest_GeneratesTokenAndPending(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	w := &models.Wedding{EventName: "Léa & Marc", Date: "2026-06-20", CoverMessage: "Bienvenue"}
	require.NoError(t, db.CreateWedding(ctx, w))

	g := &models.Guest{Name1: "Léa", Name2: "Marc", Token: "client-supplied", WeddingID: &w.ID}
	require.NoError(t, db.CreateGuest(ctx, g))

	assert.NotZero(t, g.ID)
	assert.NotEqual(t, "client-supplied", g.Token)
	assert.Equal(t, models.RSVPPending, g.RSVPStatus)

	got, err := db.GetGuestByToken(ctx, g.Token, true)
	require.NoError(t, err)
	assert.Equal(t, "Léa", got.Name1)
	assert.Equal(t, models.RSVPPending, got.RSVPStatus)
	assert.Nil(t, got.PartnerAttending)
	assert.Nil(t, got.Message)
	require.NotNil(t, got.Wedding)
	assert.Equal(t, "Léa & Marc", got.Wedding.EventName)
}

func TestGetGuestByToken_Unknown(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	_, err := db.GetGuestByToken(ctx, "does-not-exist", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetGuestByToken(ctx, "", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordRSVP_Overwrites(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	g := &models.Guest{Name1: "Anna", Name2: "Paul", AskPartnerAttendance: true}
	require.NoError(t, db.CreateGuest(ctx, g))

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.RecordRSVP(ctx, g.ID, RSVPUpdate{
		Status:           models.RSVPAttending,
		PartnerAttending: boolPtr(true),
		Message:          strPtr("hi"),
		RespondedAt:      first,
	}))

	second := first.Add(time.Hour)
	require.NoError(t, db.RecordRSVP(ctx, g.ID, RSVPUpdate{
		Status:      models.RSVPDeclining,
		RespondedAt: second,
	}))

	got, err := db.GetGuest(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RSVPDeclining, got.RSVPStatus)
	assert.Nil(t, got.PartnerAttending)
	assert.Nil(t, got.Message)
	require.NotNil(t, got.RespondedAt)
	assert.True(t, second.Equal(*got.RespondedAt))
}

func TestRecordRSVP_UnknownGuest(t *testing.T) {
	db := newTestStore(t)
	err := db.RecordRSVP(context.Background(), 999, RSVPUpdate{Status: models.RSVPAttending, RespondedAt: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGuest_EmptyStatusBecomesPending(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	g := &models.Guest{Name1: "Zoé", RSVPStatus: models.RSVPAttending}
	require.NoError(t, db.CreateGuest(ctx, g))
	token := g.Token

	g.RSVPStatus = ""
	g.Token = "rotated"
	require.NoError(t, db.UpdateGuest(ctx, g))

	got, err := db.GetGuest(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RSVPPending, got.RSVPStatus)
	assert.Equal(t, token, got.Token, "token is immutable")
}

func TestListAndDeleteGuests(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	w := &models.Wedding{EventName: "W", Date: "2026-09-12"}
	require.NoError(t, db.CreateWedding(ctx, w))
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, db.CreateGuest(ctx, &models.Guest{Name1: name, WeddingID: int64Ptr(w.ID)}))
	}

	all, err := db.ListGuests(ctx, GuestFilter{WithWedding: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.NotNil(t, all[0].Wedding)

	limited, err := db.ListGuests(ctx, GuestFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, db.DeleteGuest(ctx, all[0].ID))
	assert.ErrorIs(t, db.DeleteGuest(ctx, all[0].ID), ErrNotFound)
}

func TestPagesAndHeader(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	home := &models.Page{Slug: "home", Locale: "fr", Title: "Accueil", Sections: []models.Section{
		{Identifier: "contact", Title: "Nous contacter", Order: 2},
		{Identifier: "intro", Title: "Introduction", Order: 1},
	}}
	require.NoError(t, db.CreatePage(ctx, home))
	assert.ErrorIs(t, db.CreatePage(ctx, &models.Page{Slug: "home", Locale: "fr"}), ErrConflict)

	pages, err := db.FindPages(ctx, PageFilter{Slug: "home", Locale: "fr", WithSections: true})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Sections, 2)
	assert.Equal(t, "intro", pages[0].Sections[0].Identifier)

	contactID := home.Sections[0].ID
	_, err = db.SaveHeader(ctx, models.HeaderInput{
		Locale: "fr",
		Title:  "Léa & Marc",
		Navigation: []models.NavLinkInput{
			{CustomLabel: "Accueil", PageID: &home.ID},
			{CustomLabel: "Contact", PageID: &home.ID, SectionID: &contactID},
		},
	})
	require.NoError(t, err)

	pageNav, err := db.GetHeader(ctx, "fr", PopulatePage)
	require.NoError(t, err)
	require.Len(t, pageNav.Navigation, 2)
	assert.NotNil(t, pageNav.Navigation[1].Page)
	assert.Nil(t, pageNav.Navigation[1].Section)

	sectionNav, err := db.GetHeader(ctx, "fr", PopulateSection)
	require.NoError(t, err)
	assert.Nil(t, sectionNav.Navigation[1].Page)
	require.NotNil(t, sectionNav.Navigation[1].Section)
	assert.Equal(t, "contact", sectionNav.Navigation[1].Section.Identifier)

	_, err = db.GetHeader(ctx, "it", PopulateAll)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertLocale_SingleDefault(t *testing.T) {
	db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertLocale(ctx, models.Locale{Code: "en", Name: "English", IsDefault: true}))
	locales, err := db.ListLocales(ctx)
	require.NoError(t, err)

	defaults := 0
	for _, l := range locales {
		if l.IsDefault {
			defaults++
			assert.Equal(t, "en", l.Code)
		}
	}
	assert.Equal(t, 1, defaults)
}
