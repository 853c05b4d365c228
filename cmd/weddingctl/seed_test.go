package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
)

func newTestDB(t *testing.T) database.DatabaseInterface {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewSQLiteDatabase(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplySeed(t *testing.T) {
	f, err := os.Open("testdata/seed.yaml")
	require.NoError(t, err)
	defer f.Close()

	seed, err := loadSeed(f)
	require.NoError(t, err)

	db := newTestDB(t)
	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, applySeed(ctx, db, seed, &out))
	assert.Contains(t, out.String(), "seeded 2 locales, 1 weddings, 2 guests, 2 pages, 1 headers")

	guests, err := db.ListGuests(ctx, database.GuestFilter{WithWedding: true})
	require.NoError(t, err)
	require.Len(t, guests, 2)
	for _, g := range guests {
		assert.Equal(t, models.RSVPPending, g.RSVPStatus)
		assert.NotEmpty(t, g.Token)
		assert.Contains(t, out.String(), g.Token)
		require.NotNil(t, g.Wedding)
		assert.Equal(t, "Mariage d'Alice et Bob", g.Wedding.EventName)
	}

	pages, err := db.FindPages(ctx, database.PageFilter{Slug: "home", Locale: "fr", WithSections: true})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Sections, 2)
	assert.Equal(t, "lieu", pages[0].Sections[0].Identifier)

	header, err := db.GetHeader(ctx, "fr", database.PopulateAll)
	require.NoError(t, err)
	require.Len(t, header.Navigation, 2)
	assert.Nil(t, header.Navigation[0].Section)
	require.NotNil(t, header.Navigation[1].Section)
	assert.Equal(t, "programme", header.Navigation[1].Section.Identifier)
}

func TestApplySeed_UnknownReferences(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "guest wedding",
			yaml: "guests:\n  - name1: Alice\n    wedding: nope\n",
			want: `unknown wedding "nope"`,
		},
		{
			name: "header page",
			yaml: "headers:\n  - locale: fr\n    title: T\n    navigation:\n      - label: X\n        page: missing\n",
			want: `unknown page "missing"`,
		},
		{
			name: "wedding date",
			yaml: "weddings:\n  - key: w\n    eventName: W\n    date: 12/09/2026\n",
			want: "date must be YYYY-MM-DD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, err := loadSeed(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			err = applySeed(context.Background(), newTestDB(t), seed, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSeed_RejectsUnknownFields(t *testing.T) {
	_, err := loadSeed(strings.NewReader("guests:\n  - name: Alice\n"))
	assert.Error(t, err)
}
