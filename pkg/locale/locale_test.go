package locale

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"wedding-site/pkg/models"
)

type stubSource struct {
	locales []models.Locale
	err     error
	calls   int
}

func (s *stubSource) Locales(ctx context.Context) ([]models.Locale, error) {
	s.calls++
	return s.locales, s.err
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		remote []models.Locale
		want   Supported
	}{
		{
			name: "empty remote falls back to static",
			want: Supported{Locales: []string{"fr", "en", "it"}, DefaultLocale: "fr"},
		},
		{
			name:   "intersection keeps remote order",
			remote: []models.Locale{{Code: "it"}, {Code: "de"}, {Code: "en", IsDefault: true}},
			want:   Supported{Locales: []string{"it", "en"}, DefaultLocale: "en"},
		},
		{
			name:   "empty intersection falls back to static",
			remote: []models.Locale{{Code: "de", IsDefault: true}, {Code: "es"}},
			want:   Supported{Locales: []string{"fr", "en", "it"}, DefaultLocale: "fr"},
		},
		{
			name:   "default outside list is ignored",
			remote: []models.Locale{{Code: "en"}, {Code: "de", IsDefault: true}},
			want:   Supported{Locales: []string{"en"}, DefaultLocale: "fr"},
		},
		{
			name:   "duplicates removed",
			remote: []models.Locale{{Code: "fr"}, {Code: "fr"}, {Code: " en "}},
			want:   Supported{Locales: []string{"fr", "en"}, DefaultLocale: "fr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.remote))
		})
	}
}

func TestResolver_CachesAndFallsBack(t *testing.T) {
	src := &stubSource{locales: []models.Locale{{Code: "en", IsDefault: true}, {Code: "fr"}}}
	r := NewResolver(src, time.Hour, zerolog.Nop())
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	got := r.Supported(context.Background())
	assert.Equal(t, "en", got.DefaultLocale)
	r.Supported(context.Background())
	assert.Equal(t, 1, src.calls, "second call served from cache")

	now = now.Add(2 * time.Hour)
	src.err = errors.New("cms down")
	stale := r.Supported(context.Background())
	assert.Equal(t, got, stale, "stale copy served on failure")

	r.Invalidate()
	fallback := r.Supported(context.Background())
	assert.Equal(t, Supported{Locales: StaticLocales, DefaultLocale: DefaultLocale}, fallback)
}

func TestFirstSegment(t *testing.T) {
	assert.Equal(t, "", FirstSegment("/"))
	assert.Equal(t, "fr", FirstSegment("/fr"))
	assert.Equal(t, "fr", FirstSegment("/fr/programme"))
	assert.Equal(t, "xx", FirstSegment("/xx/"))
}
