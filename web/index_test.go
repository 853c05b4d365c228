package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	content "wedding-site/api"
	"wedding-site/pkg/config"
	"wedding-site/pkg/database"
	"wedding-site/pkg/locale"
	"wedding-site/pkg/middleware"
	"wedding-site/pkg/models"
	"wedding-site/pkg/site"
	"wedding-site/pkg/utils"
)

type testWeb struct {
	t      *testing.T
	router http.Handler
	guest  models.Guest
}

func newTestWeb(t *testing.T) *testWeb {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDatabase(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })

	contentCfg := &config.Config{Environment: "test", JWTSecret: "content-secret", HeaderSectionPopulate: true}
	srv := httptest.NewServer(content.NewRouter(contentCfg, db, zerolog.Nop()))
	t.Cleanup(srv.Close)
	apiToken, err := utils.NewJWTService(contentCfg.JWTSecret).IssueAPIToken("web")
	require.NoError(t, err)

	guest := models.Guest{Name1: "Alice"}
	require.NoError(t, db.CreateGuest(ctx, &guest))
	require.NoError(t, db.CreatePage(ctx, &models.Page{Slug: "home", Locale: "fr", Title: "Accueil"}))
	require.NoError(t, db.CreatePage(ctx, &models.Page{Slug: "home", Locale: "en", Title: "Home"}))

	cfg := &config.Config{
		Environment:       "test",
		JWTSecret:         "web-secret",
		APIToken:          apiToken,
		CMSURL:            srv.URL,
		AdminSecret:       "open-sesame",
		SiteURL:           "https://example.test",
		SiteName:          "Mariage",
		ClientURL:         "https://example.test",
		ContactRateLimit:  3,
		ContactRateWindow: 5 * time.Minute,
		LocalesCacheTTL:   time.Hour,
	}
	deps := site.NewDeps(cfg, zerolog.Nop())
	t.Cleanup(func() { _ = deps.Dispatcher.Close(context.Background()) })

	return &testWeb{t: t, router: NewRouter(deps), guest: guest}
}

func (w *testWeb) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	w.router.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRootRedirectsToDefaultLocale(t *testing.T) {
	w := newTestWeb(t)

	rec := w.do(httptest.NewRequest(http.MethodGet, "/?utm_source=mail", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/fr?utm_source=mail", rec.Header().Get("Location"))

	c := cookieNamed(rec, locale.CookieName)
	require.NotNil(t, c)
	assert.Equal(t, "fr", c.Value)
}

func TestLocalePageSetsPreferenceAndCSP(t *testing.T) {
	w := newTestWeb(t)

	rec := w.do(httptest.NewRequest(http.MethodGet, "/en", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	c := cookieNamed(rec, locale.CookieName)
	require.NotNil(t, c)
	assert.Equal(t, "en", c.Value)

	// an existing preference is left alone
	req := httptest.NewRequest(http.MethodGet, "/en", nil)
	req.AddCookie(&http.Cookie{Name: locale.CookieName, Value: "fr"})
	rec = w.do(req)
	assert.Nil(t, cookieNamed(rec, locale.CookieName))
}

func TestAdminInvitationsRequireSession(t *testing.T) {
	w := newTestWeb(t)

	rec := w.do(httptest.NewRequest(http.MethodGet, "/api/admin/invitations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/invitations", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookieName, Value: "open-sesame"})
	rec = w.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "raw secret is not a session")

	login := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"secret":"open-sesame"}`))
	login.Header.Set("Content-Type", "application/json")
	rec = w.do(login)
	require.Equal(t, http.StatusOK, rec.Code)
	session := cookieNamed(rec, middleware.AdminCookieName)
	require.NotNil(t, session)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/invitations", nil)
	req.AddCookie(session)
	rec = w.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data, 1)
}

func TestAdminLoginIsThrottled(t *testing.T) {
	w := newTestWeb(t)

	attempt := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"secret":"guess"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "198.51.100.20")
		return w.do(req).Code
	}
	for i := 0; i < site.LoginAttempts; i++ {
		require.Equal(t, http.StatusUnauthorized, attempt())
	}
	assert.Equal(t, http.StatusTooManyRequests, attempt())
}

func TestRSVPRelayRoutes(t *testing.T) {
	w := newTestWeb(t)

	for _, path := range []string{
		"/api/rsvp/" + w.guest.Token,
		"/api/guests/by-token/" + w.guest.Token + "/rsvp",
	} {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"status":"declining"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := w.do(req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := w.do(httptest.NewRequest(http.MethodGet, "/api/guests/by-token/"+w.guest.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"declining"`)
}

func TestContactRequiresJSON(t *testing.T) {
	w := newTestWeb(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := w.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	w := newTestWeb(t)

	rec := w.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
