package site

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wedding-site/pkg/utils"
)

// OpsHandler 缓存刷新、预览、站点地图等运维接口
type OpsHandler struct {
	*Deps
}

// NewOpsHandler 创建运维处理器
func NewOpsHandler(d *Deps) *OpsHandler {
	return &OpsHandler{Deps: d}
}

// ListLocales GET /api/locales
func (h *OpsHandler) ListLocales(w http.ResponseWriter, r *http.Request) {
	sup := h.Locales.Supported(r.Context())
	w.Header().Set("Cache-Control", "public, max-age=60, stale-while-revalidate=3600")
	utils.WriteRawJSON(w, http.StatusOK, sup)
}

// Revalidate POST /api/revalidate
//
// The secret is read from X-Webhook-Secret, then from the JSON body. A
// X-Webhook-Signature header (hex HMAC-SHA256 of the body) is accepted too.
func (h *OpsHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteBadRequestResponse(w, "Corps de requête invalide")
		return
	}

	if want := h.Config.RevalidateSecret; want != "" {
		if !h.revalidateAuthorized(r, body, want) {
			h.Log.Warn().Str("ip", r.RemoteAddr).Msg("revalidate rejected: invalid secret")
			utils.WriteUnauthorizedResponse(w, "Invalid secret")
			return
		}
	}

	h.Locales.Invalidate()
	h.CMS.InvalidatePages()
	h.Log.Info().Msg("content caches invalidated")

	utils.WriteRawJSON(w, http.StatusOK, map[string]interface{}{
		"revalidated": true,
		"now":         h.now().UnixMilli(),
	})
}

func (h *OpsHandler) revalidateAuthorized(r *http.Request, body []byte, want string) bool {
	if sig := r.Header.Get("X-Webhook-Signature"); sig != "" {
		mac := hmac.New(sha256.New, []byte(want))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(strings.TrimPrefix(sig, "sha256=")), []byte(expected))
	}

	got := r.Header.Get("X-Webhook-Secret")
	if got == "" && len(body) > 0 {
		var payload struct {
			Secret string `json:"secret"`
		}
		if json.Unmarshal(body, &payload) == nil {
			got = payload.Secret
		}
	}
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Preview GET /api/preview?secret=&url=&status=
//
// Only site-relative urls are followed.
func (h *OpsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	secret := r.URL.Query().Get("secret")
	if h.Config.PreviewSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.Config.PreviewSecret)) != 1 {
		utils.WriteUnauthorizedResponse(w, "Invalid token")
		return
	}

	target, ok := localPath(r.URL.Query().Get("url"))
	if !ok {
		utils.WriteBadRequestResponse(w, "Invalid url")
		return
	}

	if r.URL.Query().Get("status") != "published" {
		u, _ := url.Parse(target)
		q := u.Query()
		q.Set("draft", "true")
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// DisablePreview GET /api/preview/disable?returnUrl=
func (h *OpsHandler) DisablePreview(w http.ResponseWriter, r *http.Request) {
	target, ok := localPath(r.URL.Query().Get("returnUrl"))
	if !ok {
		target = "/"
	}
	u, _ := url.Parse(target)
	q := u.Query()
	q.Del("draft")
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusTemporaryRedirect)
}

// localPath accepts "/path?query" and rejects absolute or protocol-relative urls.
func localPath(raw string) (string, bool) {
	if raw == "" {
		return "/", true
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return raw, true
}

// Sitemap GET /sitemap.xml
func (h *OpsHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sup := h.Locales.Supported(r.Context())
	out, err := h.SEO.Sitemap(sup.Locales, h.now())
	if err != nil {
		h.Log.Error().Err(err).Msg("render sitemap")
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Robots GET /robots.txt
func (h *OpsHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.SEO.Robots())
}

// Health GET /healthz
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cmsStatus := "ok"
	if err := h.CMS.Ping(ctx); err != nil {
		h.Log.Warn().Err(err).Msg("content service unreachable")
		cmsStatus = "unreachable"
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status": "ok",
		"cms":    cmsStatus,
		"time":   h.now().UTC().Format(time.RFC3339),
	})
}
