package site

import (
	"crypto/subtle"
	"net/http"
	"time"

	"wedding-site/pkg/middleware"
	"wedding-site/pkg/models"
	"wedding-site/pkg/utils"
)

// AdminSessionTTL 管理会话有效期
const AdminSessionTTL = 8 * time.Hour

// InvitationRow 管理端邀请列表的一行
type InvitationRow struct {
	models.Guest
	InvitationURL string `json:"invitationUrl"`
}

// InvitationCounts 按回复状态统计
type InvitationCounts struct {
	Total     int `json:"total"`
	Attending int `json:"attending"`
	Declining int `json:"declining"`
	Pending   int `json:"pending"`
}

// AdminHandler 管理端接口
type AdminHandler struct {
	*Deps
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(d *Deps) *AdminHandler {
	return &AdminHandler{Deps: d}
}

// Login POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Config.AdminSecret == "" {
		utils.WriteServiceUnavailableResponse(w, "Administration non configurée. Définissez ADMIN_SECRET.")
		return
	}

	var body struct {
		Secret string `json:"secret"`
	}
	if err := utils.ParseJSONBody(r, &body); err != nil {
		utils.WriteBadRequestResponse(w, "Requête invalide")
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Secret), []byte(h.Config.AdminSecret)) != 1 {
		h.Log.Warn().Str("ip", middleware.RemoteIP(r)).Msg("admin login rejected")
		utils.WriteUnauthorizedResponse(w, "Secret invalide")
		return
	}

	session, err := h.Tokens.IssueAdminSession(AdminSessionTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("issue admin session")
		utils.WriteInternalServerErrorResponse(w, "Erreur serveur")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int(AdminSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteSuccessResponse(w, map[string]bool{"authenticated": true})
}

// Logout POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteSuccessResponse(w, map[string]bool{"authenticated": false})
}

// Invitations GET /api/admin/invitations
//
// A content service failure yields an empty list, mirroring the dashboard's
// degraded view.
func (h *AdminHandler) Invitations(w http.ResponseWriter, r *http.Request) {
	guests, err := h.CMS.ListGuests(r.Context(), 1000)
	if err != nil {
		h.Log.Error().Err(err).Msg("list invitations")
		guests = nil
	}

	rows := make([]InvitationRow, 0, len(guests))
	var counts InvitationCounts
	for _, g := range guests {
		counts.Total++
		switch models.NormalizeRSVPStatus(string(g.RSVPStatus)) {
		case models.RSVPAttending:
			counts.Attending++
		case models.RSVPDeclining:
			counts.Declining++
		default:
			counts.Pending++
		}
		rows = append(rows, InvitationRow{
			Guest:         g,
			InvitationURL: h.SEO.URL("/invitation/" + g.Token),
		})
	}

	utils.WriteSuccessWithMeta(w, rows, counts)
}
