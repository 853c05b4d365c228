package site

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"wedding-site/pkg/locale"
	"wedding-site/pkg/middleware"
	"wedding-site/pkg/notify"
	"wedding-site/pkg/utils"
)

const (
	contactSent      = "Message envoyé avec succès !"
	maxNameLength    = 100
	maxEmailLength   = 255
	minMessageLength = 10
	maxMessageLength = 5000
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	suspiciousPattern = regexp.MustCompile(`(?i)<script|javascript:|on\w+\s*=|<iframe`)
)

// ContactRequest POST /api/contact 请求体；Website 是蜜罐字段
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Consent bool   `json:"consent"`
	Locale  string `json:"locale"`
	Website string `json:"website"`
}

// Validate returns the first user-facing validation message, or "".
func (c *ContactRequest) Validate() string {
	if c.Name == "" || c.Email == "" || c.Message == "" || !c.Consent {
		return "Tous les champs sont obligatoires et le consentement doit être accordé."
	}
	if !emailPattern.MatchString(c.Email) {
		return "Adresse email invalide."
	}
	if utf8.RuneCountInString(c.Name) > maxNameLength {
		return fmt.Sprintf("Le nom ne peut pas dépasser %d caractères.", maxNameLength)
	}
	if utf8.RuneCountInString(c.Email) > maxEmailLength {
		return fmt.Sprintf("L'email ne peut pas dépasser %d caractères.", maxEmailLength)
	}
	n := utf8.RuneCountInString(c.Message)
	if n < minMessageLength {
		return fmt.Sprintf("Le message doit contenir au moins %d caractères.", minMessageLength)
	}
	if n > maxMessageLength {
		return fmt.Sprintf("Le message ne peut pas dépasser %d caractères.", maxMessageLength)
	}
	if suspiciousPattern.MatchString(c.Name) || suspiciousPattern.MatchString(c.Message) {
		return "Contenu non autorisé détecté."
	}
	return ""
}

// ContactHandler 联系表单
type ContactHandler struct {
	*Deps
}

// NewContactHandler 创建联系表单处理器
func NewContactHandler(d *Deps) *ContactHandler {
	return &ContactHandler{Deps: d}
}

// Submit POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Corps de requête invalide")
		return
	}

	// bots filling the honeypot get a fake success
	if strings.TrimSpace(req.Website) != "" {
		h.Log.Info().Str("ip", middleware.RemoteIP(r)).Msg("contact honeypot triggered")
		utils.WriteSuccessResponse(w, map[string]string{"message": contactSent})
		return
	}

	ip := middleware.RemoteIP(r)
	if ok, retry := h.Limiter.Allow(ip); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
		utils.WriteTooManyRequestsResponse(w, "Trop de requêtes. Veuillez réessayer dans quelques minutes.")
		return
	}

	if !isStaticLocale(req.Locale) {
		req.Locale = locale.DefaultLocale
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if msg := req.Validate(); msg != "" {
		utils.WriteBadRequestResponse(w, msg)
		return
	}

	msg := notify.ContactMessage{
		Name:    utils.EscapeHTML(req.Name),
		Email:   utils.EscapeHTML(req.Email),
		Message: utils.EscapeHTML(req.Message),
		Locale:  req.Locale,
		SentAt:  h.now(),
	}

	if !h.Config.MailEnabled() {
		h.Log.Info().Str("locale", req.Locale).Msg("contact form received in demo mode")
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"message": "Message reçu (mode démo - email non envoyé car Resend non configuré)",
			"demo":    true,
		})
		return
	}

	owner, err := msg.OwnerEmail(h.sender(), h.Config.ContactEmail)
	if err != nil {
		h.Log.Error().Err(err).Msg("render contact email")
		utils.WriteInternalServerErrorResponse(w, "Erreur lors de l'envoi du message.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	id, err := h.Mailer.Send(ctx, owner)
	if err != nil {
		h.Log.Error().Err(err).Msg("send contact email")
		utils.WriteInternalServerErrorResponse(w, "Erreur lors de l'envoi du message.")
		return
	}

	if confirm, err := msg.ConfirmationEmail(h.sender()); err != nil {
		h.Log.Error().Err(err).Msg("render contact confirmation")
	} else if !h.Dispatcher.Dispatch(confirm) {
		h.Log.Warn().Msg("contact confirmation dropped")
	}

	utils.WriteSuccessResponse(w, map[string]string{"message": contactSent, "id": id})
}

func isStaticLocale(code string) bool {
	for _, l := range locale.StaticLocales {
		if l == code {
			return true
		}
	}
	return false
}
