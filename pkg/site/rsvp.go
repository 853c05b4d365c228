package site

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wedding-site/pkg/cms"
	"wedding-site/pkg/models"
	"wedding-site/pkg/notify"
	"wedding-site/pkg/rsvp"
	"wedding-site/pkg/utils"
)

const relayFailed = "Erreur lors de la mise à jour"

// RSVPHandler relays invitation reads and RSVP writes to the content service.
type RSVPHandler struct {
	*Deps
}

// NewRSVPHandler 创建 RSVP 转发处理器
func NewRSVPHandler(d *Deps) *RSVPHandler {
	return &RSVPHandler{Deps: d}
}

// Guest GET /api/guests/by-token/{token}
func (h *RSVPHandler) Guest(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		utils.WriteBadRequestResponse(w, "Token manquant")
		return
	}

	guest, err := h.CMS.GuestByToken(r.Context(), token)
	if err != nil {
		if cms.IsNotFound(err) {
			utils.WriteNotFoundResponse(w, "Invitation introuvable")
			return
		}
		h.Log.Error().Err(err).Msg("fetch guest from content service")
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Service indisponible")
		return
	}
	utils.WriteSuccessResponse(w, guest)
}

// Submit PUT /api/rsvp/{token}
//
// The body is validated locally, forwarded, and the organizer is notified
// asynchronously once the content service accepts it.
func (h *RSVPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		utils.WriteBadRequestResponse(w, "Token manquant")
		return
	}

	var sub rsvp.Submission
	if err := utils.ParseJSONBody(r, &sub); err != nil {
		utils.WriteBadRequestResponse(w, "Corps de requête invalide")
		return
	}
	if !models.RSVPStatus(sub.Status).IsSubmittable() {
		utils.WriteBadRequestResponse(w, "Statut invalide")
		return
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, relayFailed)
		return
	}

	status, body, err := h.CMS.RelayRSVP(r.Context(), token, payload)
	if err != nil {
		h.Log.Error().Err(err).Msg("relay rsvp")
		utils.WriteErrorResponse(w, http.StatusBadGateway, relayFailed)
		return
	}
	if status >= http.StatusBadRequest {
		h.Log.Warn().Int("status", status).Str("body", string(body)).Msg("content service rejected rsvp")
		utils.WriteErrorResponse(w, status, relayFailed)
		return
	}

	var upstream struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &upstream); err != nil {
		h.Log.Warn().Err(err).Msg("decode rsvp response")
	}

	h.notifyOrganizer(token, sub)
	utils.WriteSuccessResponse(w, upstream.Data)
}

// organizerLookupTimeout bounds the guest re-read inside the notification job.
const organizerLookupTimeout = 5 * time.Second

// notifyOrganizer queues the organizer email. The guest re-read and the
// rendering run on a dispatcher worker; failures are logged there and never
// reach the guest.
func (h *RSVPHandler) notifyOrganizer(token string, sub rsvp.Submission) {
	to := h.Config.WeddingOrganizerEmail
	if to == "" {
		return
	}
	submittedAt := h.now()
	from := h.sender()

	job := func(ctx context.Context) (notify.Email, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, organizerLookupTimeout)
		defer cancel()

		guest, err := h.CMS.GuestByToken(lookupCtx, token)
		if err != nil {
			return notify.Email{}, fmt.Errorf("rsvp notification: guest lookup: %w", err)
		}

		n := notify.RSVPNotification{
			GuestName:        guest.DisplayName(),
			AskPartner:       guest.AskPartnerAttendance,
			Attending:        sub.Status == string(models.RSVPAttending),
			PartnerAttending: guest.PartnerAttending,
			RespondedAt:      submittedAt,
		}
		if guest.Name2 != nil {
			n.Name2 = *guest.Name2
		}
		if guest.Message != nil {
			n.Message = *guest.Message
		}
		if guest.RespondedAt != nil {
			n.RespondedAt = *guest.RespondedAt
		}
		if guest.Wedding != nil {
			n.EventName = guest.Wedding.EventName
		}
		return n.Email(from, to)
	}

	if !h.Dispatcher.DispatchJob("rsvp notification", job) {
		h.Log.Warn().Msg("rsvp notification dropped")
	}
}
