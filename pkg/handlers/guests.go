package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wedding-site/pkg/config"
	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
	"wedding-site/pkg/rsvp"
	"wedding-site/pkg/utils"
)

// GuestsHandler 宾客相关接口
type GuestsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	rsvp   *rsvp.Service
	log    zerolog.Logger
}

// NewGuestsHandler 创建宾客处理器
func NewGuestsHandler(cfg *config.Config, db database.DatabaseInterface, log zerolog.Logger) *GuestsHandler {
	return &GuestsHandler{
		config: cfg,
		db:     db,
		rsvp:   rsvp.NewService(db, log),
		log:    log,
	}
}

// ByToken GET /api/guests/by-token/{token}
func (h *GuestsHandler) ByToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		utils.WriteBadRequestResponse(w, "Token manquant")
		return
	}
	// never issued by us: same answer as an unknown token, without a query
	if !utils.IsGuestTokenShape(token) {
		utils.WriteNotFoundResponse(w, invitationNotFound)
		return
	}

	projection, err := h.rsvp.Lookup(r.Context(), token)
	if err != nil {
		writeStoreError(w, h.log, err, invitationNotFound)
		return
	}
	utils.WriteSuccessResponse(w, projection)
}

// RSVPByToken PUT /api/guests/by-token/{token}/rsvp
func (h *GuestsHandler) RSVPByToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		utils.WriteBadRequestResponse(w, "Token manquant")
		return
	}
	// never issued by us: same answer as an unknown token, without a query
	if !utils.IsGuestTokenShape(token) {
		utils.WriteNotFoundResponse(w, invitationNotFound)
		return
	}

	var sub rsvp.Submission
	if err := utils.ParseJSONBody(r, &sub); err != nil {
		utils.WriteBadRequestResponse(w, "Corps de requête invalide")
		return
	}

	result, err := h.rsvp.SubmitRSVP(r.Context(), token, sub)
	if err != nil {
		if errors.Is(err, rsvp.ErrInvalidStatus) {
			utils.WriteBadRequestResponse(w, "Statut invalide")
			return
		}
		writeStoreError(w, h.log, err, invitationNotFound)
		return
	}
	utils.WriteSuccessResponse(w, result)
}

// List GET /api/guests?populate=wedding&limit=&weddingId=
func (h *GuestsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := database.GuestFilter{
		WithWedding: r.URL.Query().Get("populate") == "wedding",
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.WriteBadRequestResponse(w, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("weddingId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.WriteBadRequestResponse(w, "weddingId must be an integer")
			return
		}
		filter.WeddingID = &id
	}

	guests, err := h.db.ListGuests(r.Context(), filter)
	if err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteSuccessWithMeta(w, guests, map[string]int{"total": len(guests)})
}

// Create POST /api/guests
func (h *GuestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.GuestInput
	if err := utils.ParseJSONBody(r, &in); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	g := &models.Guest{}
	in.Apply(g)
	if g.Name1 == "" {
		utils.WriteValidationErrorResponse(w, "name1 is required", "name1")
		return
	}
	if !validGender(g.Gender) {
		utils.WriteValidationErrorResponse(w, "gender must be male or female", "gender")
		return
	}

	if err := h.db.CreateGuest(r.Context(), g); err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteCreatedResponse(w, g)
}

// Get GET /api/guests/{id}
func (h *GuestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		utils.WriteBadRequestResponse(w, "Invalid guest id")
		return
	}
	g, err := h.db.GetGuest(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.log, err, "Guest not found")
		return
	}
	utils.WriteSuccessResponse(w, g)
}

// Update PUT /api/guests/{id}
// A token in the body is ignored; the invitation link never changes.
func (h *GuestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		utils.WriteBadRequestResponse(w, "Invalid guest id")
		return
	}

	var in models.GuestInput
	if err := utils.ParseJSONBody(r, &in); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	g, err := h.db.GetGuest(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.log, err, "Guest not found")
		return
	}
	in.Apply(g)
	if g.Name1 == "" {
		utils.WriteValidationErrorResponse(w, "name1 is required", "name1")
		return
	}
	if !validGender(g.Gender) {
		utils.WriteValidationErrorResponse(w, "gender must be male or female", "gender")
		return
	}

	if err := h.db.UpdateGuest(r.Context(), g); err != nil {
		writeStoreError(w, h.log, err, "Guest not found")
		return
	}
	utils.WriteSuccessResponse(w, g)
}

// Delete DELETE /api/guests/{id}
func (h *GuestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		utils.WriteBadRequestResponse(w, "Invalid guest id")
		return
	}
	if err := h.db.DeleteGuest(r.Context(), id); err != nil {
		writeStoreError(w, h.log, err, "Guest not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]int64{"id": id})
}

func validGender(g string) bool {
	return g == "" || g == "male" || g == "female"
}
