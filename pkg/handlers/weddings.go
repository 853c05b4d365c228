package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/pkg/config"
	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
	"wedding-site/pkg/utils"
)

// WeddingsHandler 婚礼接口
type WeddingsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	log    zerolog.Logger
}

// NewWeddingsHandler 创建婚礼处理器
func NewWeddingsHandler(cfg *config.Config, db database.DatabaseInterface, log zerolog.Logger) *WeddingsHandler {
	return &WeddingsHandler{config: cfg, db: db, log: log}
}

// List GET /api/weddings
func (h *WeddingsHandler) List(w http.ResponseWriter, r *http.Request) {
	weddings, err := h.db.ListWeddings(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteSuccessResponse(w, weddings)
}

// Create POST /api/weddings
func (h *WeddingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.WeddingInput
	if err := utils.ParseJSONBody(r, &in); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	wedding := &models.Wedding{
		EventName:    strings.TrimSpace(in.EventName),
		Date:         strings.TrimSpace(in.Date),
		CoverMessage: strings.TrimSpace(in.CoverMessage),
	}
	if wedding.EventName == "" {
		utils.WriteValidationErrorResponse(w, "eventName is required", "eventName")
		return
	}
	if _, err := time.Parse(time.DateOnly, wedding.Date); err != nil {
		utils.WriteValidationErrorResponse(w, "date must be YYYY-MM-DD", "date")
		return
	}

	if err := h.db.CreateWedding(r.Context(), wedding); err != nil {
		writeStoreError(w, h.log, err, "")
		return
	}
	utils.WriteCreatedResponse(w, wedding)
}

// Get GET /api/weddings/{id}
func (h *WeddingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		utils.WriteBadRequestResponse(w, "Invalid wedding id")
		return
	}
	wedding, err := h.db.GetWedding(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.log, err, "Wedding not found")
		return
	}
	utils.WriteSuccessResponse(w, wedding)
}
