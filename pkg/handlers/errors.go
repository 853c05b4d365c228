package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"wedding-site/pkg/database"
	"wedding-site/pkg/utils"
)

// invitationNotFound is the single message for unknown or empty tokens,
// so the response never reveals which tokens exist.
const invitationNotFound = "Invitation introuvable"

// writeStoreError maps store errors to responses. Unexpected errors are logged
// and answered with a generic message.
func writeStoreError(w http.ResponseWriter, log zerolog.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		utils.WriteNotFoundResponse(w, notFound)
	case errors.Is(err, database.ErrConflict):
		utils.WriteConflictResponse(w, "Resource already exists")
	default:
		log.Error().Err(err).Msg("store operation failed")
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
	}
}

// idParam 解析路径中的数字 id
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
