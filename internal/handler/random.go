package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/foodlist/internal/service"
)

// SuggestionHandler serves the random food picker.
type SuggestionHandler struct {
	suggest *service.SuggestionService
	logger  *slog.Logger
}

func NewSuggestionHandler(suggest *service.SuggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggest: suggest, logger: logger}
}

// HandleRandomPick returns one random catalog food and the principal's
// lists to add it to.
//
// HTTP: GET /api/random_pick
//
// An empty catalog is a 404 with error "catalog_empty"; the client shows
// it as a message.
func (h *SuggestionHandler) HandleRandomPick(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	suggestion, err := h.suggest.Suggest(r.Context(), userID)
	if err != nil {
		if isInternal(err) {
			h.logger.Error("random pick failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
