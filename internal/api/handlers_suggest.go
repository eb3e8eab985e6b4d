package api

import (
	"encoding/json"
	"net/http"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/services"
)

type SuggestHandler struct {
	svc *services.TimelineService
}

func NewSuggestHandler(svc *services.TimelineService) *SuggestHandler { return &SuggestHandler{svc: svc} }

// Suggest handles POST /api/suggestions. Provider failures yield empty lists,
// never an error status.
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CurrentEntry string `json:"currentEntry"`
		EditingID    string `json:"editingId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	out := h.svc.Suggest(r.Context(), auth.SessionFrom(r.Context()), in.CurrentEntry, in.EditingID)
	respond.WriteJSON(w, http.StatusOK, out)
}
