package api

import (
	"net/http"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/lookup"
)

type LookupHandler struct {
	catalog *lookup.Catalog
}

func NewLookupHandler(c *lookup.Catalog) *LookupHandler { return &LookupHandler{catalog: c} }

func (h *LookupHandler) ListClients(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.catalog.Clients())
}

func (h *LookupHandler) ListTasks(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.catalog.Tasks())
}
