package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/api/validate"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/export"
	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/services"
)

// EntryHandler exposes the session user's timeline entries.
type EntryHandler struct {
	svc *services.TimelineService
}

func NewEntryHandler(svc *services.TimelineService) *EntryHandler { return &EntryHandler{svc: svc} }

// ListEntries handles GET /api/entries with optional from/to (YYYY-MM-DD) bounds.
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	res, entries := h.svc.Load(r.Context(), auth.SessionFrom(r.Context()))
	if res.Success {
		entries = export.FilterRange(entries, from, to)
	}
	writeResult(w, http.StatusOK, res, entries)
}

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	res, entries := h.svc.Save(r.Context(), auth.SessionFrom(r.Context()), draft, "")
	writeResult(w, http.StatusCreated, res, entries)
}

// UpdateEntry handles PUT /api/entries/{entryId}. An id that no longer exists
// is saved as a new entry.
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	res, entries := h.svc.Save(r.Context(), auth.SessionFrom(r.Context()), draft, mux.Vars(r)["entryId"])
	writeResult(w, http.StatusOK, res, entries)
}

func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	res, entries := h.svc.Delete(r.Context(), auth.SessionFrom(r.Context()), mux.Vars(r)["entryId"])
	writeResult(w, http.StatusOK, res, entries)
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (model.EntryDraft, bool) {
	var d model.EntryDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respond.WriteBadRequest(w, "invalid json: "+err.Error())
		return d, false
	}
	return d, true
}

// dateRange reads the optional from/to query parameters.
func dateRange(w http.ResponseWriter, r *http.Request) (model.Date, model.Date, bool) {
	q := r.URL.Query()
	from, err := validate.DateParam("from", q.Get("from"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return model.Date{}, model.Date{}, false
	}
	to, err := validate.DateParam("to", q.Get("to"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return model.Date{}, model.Date{}, false
	}
	if err := validate.Range(from, to); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return model.Date{}, model.Date{}, false
	}
	return from, to, true
}
