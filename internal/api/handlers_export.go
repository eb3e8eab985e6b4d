package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/export"
	"github.com/timewise/timewise/internal/services"
)

type ExportHandler struct {
	svc *services.TimelineService
}

func NewExportHandler(svc *services.TimelineService) *ExportHandler { return &ExportHandler{svc: svc} }

// Export handles GET /api/export?format=csv|tsv&from=&to= and answers with a
// file download.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	sess := auth.SessionFrom(r.Context())
	res, out, err := h.svc.Export(r.Context(), sess, f, from, to)
	if err != nil {
		if !res.Success {
			writeResult(w, http.StatusOK, res, nil)
			return
		}
		writeErr(w, r, err)
		return
	}
	log.Info().Str("user_id", sess.UserID).Str("format", string(f)).Int("bytes", len(out.Body)).Msg("entries exported")
	respond.WriteAttachment(w, out.Filename, out.ContentType, out.Body)
}
