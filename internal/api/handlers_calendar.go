package api

import (
	"net/http"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/calendar"
	"github.com/timewise/timewise/internal/services"
)

type CalendarHandler struct {
	svc *services.TimelineService
}

func NewCalendarHandler(svc *services.TimelineService) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

type calendarResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	services.CalendarView
}

// GetCalendar handles GET /api/calendar?month=YYYY-MM; the month defaults to
// the current one.
func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	month := calendar.MonthOf(h.svc.Today())
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := calendar.ParseMonth(v)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		month = m
	}

	res, view := h.svc.Calendar(r.Context(), auth.SessionFrom(r.Context()), month)
	status := http.StatusOK
	if !res.Success {
		status = statusFor(res.Err)
	}
	respond.WriteJSON(w, status, calendarResponse{Success: res.Success, Message: res.Message, CalendarView: view})
}
