package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timewise/timewise/internal/api/recovery"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/lookup"
	"github.com/timewise/timewise/internal/services"
)

// Deps are the collaborators the HTTP API is built on.
type Deps struct {
	Accounts *services.AccountService
	Timeline *services.TimelineService
	Catalog  *lookup.Catalog
	Auth     auth.Authenticator
	Health   *HealthHandler
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(instrument)

	healthHandler := d.Health
	if healthHandler == nil {
		healthHandler = NewHealthHandler()
	}
	accountHandler := NewAccountHandler(d.Accounts, d.Timeline)
	entryHandler := NewEntryHandler(d.Timeline)
	calendarHandler := NewCalendarHandler(d.Timeline)
	exportHandler := NewExportHandler(d.Timeline)
	suggestHandler := NewSuggestHandler(d.Timeline)
	lookupHandler := NewLookupHandler(d.Catalog)

	// Public endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/api/register", accountHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/login", accountHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/clients", lookupHandler.ListClients).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks", lookupHandler.ListTasks).Methods(http.MethodGet)

	// Session endpoints
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(RequireSession(d.Auth))

	authed.HandleFunc("/logout", accountHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/me", accountHandler.Me).Methods(http.MethodGet)

	authed.HandleFunc("/entries", entryHandler.ListEntries).Methods(http.MethodGet)
	authed.HandleFunc("/entries", entryHandler.CreateEntry).Methods(http.MethodPost)
	authed.HandleFunc("/entries/{entryId}", entryHandler.UpdateEntry).Methods(http.MethodPut)
	authed.HandleFunc("/entries/{entryId}", entryHandler.DeleteEntry).Methods(http.MethodDelete)

	authed.HandleFunc("/calendar", calendarHandler.GetCalendar).Methods(http.MethodGet)
	authed.HandleFunc("/export", exportHandler.Export).Methods(http.MethodGet)
	authed.HandleFunc("/suggestions", suggestHandler.Suggest).Methods(http.MethodPost)

	return router
}
