package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/services"
)

type AccountHandler struct {
	accounts *services.AccountService
	timeline *services.TimelineService
}

func NewAccountHandler(accounts *services.AccountService, tl *services.TimelineService) *AccountHandler {
	return &AccountHandler{accounts: accounts, timeline: tl}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	u, err := h.accounts.Register(r.Context(), in.Email, in.Password, in.Username)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	log.Info().Str("user_id", u.UserID).Msg("account registered")
	respond.WriteJSON(w, http.StatusCreated, u)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	sess, err := h.accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respond.WriteJSON(w, http.StatusOK, sess)
}

// Logout deletes the session and discards the user's cached entries.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFrom(r.Context())
	if sess.Token != auth.LocalDevToken {
		if err := h.accounts.Logout(r.Context(), sess.Token); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	h.timeline.Forget(sess)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the session identity without its token.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFrom(r.Context())
	out := struct {
		UserID    string    `json:"userId"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		ExpiresAt time.Time `json:"expiresAt,omitzero"`
	}{sess.UserID, sess.Username, sess.Email, sess.ExpiresAt}
	respond.WriteJSON(w, http.StatusOK, out)
}
