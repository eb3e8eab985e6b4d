package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionCookie is the cookie that carries the session token for browser clients.
const SessionCookie = "timewise_session"

// ExtractToken returns the session token from an "Authorization: Bearer <token>"
// header, or from the session cookie when no header is present.
func ExtractToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Split(h, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", ErrInvalidToken
		}
		return parts[1], nil
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrMissingToken
}

// NewToken returns a fresh opaque session token.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
