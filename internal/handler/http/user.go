package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userCookieMaxAge = 30 * 24 * time.Hour

type userResponse struct {
	UserId  string `json:"userId"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) issueUser(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if c, err := r.Cookie(userCookie); err == nil {
		presented = c.Value
	}

	id, created, err := h.users.Issue(r.Context(), presented)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if created {
		http.SetCookie(w, newUserCookie(r, id))
	}

	writeJSON(w, http.StatusOK, userResponse{UserId: id.String()})
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(userCookie)
	if err != nil || len(strings.TrimSpace(c.Value)) == 0 {
		h.fail(w, r, errMissingIdentity)
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Value))
	if err != nil {
		h.fail(w, r, errInvalidIdentity)
		return
	}

	if err := h.users.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{UserId: id.String()})
}

// newUserCookie uses SameSite=None only over TLS, where Secure can be set.
func newUserCookie(r *http.Request, id uuid.UUID) *http.Cookie {
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")

	c := &http.Cookie{
		Name:     userCookie,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(userCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		c.SameSite = http.SameSiteNoneMode
	}

	return c
}
