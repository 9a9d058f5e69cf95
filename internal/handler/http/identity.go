package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	userCookie = "user_id"
	userHeader = "User-UUID"
)

var (
	errMissingIdentity = errors.New("a user_id cookie or User-UUID header is required")
	errInvalidIdentity = errors.New("the user id is not a valid UUID")
)

// rawIdentity prefers the cookie over the header.
func rawIdentity(r *http.Request) string {
	if c, err := r.Cookie(userCookie); err == nil && len(strings.TrimSpace(c.Value)) > 0 {
		return strings.TrimSpace(c.Value)
	}
	return strings.TrimSpace(r.Header.Get(userHeader))
}

func identity(r *http.Request) (uuid.UUID, error) {
	raw := rawIdentity(r)
	if len(raw) == 0 {
		return uuid.Nil, errMissingIdentity
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidIdentity
	}

	return id, nil
}
