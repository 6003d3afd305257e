package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/skilledlink/skilledlink-backend/api/middleware"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
)

// actorID pulls the authenticated user's id out of the request context.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return id, nil
}
