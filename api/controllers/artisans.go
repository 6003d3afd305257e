package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skilledlink/skilledlink-backend/api/responses"
	"github.com/skilledlink/skilledlink-backend/api/validators"
	"github.com/skilledlink/skilledlink-backend/internal/artisans"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type upsertProfileRequest struct {
	Trade     string   `json:"trade" validate:"required"`
	Skills    []string `json:"skills,omitempty"`
	Bio       *string  `json:"bio,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Available *bool    `json:"available,omitempty"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

// ArtisanUpsertProfile creates or updates the caller's public profile.
func ArtisanUpsertProfile(svc artisans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body upsertProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Upsert(r.Context(), artisans.UpsertInput{
			UserID:    userID,
			Trade:     body.Trade,
			Skills:    body.Skills,
			Bio:       body.Bio,
			Latitude:  body.Latitude,
			Longitude: body.Longitude,
			Available: body.Available,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ArtisanMyProfile fetches the caller's own profile.
func ArtisanMyProfile(svc artisans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.GetByUserID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ArtisanProfile fetches any artisan's public profile.
func ArtisanProfile(svc artisans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseUUIDParam(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.GetByUserID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ArtisanSearch lists artisan profiles filtered by trade and availability.
func ArtisanSearch(svc artisans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		availableOnly, err := validators.ParseQueryBool(r, "available")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), artisans.SearchParams{
			Trade:         r.URL.Query().Get("trade"),
			AvailableOnly: availableOnly,
			Limit:         limit,
			Cursor:        r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ArtisanSetAvailability toggles whether the caller appears in search.
func ArtisanSetAvailability(svc artisans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body availabilityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.SetAvailability(r.Context(), userID, body.Available)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
