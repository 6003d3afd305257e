package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skilledlink/skilledlink-backend/api/middleware"
	"github.com/skilledlink/skilledlink-backend/api/responses"
	"github.com/skilledlink/skilledlink-backend/api/validators"
	"github.com/skilledlink/skilledlink-backend/internal/bookings"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type createBookingRequest struct {
	ArtisanID   string     `json:"artisanId" validate:"required"`
	Type        string     `json:"type,omitempty"`
	Service     string     `json:"service" validate:"required"`
	Description *string    `json:"description,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Address     *string    `json:"address,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
}

type bookingDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept decline"`
}

// BookingCreate lets a customer request a job from an artisan.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artisanID, err := validators.ParseUUIDParam(body.ArtisanID, "artisanId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := bookings.CreateInput{
			CustomerID:  customerID,
			ArtisanID:   artisanID,
			Service:     body.Service,
			Description: body.Description,
			ScheduledAt: body.ScheduledAt,
			Address:     body.Address,
			Latitude:    body.Latitude,
			Longitude:   body.Longitude,
		}
		if body.Type != "" {
			parsed, parseErr := enums.ParseBookingType(body.Type)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking type"))
				return
			}
			input.Type = parsed
		}

		booking, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, booking)
	}
}

// BookingList returns the caller's bookings, scoped by their market side.
func BookingList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := bookings.ListParams{
			Status: r.URL.Query().Get("status"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}
		switch middleware.RoleFromContext(r.Context()) {
		case string(enums.UserRoleArtisan):
			params.ArtisanID = &userID
		default:
			params.CustomerID = &userID
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BookingDetail fetches a single booking visible to the caller.
func BookingDetail(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.ParseUUIDParam(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), bookingID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// BookingDecision records the artisan's accept or decline.
func BookingDecision(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artisanID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.ParseUUIDParam(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bookingDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Decide(r.Context(), bookings.DecideInput{
			BookingID: bookingID,
			ArtisanID: artisanID,
			Decision:  bookings.Decision(body.Decision),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// BookingComplete lets the customer confirm the job finished.
func BookingComplete(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.ParseUUIDParam(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Complete(r.Context(), bookingID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// BookingCancel lets either party cancel before completion.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.ParseUUIDParam(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Cancel(r.Context(), bookingID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// BookingDelete removes a booking from the artisan's history.
func BookingDelete(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artisanID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.ParseUUIDParam(chi.URLParam(r, "bookingId"), "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), bookingID, artisanID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
