package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skilledlink/skilledlink-backend/api/middleware"
	"github.com/skilledlink/skilledlink-backend/api/responses"
	"github.com/skilledlink/skilledlink-backend/api/validators"
	"github.com/skilledlink/skilledlink-backend/internal/issues"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type reportIssueRequest struct {
	BookingID   *string `json:"bookingId,omitempty"`
	Category    string  `json:"category" validate:"required"`
	Subject     string  `json:"subject" validate:"required"`
	Description string  `json:"description" validate:"required"`
	EvidenceURL *string `json:"evidenceUrl,omitempty"`
}

type issueTransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// IssueReport files a support complaint for the caller.
func IssueReport(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reporterID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reportIssueRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := issues.ReportInput{
			ReporterID:  reporterID,
			Category:    body.Category,
			Subject:     body.Subject,
			Description: body.Description,
			EvidenceURL: body.EvidenceURL,
		}
		if body.BookingID != nil {
			bookingID, parseErr := validators.ParseUUIDParam(*body.BookingID, "bookingId")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.BookingID = &bookingID
		}

		issue, err := svc.Report(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, issue)
	}
}

// IssueList pages through the caller's own issues.
func IssueList(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reporterID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listIssues(svc, logg, &reporterID)(w, r)
	}
}

// IssueDetail fetches one issue, scoped to its reporter unless the caller is
// an admin.
func IssueDetail(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		issueID, err := validators.ParseUUIDParam(chi.URLParam(r, "issueId"), "issueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isAdmin := middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin)
		issue, err := svc.Get(r.Context(), issueID, userID, isAdmin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, issue)
	}
}

// AdminIssueList pages through every reporter's issues.
func AdminIssueList(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return listIssues(svc, logg, nil)
}

// AdminIssueTransition moves an issue through the support workflow.
func AdminIssueTransition(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, err := validators.ParseUUIDParam(chi.URLParam(r, "issueId"), "issueId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body issueTransitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseIssueStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid issue status"))
			return
		}

		issue, err := svc.Transition(r.Context(), issueID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, issue)
	}
}

func listIssues(svc issues.Service, logg *logger.Logger, reporterID *uuid.UUID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), issues.ListParams{
			ReporterID: reporterID,
			Status:     r.URL.Query().Get("status"),
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
