package reviews

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/pkg/db"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type bookingReader interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error)
}

// Service defines review operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Review, error)
	ListByArtisan(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo     Repository
	bookings bookingReader
	notifier notifier
}

// CreateInput captures a customer's rating of a completed booking.
type CreateInput struct {
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	Rating     int
	Comment    *string
}

// ListParams configures artisan review listings.
type ListParams struct {
	ArtisanID uuid.UUID
	Limit     int
	Cursor    string
}

// ListResult wraps the reviews with the artisan's aggregate rating.
type ListResult struct {
	Items         []models.Review `json:"items"`
	Cursor        string          `json:"cursor"`
	AverageRating float64         `json:"averageRating"`
	TotalReviews  int64           `json:"totalReviews"`
}

// NewService wires review dependencies.
func NewService(repo Repository, bookings bookingReader, notif notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if bookings == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, bookings: bookings, notifier: notif}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Review, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	booking, err := s.bookings.Find(ctx, input.BookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to customer")
	}
	if booking.Status != enums.BookingStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only completed bookings can be reviewed")
	}

	review := &models.Review{
		BookingID:  input.BookingID,
		CustomerID: input.CustomerID,
		ArtisanID:  booking.ArtisanID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		// The unique index on booking_id is the authority on double submits.
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "booking already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	_, _ = s.notifier.Notify(ctx, notifications.NotifyParams{
		UserID:   booking.ArtisanID,
		Category: enums.NotificationCategoryMessage,
		Type:     enums.NotificationTypeInfo,
		Title:    "New Review",
		Message:  fmt.Sprintf("A customer rated your %s job %d/5", booking.Service, input.Rating),
	})

	return review, nil
}

func (s *service) ListByArtisan(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ArtisanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artisan id required")
	}

	query := listReviewsParams{ArtisanID: params.ArtisanID, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByArtisan(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	agg, err := s.repo.ArtisanAggregate(ctx, params.ArtisanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{
		Items:         rows,
		Cursor:        cursor,
		AverageRating: math.Round(agg.Average*10) / 10,
		TotalReviews:  agg.Count,
	}, nil
}
