package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

// Decision is the artisan's response to a pending booking.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error)
}

type userReader interface {
	Find(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type planReader interface {
	IsPremiumActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Service defines booking lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Booking, error)
	Get(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	Decide(ctx context.Context, input DecideInput) (*models.Booking, error)
	Complete(ctx context.Context, bookingID, customerID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, bookingID, artisanID uuid.UUID) error
}

type service struct {
	repo        Repository
	tx          txRunner
	users       userReader
	plans       planReader
	notifier    notifier
	logg        *logger.Logger
	freeMonthly int
	now         func() time.Time
}

// CreateInput captures a customer's booking request.
type CreateInput struct {
	CustomerID  uuid.UUID
	ArtisanID   uuid.UUID
	Type        enums.BookingType
	Service     string
	Description *string
	ScheduledAt *time.Time
	Address     *string
	Latitude    *float64
	Longitude   *float64
}

// DecideInput captures the artisan's accept/decline action.
type DecideInput struct {
	BookingID uuid.UUID
	ArtisanID uuid.UUID
	Decision  Decision
}

// ListParams configures booking list queries for either side of the market.
type ListParams struct {
	CustomerID *uuid.UUID
	ArtisanID  *uuid.UUID
	// Status filters by normalized status: stored lifecycle values are
	// expanded so a filter on Accepted also matches Completed rows.
	Status string
	Limit  int
	Cursor string
}

// ListResult wraps returned bookings and the cursor for the next page.
type ListResult struct {
	Items  []models.Booking `json:"items"`
	Cursor string           `json:"cursor"`
}

// NewService wires booking dependencies.
func NewService(repo Repository, tx txRunner, users userReader, plans planReader, notif notifier, logg *logger.Logger, freeMonthlyLimit int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if plans == nil {
		return nil, fmt.Errorf("plan reader required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if freeMonthlyLimit <= 0 {
		return nil, fmt.Errorf("free monthly accept limit must be positive")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		users:       users,
		plans:       plans,
		notifier:    notif,
		logg:        logg,
		freeMonthly: freeMonthlyLimit,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ArtisanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artisan id required")
	}
	if strings.TrimSpace(input.Service) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service is required")
	}
	if input.Type == "" {
		input.Type = enums.BookingTypeDirect
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking type")
	}

	artisan, err := s.users.Find(ctx, input.ArtisanID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artisan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artisan")
	}
	if artisan.Role != enums.UserRoleArtisan {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user is not an artisan")
	}

	booking := &models.Booking{
		CustomerID:  input.CustomerID,
		ArtisanID:   input.ArtisanID,
		Type:        input.Type,
		Service:     input.Service,
		Description: input.Description,
		Status:      enums.BookingStatusPending,
		ScheduledAt: input.ScheduledAt,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}

	s.notifyQuietly(ctx, notifications.NotifyParams{
		UserID:   input.ArtisanID,
		Category: enums.NotificationCategoryJobStatus,
		Type:     enums.NotificationTypeInfo,
		Title:    "New Booking Request",
		Message:  fmt.Sprintf("You have a new %s booking request", booking.Service),
	})

	return booking, nil
}

func (s *service) Get(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	booking, err := s.repo.Find(ctx, bookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.CustomerID != actorID && booking.ArtisanID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to user")
	}
	return booking, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*models.Booking, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ArtisanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	targetStatus, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return nil, err
	}

	if input.Decision == DecisionAccept {
		if err := s.checkAcceptGates(ctx, input.ArtisanID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var customerID uuid.UUID
	mutated := false
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.Find(ctx, input.BookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.ArtisanID != input.ArtisanID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to artisan")
		}
		customerID = booking.CustomerID
		if booking.Status == targetStatus {
			return nil
		}
		if booking.Status != enums.BookingStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking decision not allowed in current state")
		}

		update := statusUpdate{Status: targetStatus}
		if targetStatus == enums.BookingStatusAccepted {
			update.AcceptedAt = &now
		}
		if err := repo.UpdateStatus(ctx, booking.ID, update); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}
		mutated = true
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// A repeat decision that changed nothing must not renotify the customer.
	if mutated {
		s.notifyDecision(ctx, customerID, input.Decision)
	}

	// Re-read so callers render the authoritative row rather than a local patch.
	booking, err := s.repo.Find(ctx, input.BookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload booking")
	}
	return booking, nil
}

// checkAcceptGates enforces the KYC and free-plan quota preconditions before
// any booking mutation happens.
func (s *service) checkAcceptGates(ctx context.Context, artisanID uuid.UUID) error {
	artisan, err := s.users.Find(ctx, artisanID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "artisan not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artisan")
	}
	if artisan.KYCStatus != enums.KYCStatusApproved {
		return pkgerrors.New(pkgerrors.CodeForbidden, "KYC verification required before accepting jobs").
			WithDetails(map[string]any{"kycRequired": true})
	}

	premium, err := s.plans.IsPremiumActive(ctx, artisanID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subscription plan")
	}
	if premium {
		return nil
	}

	monthStart := startOfMonth(s.now())
	accepted, err := s.repo.CountAcceptedSince(ctx, artisanID, monthStart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accepted bookings")
	}
	if accepted >= int64(s.freeMonthly) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "monthly job acceptance limit reached").
			WithDetails(map[string]any{"limitReached": true})
	}
	return nil
}

func (s *service) Complete(ctx context.Context, bookingID, customerID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, bookingID, customerID, transitionComplete)
}

func (s *service) Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, bookingID, actorID, transitionCancel)
}

type transitionKind int

const (
	transitionComplete transitionKind = iota
	transitionCancel
)

func (s *service) transition(ctx context.Context, bookingID, actorID uuid.UUID, kind transitionKind) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	now := s.now()
	var notifyUserID uuid.UUID
	var notifyParams *notifications.NotifyParams

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.Find(ctx, bookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}

		switch kind {
		case transitionComplete:
			if booking.CustomerID != actorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to customer")
			}
			if booking.Status == enums.BookingStatusCompleted {
				return nil
			}
			if booking.Status != enums.BookingStatusAccepted && booking.Status != enums.BookingStatusPendingConfirmation {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "only accepted bookings can be completed")
			}
			if err := repo.UpdateStatus(ctx, booking.ID, statusUpdate{Status: enums.BookingStatusCompleted, CompletedAt: &now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
			}
			notifyUserID = booking.ArtisanID
			notifyParams = &notifications.NotifyParams{
				Category: enums.NotificationCategoryJobStatus,
				Type:     enums.NotificationTypeSuccess,
				Title:    "Job Completed",
				Message:  fmt.Sprintf("The %s job was marked completed", booking.Service),
			}
		case transitionCancel:
			if booking.CustomerID != actorID && booking.ArtisanID != actorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to user")
			}
			if booking.Status == enums.BookingStatusCancelled {
				return nil
			}
			if booking.Status != enums.BookingStatusPending && booking.Status != enums.BookingStatusAccepted {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "booking can no longer be cancelled")
			}
			if err := repo.UpdateStatus(ctx, booking.ID, statusUpdate{Status: enums.BookingStatusCancelled, CancelledAt: &now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
			}
			if actorID == booking.CustomerID {
				notifyUserID = booking.ArtisanID
			} else {
				notifyUserID = booking.CustomerID
			}
			notifyParams = &notifications.NotifyParams{
				Category: enums.NotificationCategoryJobStatus,
				Type:     enums.NotificationTypeWarning,
				Title:    "Booking Cancelled",
				Message:  fmt.Sprintf("The %s booking was cancelled", booking.Service),
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if notifyParams != nil {
		notifyParams.UserID = notifyUserID
		s.notifyQuietly(ctx, *notifyParams)
	}

	booking, err := s.repo.Find(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload booking")
	}
	return booking, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.CustomerID == nil && params.ArtisanID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer or artisan scope required")
	}

	query := listBookingsParams{
		CustomerID: params.CustomerID,
		ArtisanID:  params.ArtisanID,
		Limit:      params.Limit,
	}
	if strings.TrimSpace(params.Status) != "" {
		query.Statuses = DenormalizedStatuses(NormalizeStatus(params.Status))
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Delete(ctx context.Context, bookingID, artisanID uuid.UUID) error {
	if bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if artisanID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.Find(ctx, bookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.ArtisanID != artisanID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to artisan")
		}
		if _, err := repo.Delete(ctx, booking.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete booking")
		}
		return nil
	})
}

func (s *service) notifyDecision(ctx context.Context, customerID uuid.UUID, decision Decision) {
	params := notifications.NotifyParams{
		UserID:    customerID,
		Category:  enums.NotificationCategoryJobStatus,
		Important: true,
	}
	if decision == DecisionAccept {
		params.Type = enums.NotificationTypeSuccess
		params.Title = "Job Accepted!"
		params.Message = "Your booking request was accepted"
	} else {
		params.Type = enums.NotificationTypeError
		params.Title = "Job Declined"
		params.Message = "Your booking request was declined"
	}
	s.notifyQuietly(ctx, params)
}

// notifyQuietly delivers a best-effort notification; delivery failures never
// fail the booking operation.
func (s *service) notifyQuietly(ctx context.Context, params notifications.NotifyParams) {
	if _, err := s.notifier.Notify(ctx, params); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"user_id": params.UserID.String()}), "booking notification delivery failed")
	}
}

func mapDecisionToStatus(decision Decision) (enums.BookingStatus, error) {
	switch decision {
	case DecisionAccept:
		return enums.BookingStatusAccepted, nil
	case DecisionDecline:
		return enums.BookingStatusDeclined, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid decision %q", decision))
	}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
