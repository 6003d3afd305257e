package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/paystack"
)

// UnlimitedJobs is the literal rendered for premium artisans in place of a
// numeric remaining-jobs count.
const UnlimitedJobs = "Unlimited"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userReader interface {
	Find(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type acceptedCounter interface {
	CountAcceptedSince(ctx context.Context, artisanID uuid.UUID, since time.Time) (int64, error)
}

type paymentGateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error)
}

// Service defines subscription plan and billing operations.
type Service interface {
	Status(ctx context.Context, userID uuid.UUID) (*StatusView, error)
	IsPremiumActive(ctx context.Context, userID uuid.UUID) (bool, error)
	Upgrade(ctx context.Context, input UpgradeInput) (*UpgradeResult, error)
	VerifyUpgrade(ctx context.Context, userID uuid.UUID, reference string) (*StatusView, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*StatusView, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// Config carries the premium plan terms.
type Config struct {
	PremiumAmountKobo int64
	Currency          string
	PeriodDays        int
	FreeMonthlyLimit  int
}

type service struct {
	repo     Repository
	tx       txRunner
	users    userReader
	accepted acceptedCounter
	gateway  paymentGateway
	notifier notifier
	cfg      Config
	now      func() time.Time
	newRef   func() string
}

// StatusView is the derived plan view rendered to artisans.
type StatusView struct {
	Plan             enums.SubscriptionPlan   `json:"plan"`
	Status           enums.SubscriptionStatus `json:"status"`
	IsPremium        bool                     `json:"isPremium"`
	CanAcceptJobs    bool                     `json:"canAcceptJobs"`
	RemainingJobs    any                      `json:"remainingJobs"`
	CurrentPeriodEnd *time.Time               `json:"currentPeriodEnd,omitempty"`
	CancelledAt      *time.Time               `json:"cancelledAt,omitempty"`
}

// UpgradeInput starts a premium checkout for an artisan.
type UpgradeInput struct {
	UserID      uuid.UUID
	CallbackURL string
}

// UpgradeResult hands the hosted checkout back to the client.
type UpgradeResult struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
}

// NewService wires subscription dependencies.
func NewService(repo Repository, tx txRunner, users userReader, accepted acceptedCounter, gateway paymentGateway, notif notifier, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if accepted == nil {
		return nil, fmt.Errorf("accepted counter required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if cfg.PremiumAmountKobo <= 0 || cfg.PeriodDays <= 0 || cfg.FreeMonthlyLimit <= 0 {
		return nil, fmt.Errorf("invalid subscription config")
	}
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	return &service{
		repo:     repo,
		tx:       tx,
		users:    users,
		accepted: accepted,
		gateway:  gateway,
		notifier: notif,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newRef:   func() string { return "sl_sub_" + uuid.NewString() },
	}, nil
}

func (s *service) Status(ctx context.Context, userID uuid.UUID) (*StatusView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	sub, err := s.currentOrNil(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, userID, sub)
}

func (s *service) IsPremiumActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.currentOrNil(ctx, userID)
	if err != nil {
		return false, err
	}
	return premiumActive(sub, s.now()), nil
}

func (s *service) Upgrade(ctx context.Context, input UpgradeInput) (*UpgradeResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	user, err := s.users.Find(ctx, input.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.UserRoleArtisan {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only artisans can subscribe")
	}

	sub, err := s.currentOrNil(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if premiumActive(sub, s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "premium subscription already active")
	}

	reference := s.newRef()
	init, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       user.Email,
		AmountKobo:  s.cfg.PremiumAmountKobo,
		Currency:    s.cfg.Currency,
		Reference:   reference,
		CallbackURL: input.CallbackURL,
	})
	if err != nil {
		return nil, err
	}
	if init.Reference != "" {
		reference = init.Reference
	}

	pending := &models.Subscription{
		UserID:            input.UserID,
		Plan:              enums.SubscriptionPlanPremium,
		Status:            enums.SubscriptionStatusPending,
		Amount:            decimal.New(s.cfg.PremiumAmountKobo, -2),
		Currency:          s.cfg.Currency,
		PaystackReference: &reference,
		CreatedAt:         s.now(),
	}
	if err := s.repo.Create(ctx, pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pending subscription")
	}

	return &UpgradeResult{AuthorizationURL: init.AuthorizationURL, Reference: reference}, nil
}

func (s *service) VerifyUpgrade(ctx context.Context, userID uuid.UUID, reference string) (*StatusView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference required")
	}

	sub, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "subscription does not belong to user")
	}

	// Re-verifying an already settled reference returns the current state.
	if sub.Status == enums.SubscriptionStatusActive {
		return s.buildView(ctx, userID, sub)
	}
	if sub.Status != enums.SubscriptionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "subscription can no longer be verified")
	}

	verified, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !verified.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("payment not settled (status %q)", verified.Status)).
			WithDetails(map[string]any{"paymentStatus": verified.Status})
	}

	now := s.now()
	periodEnd := now.AddDate(0, 0, s.cfg.PeriodDays)
	if err := s.repo.Update(ctx, sub.ID, map[string]any{
		"status":               enums.SubscriptionStatusActive,
		"current_period_start": now,
		"current_period_end":   periodEnd,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate subscription")
	}

	_, _ = s.notifier.Notify(ctx, notifications.NotifyParams{
		UserID:   userID,
		Category: enums.NotificationCategorySystem,
		Type:     enums.NotificationTypeSuccess,
		Title:    "Premium Activated",
		Message:  "Your premium subscription is now active",
	})

	fresh, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload subscription")
	}
	return s.buildView(ctx, userID, fresh)
}

func (s *service) Cancel(ctx context.Context, userID uuid.UUID) (*StatusView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	now := s.now()
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sub, err := repo.FindCurrent(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no premium subscription to cancel")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if !premiumActive(sub, now) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no active premium subscription")
		}
		if sub.CancelledAt != nil {
			return nil
		}
		if err := repo.Update(ctx, sub.ID, map[string]any{"cancelled_at": now}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	sub, err := s.currentOrNil(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, userID, sub)
}

func (s *service) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireDue(ctx, now)
}

func (s *service) currentOrNil(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.FindCurrent(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return sub, nil
}

// buildView derives the plan view. Free artisans are always active; premium
// privileges apply only while the paid period is running.
func (s *service) buildView(ctx context.Context, userID uuid.UUID, sub *models.Subscription) (*StatusView, error) {
	now := s.now()
	if premiumActive(sub, now) {
		return &StatusView{
			Plan:             enums.SubscriptionPlanPremium,
			Status:           enums.SubscriptionStatusActive,
			IsPremium:        true,
			CanAcceptJobs:    true,
			RemainingJobs:    UnlimitedJobs,
			CurrentPeriodEnd: sub.CurrentPeriodEnd,
			CancelledAt:      sub.CancelledAt,
		}, nil
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	used, err := s.accepted.CountAcceptedSince(ctx, userID, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accepted bookings")
	}
	remaining := int64(s.cfg.FreeMonthlyLimit) - used
	if remaining < 0 {
		remaining = 0
	}

	return &StatusView{
		Plan:          enums.SubscriptionPlanFree,
		Status:        enums.SubscriptionStatusActive,
		IsPremium:     false,
		CanAcceptJobs: remaining > 0,
		RemainingJobs: remaining,
	}, nil
}

func premiumActive(sub *models.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	if sub.Plan != enums.SubscriptionPlanPremium || sub.Status != enums.SubscriptionStatusActive {
		return false
	}
	if sub.CurrentPeriodEnd != nil && !sub.CurrentPeriodEnd.After(now) {
		return false
	}
	return true
}
