package subscriptions

import (
	"context"
	"testing"
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

type fakeSubscriptionRepository struct {
	createFn          func(ctx context.Context, sub *models.Subscription) error
	findCurrentFn     func(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	findByReferenceFn func(ctx context.Context, reference string) (*models.Subscription, error)
	updateFn          func(ctx context.Context, id uuid.UUID, columns map[string]any) error
	expireDueFn       func(ctx context.Context, now time.Time) (int64, error)
}

func (f *fakeSubscriptionRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, sub)
}

func (f *fakeSubscriptionRepository) FindCurrent(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if f.findCurrentFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findCurrentFn(ctx, userID)
}

func (f *fakeSubscriptionRepository) FindByReference(ctx context.Context, reference string) (*models.Subscription, error) {
	return f.findByReferenceFn(ctx, reference)
}

func (f *fakeSubscriptionRepository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, id, columns)
}

func (f *fakeSubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return f.expireDueFn(ctx, now)
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserReader struct {
	user *models.User
	err  error
}

func (f *fakeUserReader) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.user, f.err
}

type fakeAcceptedCounter struct {
	count int64
	err   error
}

func (f *fakeAcceptedCounter) CountAcceptedSince(ctx context.Context, artisanID uuid.UUID, since time.Time) (int64, error) {
	return f.count, f.err
}

type fakeGateway struct {
	initializeFn func(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	verifyFn     func(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

func (f *fakeGateway) Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	return f.initializeFn(ctx, req)
}

func (f *fakeGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	return f.verifyFn(ctx, reference)
}

type fakeNotifier struct {
	sent []notifications.NotifyParams
}

func (f *fakeNotifier) Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error) {
	f.sent = append(f.sent, params)
	return &notifications.NotifyResult{}, nil
}

func testConfig() Config {
	return Config{PremiumAmountKobo: 500000, Currency: "NGN", PeriodDays: 30, FreeMonthlyLimit: 5}
}

func newTestService(t *testing.T, repo Repository, users userReader, counter acceptedCounter, gateway paymentGateway, notif notifier) *service {
	t.Helper()
	if users == nil {
		users = &fakeUserReader{err: gorm.ErrRecordNotFound}
	}
	if counter == nil {
		counter = &fakeAcceptedCounter{}
	}
	if gateway == nil {
		gateway = &fakeGateway{}
	}
	if notif == nil {
		notif = &fakeNotifier{}
	}
	svc, err := NewService(repo, &fakeTxRunner{}, users, counter, gateway, notif, testConfig())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc.(*service)
}

func activePremium(userID uuid.UUID, periodEnd time.Time) *models.Subscription {
	ref := "sl_sub_ref"
	return &models.Subscription{
		ID:                uuid.New(),
		UserID:            userID,
		Plan:              enums.SubscriptionPlanPremium,
		Status:            enums.SubscriptionStatusActive,
		Amount:            decimal.New(500000, -2),
		Currency:          "NGN",
		PaystackReference: &ref,
		CurrentPeriodEnd:  &periodEnd,
	}
}

func TestStatus_FreePlanIsAlwaysActive(t *testing.T) {
	userID := uuid.New()
	repo := &fakeSubscriptionRepository{
		findCurrentFn: func(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, nil, &fakeAcceptedCounter{count: 2}, nil, nil)

	view, err := svc.Status(context.Background(), userID)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if view.Plan != enums.SubscriptionPlanFree || view.Status != enums.SubscriptionStatusActive {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.IsPremium || !view.CanAcceptJobs {
		t.Fatalf("unexpected entitlements %+v", view)
	}
	if view.RemainingJobs != int64(3) {
		t.Fatalf("expected 3 remaining jobs, got %v", view.RemainingJobs)
	}
}

func TestStatus_FreePlanAtQuotaCannotAccept(t *testing.T) {
	repo := &fakeSubscriptionRepository{}
	svc := newTestService(t, repo, nil, &fakeAcceptedCounter{count: 7}, nil, nil)

	view, err := svc.Status(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if view.CanAcceptJobs {
		t.Fatal("expected canAcceptJobs=false at quota")
	}
	if view.RemainingJobs != int64(0) {
		t.Fatalf("remaining jobs never go negative, got %v", view.RemainingJobs)
	}
}

func TestStatus_PremiumReportsUnlimited(t *testing.T) {
	userID := uuid.New()
	repo := &fakeSubscriptionRepository{
		findCurrentFn: func(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
			return activePremium(userID, time.Now().UTC().Add(24*time.Hour)), nil
		},
	}
	counter := &fakeAcceptedCounter{err: gorm.ErrInvalidDB}
	svc := newTestService(t, repo, nil, counter, nil, nil)

	view, err := svc.Status(context.Background(), userID)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !view.IsPremium || !view.CanAcceptJobs {
		t.Fatalf("unexpected entitlements %+v", view)
	}
	if view.RemainingJobs != UnlimitedJobs {
		t.Fatalf("expected %q, got %v", UnlimitedJobs, view.RemainingJobs)
	}
}

func TestIsPremiumActive_LapsedPeriodFallsBackToFree(t *testing.T) {
	userID := uuid.New()
	repo := &fakeSubscriptionRepository{
		findCurrentFn: func(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
			return activePremium(userID, time.Now().UTC().Add(-time.Hour)), nil
		},
	}
	svc := newTestService(t, repo, nil, nil, nil, nil)

	premium, err := svc.IsPremiumActive(context.Background(), userID)
	if err != nil {
		t.Fatalf("IsPremiumActive returned error: %v", err)
	}
	if premium {
		t.Fatal("lapsed period must not grant premium")
	}
}

func TestUpgrade_InitializesCheckoutAndStoresPendingRow(t *testing.T) {
	userID := uuid.New()
	users := &fakeUserReader{user: &models.User{ID: userID, Email: "artisan@example.com", Role: enums.UserRoleArtisan}}

	var created *models.Subscription
	repo := &fakeSubscriptionRepository{
		createFn: func(ctx context.Context, sub *models.Subscription) error {
			created = sub
			return nil
		},
	}
	gateway := &fakeGateway{
		initializeFn: func(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
			if req.Email != "artisan@example.com" || req.AmountKobo != 500000 || req.Currency != "NGN" {
				t.Fatalf("unexpected initialize request %+v", req)
			}
			return &paystack.InitializeResult{AuthorizationURL: "https://checkout.paystack.com/abc", Reference: req.Reference}, nil
		},
	}
	svc := newTestService(t, repo, users, nil, gateway, nil)

	result, err := svc.Upgrade(context.Background(), UpgradeInput{UserID: userID})
	if err != nil {
		t.Fatalf("Upgrade returned error: %v", err)
	}
	if result.AuthorizationURL != "https://checkout.paystack.com/abc" {
		t.Fatalf("unexpected result %+v", result)
	}
	if created == nil || created.Status != enums.SubscriptionStatusPending || created.Plan != enums.SubscriptionPlanPremium {
		t.Fatalf("unexpected pending row %+v", created)
	}
	if created.PaystackReference == nil || *created.PaystackReference != result.Reference {
		t.Fatalf("reference mismatch %+v vs %q", created.PaystackReference, result.Reference)
	}
}

func TestUpgrade_RejectsCustomersAndActivePremium(t *testing.T) {
	userID := uuid.New()
	users := &fakeUserReader{user: &models.User{ID: userID, Role: enums.UserRoleCustomer}}
	svc := newTestService(t, &fakeSubscriptionRepository{}, users, nil, nil, nil)

	_, err := svc.Upgrade(context.Background(), UpgradeInput{UserID: userID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	users.user.Role = enums.UserRoleArtisan
	repo := &fakeSubscriptionRepository{
		findCurrentFn: func(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
			return activePremium(userID, time.Now().UTC().Add(time.Hour)), nil
		},
	}
	svc = newTestService(t, repo, users, nil, nil, nil)

	_, err = svc.Upgrade(context.Background(), UpgradeInput{UserID: userID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestVerifyUpgrade_ActivatesForOnePeriod(t *testing.T) {
	userID := uuid.New()
	ref := "sl_sub_xyz"
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	pending := &models.Subscription{ID: uuid.New(), UserID: userID, Plan: enums.SubscriptionPlanPremium, Status: enums.SubscriptionStatusPending, PaystackReference: &ref}
	var updated map[string]any
	repo := &fakeSubscriptionRepository{
		findByReferenceFn: func(ctx context.Context, reference string) (*models.Subscription, error) {
			if updated != nil {
				end := now.AddDate(0, 0, 30)
				active := *pending
				active.Status = enums.SubscriptionStatusActive
				active.CurrentPeriodEnd = &end
				return &active, nil
			}
			return pending, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, columns map[string]any) error {
			updated = columns
			return nil
		},
	}
	gateway := &fakeGateway{
		verifyFn: func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
			return &paystack.VerifyResult{Status: "success", Reference: reference}, nil
		},
	}
	notif := &fakeNotifier{}
	svc := newTestService(t, repo, nil, nil, gateway, notif)
	svc.now = func() time.Time { return now }

	view, err := svc.VerifyUpgrade(context.Background(), userID, ref)
	if err != nil {
		t.Fatalf("VerifyUpgrade returned error: %v", err)
	}
	if !view.IsPremium || view.RemainingJobs != UnlimitedJobs {
		t.Fatalf("unexpected view %+v", view)
	}
	if updated["status"] != enums.SubscriptionStatusActive {
		t.Fatalf("unexpected update %+v", updated)
	}
	end, ok := updated["current_period_end"].(time.Time)
	if !ok || !end.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("expected one 30-day period, got %v", updated["current_period_end"])
	}
	if len(notif.sent) != 1 || notif.sent[0].Title != "Premium Activated" {
		t.Fatalf("unexpected notifications %+v", notif.sent)
	}
}

func TestVerifyUpgrade_FailedPaymentDoesNotActivate(t *testing.T) {
	userID := uuid.New()
	ref := "sl_sub_failed"
	pending := &models.Subscription{ID: uuid.New(), UserID: userID, Status: enums.SubscriptionStatusPending, PaystackReference: &ref}

	repo := &fakeSubscriptionRepository{
		findByReferenceFn: func(ctx context.Context, reference string) (*models.Subscription, error) {
			return pending, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, columns map[string]any) error {
			t.Fatal("no activation expected")
			return nil
		},
	}
	gateway := &fakeGateway{
		verifyFn: func(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
			return &paystack.VerifyResult{Status: "abandoned"}, nil
		},
	}
	svc := newTestService(t, repo, nil, nil, gateway, nil)

	_, err := svc.VerifyUpgrade(context.Background(), userID, ref)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestVerifyUpgrade_ForeignReferenceForbidden(t *testing.T) {
	ref := "sl_sub_other"
	repo := &fakeSubscriptionRepository{
		findByReferenceFn: func(ctx context.Context, reference string) (*models.Subscription, error) {
			return &models.Subscription{ID: uuid.New(), UserID: uuid.New(), Status: enums.SubscriptionStatusPending, PaystackReference: &ref}, nil
		},
	}
	svc := newTestService(t, repo, nil, nil, nil, nil)

	_, err := svc.VerifyUpgrade(context.Background(), uuid.New(), ref)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancel_MarksCancelledAtButKeepsPremiumUntilPeriodEnd(t *testing.T) {
	userID := uuid.New()
	periodEnd := time.Now().UTC().Add(10 * 24 * time.Hour)
	sub := activePremium(userID, periodEnd)

	var updated map[string]any
	repo := &fakeSubscriptionRepository{
		findCurrentFn: func(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
			if updated != nil {
				cancelled := *sub
				at := updated["cancelled_at"].(time.Time)
				cancelled.CancelledAt = &at
				return &cancelled, nil
			}
			return sub, nil
		},
		updateFn: func(ctx context.Context, id uuid.UUID, columns map[string]any) error {
			updated = columns
			return nil
		},
	}
	svc := newTestService(t, repo, nil, nil, nil, nil)

	view, err := svc.Cancel(context.Background(), userID)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected cancelled_at update")
	}
	if !view.IsPremium || view.CancelledAt == nil {
		t.Fatalf("premium keeps running until period end, got %+v", view)
	}
}

func TestCancel_WithoutActivePremiumConflicts(t *testing.T) {
	repo := &fakeSubscriptionRepository{}
	svc := newTestService(t, repo, nil, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
