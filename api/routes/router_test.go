package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skilledlink/skilledlink-backend/internal/artisans"
	"github.com/skilledlink/skilledlink-backend/internal/auth"
	"github.com/skilledlink/skilledlink-backend/internal/bookings"
	"github.com/skilledlink/skilledlink-backend/internal/issues"
	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/internal/reviews"
	"github.com/skilledlink/skilledlink-backend/internal/subscriptions"
	pkgauth "github.com/skilledlink/skilledlink-backend/pkg/auth"
	"github.com/skilledlink/skilledlink-backend/pkg/auth/session"
	"github.com/skilledlink/skilledlink-backend/pkg/config"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error) {
	return &auth.AuthResult{}, nil
}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.AuthResult, error) {
	return &auth.AuthResult{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	return &auth.TokenPair{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func (stubAuthService) SubmitKYC(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func (stubAuthService) ReviewKYC(ctx context.Context, input auth.ReviewKYCInput) (*models.User, error) {
	return &models.User{}, nil
}

type stubBookingsService struct{}

func (stubBookingsService) Create(ctx context.Context, input bookings.CreateInput) (*models.Booking, error) {
	return &models.Booking{}, nil
}

func (stubBookingsService) Get(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return &models.Booking{ID: bookingID}, nil
}

func (stubBookingsService) Decide(ctx context.Context, input bookings.DecideInput) (*models.Booking, error) {
	return &models.Booking{}, nil
}

func (stubBookingsService) Complete(ctx context.Context, bookingID, customerID uuid.UUID) (*models.Booking, error) {
	return &models.Booking{ID: bookingID}, nil
}

func (stubBookingsService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return &models.Booking{ID: bookingID}, nil
}

func (stubBookingsService) List(ctx context.Context, params bookings.ListParams) (*bookings.ListResult, error) {
	return &bookings.ListResult{}, nil
}

func (stubBookingsService) Delete(ctx context.Context, bookingID, artisanID uuid.UUID) error {
	return nil
}

type stubArtisansService struct{}

func (stubArtisansService) Upsert(ctx context.Context, input artisans.UpsertInput) (*models.ArtisanProfile, error) {
	return &models.ArtisanProfile{}, nil
}

func (stubArtisansService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error) {
	return &models.ArtisanProfile{UserID: userID}, nil
}

func (stubArtisansService) Search(ctx context.Context, params artisans.SearchParams) (*artisans.SearchResult, error) {
	return &artisans.SearchResult{}, nil
}

func (stubArtisansService) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) (*models.ArtisanProfile, error) {
	return &models.ArtisanProfile{UserID: userID}, nil
}

type stubReviewsService struct{}

func (stubReviewsService) Create(ctx context.Context, input reviews.CreateInput) (*models.Review, error) {
	return &models.Review{}, nil
}

func (stubReviewsService) ListByArtisan(ctx context.Context, params reviews.ListParams) (*reviews.ListResult, error) {
	return &reviews.ListResult{}, nil
}

type stubIssuesService struct{}

func (stubIssuesService) Report(ctx context.Context, input issues.ReportInput) (*models.Issue, error) {
	return &models.Issue{}, nil
}

func (stubIssuesService) Get(ctx context.Context, issueID, actorID uuid.UUID, isAdmin bool) (*models.Issue, error) {
	return &models.Issue{ID: issueID}, nil
}

func (stubIssuesService) Transition(ctx context.Context, issueID uuid.UUID, target enums.IssueStatus) (*models.Issue, error) {
	return &models.Issue{ID: issueID}, nil
}

func (stubIssuesService) List(ctx context.Context, params issues.ListParams) (*issues.ListResult, error) {
	return &issues.ListResult{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error) {
	return &notifications.NotifyResult{}, nil
}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubSubscriptionsService struct{}

func (stubSubscriptionsService) Status(ctx context.Context, userID uuid.UUID) (*subscriptions.StatusView, error) {
	return &subscriptions.StatusView{}, nil
}

func (stubSubscriptionsService) IsPremiumActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	return false, nil
}

func (stubSubscriptionsService) Upgrade(ctx context.Context, input subscriptions.UpgradeInput) (*subscriptions.UpgradeResult, error) {
	return &subscriptions.UpgradeResult{}, nil
}

func (stubSubscriptionsService) VerifyUpgrade(ctx context.Context, userID uuid.UUID, reference string) (*subscriptions.StatusView, error) {
	return &subscriptions.StatusView{}, nil
}

func (stubSubscriptionsService) Cancel(ctx context.Context, userID uuid.UUID) (*subscriptions.StatusView, error) {
	return &subscriptions.StatusView{}, nil
}

func (stubSubscriptionsService) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Dependencies{
		Config:        cfg,
		Logger:        logg,
		DB:            stubPinger{},
		Redis:         (*redis.Client)(nil),
		Sessions:      stubSessionChecker{},
		Auth:          stubAuthService{},
		Bookings:      stubBookingsService{},
		Artisans:      stubArtisansService{},
		Reviews:       stubReviewsService{},
		Issues:        stubIssuesService{},
		Notifications: stubNotificationsService{},
		Subscriptions: stubSubscriptionsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed profile got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/issues", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/issues", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestArtisanProfileRequiresArtisanRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/artisans/me", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	artisan := httptest.NewRequest(http.MethodGet, "/api/v1/artisans/me", nil)
	artisan.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleArtisan))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, artisan)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for artisan got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}
