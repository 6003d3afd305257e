package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skilledlink/skilledlink-backend/api/controllers"
	"github.com/skilledlink/skilledlink-backend/api/middleware"
	"github.com/skilledlink/skilledlink-backend/internal/artisans"
	"github.com/skilledlink/skilledlink-backend/internal/auth"
	"github.com/skilledlink/skilledlink-backend/internal/bookings"
	"github.com/skilledlink/skilledlink-backend/internal/issues"
	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/internal/reviews"
	"github.com/skilledlink/skilledlink-backend/internal/subscriptions"
	"github.com/skilledlink/skilledlink-backend/pkg/auth/session"
	"github.com/skilledlink/skilledlink-backend/pkg/config"
	"github.com/skilledlink/skilledlink-backend/pkg/db"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	"github.com/skilledlink/skilledlink-backend/pkg/geocode"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/redis"
)

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Sessions      session.AccessSessionChecker
	Auth          auth.Service
	Bookings      bookings.Service
	Artisans      artisans.Service
	Reviews       reviews.Service
	Issues        issues.Service
	Notifications notifications.Service
	Subscriptions subscriptions.Service
	GeoResolver   *geocode.Resolver
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/me", controllers.AuthMe(deps.Auth, logg))
		r.With(artisanOnly(logg)).Post("/me/kyc", controllers.AuthSubmitKYC(deps.Auth, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", controllers.BookingCreate(deps.Bookings, logg))
			r.Get("/", controllers.BookingList(deps.Bookings, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(deps.Bookings, logg))
			r.With(artisanOnly(logg)).Post("/{bookingId}/decision", controllers.BookingDecision(deps.Bookings, logg))
			r.Post("/{bookingId}/complete", controllers.BookingComplete(deps.Bookings, logg))
			r.Post("/{bookingId}/cancel", controllers.BookingCancel(deps.Bookings, logg))
			r.With(artisanOnly(logg)).Delete("/{bookingId}", controllers.BookingDelete(deps.Bookings, logg))
		})

		r.Route("/artisans", func(r chi.Router) {
			r.Get("/", controllers.ArtisanSearch(deps.Artisans, logg))
			r.With(artisanOnly(logg)).Get("/me", controllers.ArtisanMyProfile(deps.Artisans, logg))
			r.With(artisanOnly(logg)).Put("/me", controllers.ArtisanUpsertProfile(deps.Artisans, logg))
			r.With(artisanOnly(logg)).Post("/me/availability", controllers.ArtisanSetAvailability(deps.Artisans, logg))
			r.Get("/{userId}", controllers.ArtisanProfile(deps.Artisans, logg))
			r.Get("/{userId}/reviews", controllers.ReviewListByArtisan(deps.Reviews, logg))
		})

		r.Post("/reviews", controllers.ReviewCreate(deps.Reviews, logg))

		r.Route("/issues", func(r chi.Router) {
			r.Post("/", controllers.IssueReport(deps.Issues, logg))
			r.Get("/", controllers.IssueList(deps.Issues, logg))
			r.Get("/{issueId}", controllers.IssueDetail(deps.Issues, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationList(deps.Notifications, logg))
			r.Get("/unread-count", controllers.NotificationUnreadCount(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.NotificationMarkAllRead(deps.Notifications, logg))
			r.Delete("/", controllers.NotificationClearAll(deps.Notifications, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/status", controllers.SubscriptionStatus(deps.Subscriptions, logg))
			r.With(artisanOnly(logg)).Post("/upgrade", controllers.SubscriptionUpgrade(deps.Subscriptions, cfg.Paystack.CallbackURL, logg))
			r.With(artisanOnly(logg)).Post("/verify", controllers.SubscriptionVerify(deps.Subscriptions, logg))
			r.With(artisanOnly(logg)).Post("/cancel", controllers.SubscriptionCancel(deps.Subscriptions, logg))
		})

		r.Get("/geo/reverse", controllers.GeoReverse(deps.GeoResolver, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Post("/kyc/{userId}/review", controllers.AdminReviewKYC(deps.Auth, logg))
		r.Route("/issues", func(r chi.Router) {
			r.Get("/", controllers.AdminIssueList(deps.Issues, logg))
			r.Post("/{issueId}/transition", controllers.AdminIssueTransition(deps.Issues, logg))
		})
	})

	return r
}

func artisanOnly(logg *logger.Logger) func(http.Handler) http.Handler {
	return middleware.RequireRole(string(enums.UserRoleArtisan), logg)
}
