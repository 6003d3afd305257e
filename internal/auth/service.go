package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	pkgauth "github.com/skilledlink/skilledlink-backend/pkg/auth"
	"github.com/skilledlink/skilledlink-backend/pkg/auth/session"
	"github.com/skilledlink/skilledlink-backend/pkg/config"
	"github.com/skilledlink/skilledlink-backend/pkg/db"
	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/security"
)

const minPasswordLength = 8

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) (*notifications.NotifyResult, error)
}

// Service defines authentication and account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
	SubmitKYC(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ReviewKYC(ctx context.Context, input ReviewKYCInput) (*models.User, error)
}

type service struct {
	repo        Repository
	sessions    sessionManager
	notifier    notifier
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// RegisterInput creates a customer or artisan account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Role      enums.UserRole
}

// LoginInput authenticates by email and password.
type LoginInput struct {
	Email    string
	Password string
}

// ReviewKYCInput is the admin decision on a pending KYC submission.
type ReviewKYCInput struct {
	UserID  uuid.UUID
	Approve bool
}

// TokenPair carries a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult bundles the authenticated user with their tokens.
type AuthResult struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// NewService wires authentication dependencies.
func NewService(repo Repository, sessions sessionManager, notif notifier, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:        repo,
		sessions:    sessions,
		notifier:    notif,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if input.Role != enums.UserRoleCustomer && input.Role != enums.UserRoleArtisan {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be customer or artisan")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
		Role:         input.Role,
		KYCStatus:    enums.KYCStatusNotSubmitted,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Refresh rotates the session tied to the (possibly expired) access token and
// mints a new pair with the user's current role and KYC status.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(accessToken) == "" || strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access and refresh tokens are required")
	}

	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if err == session.ErrInvalidRefreshToken {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.repo.Find(ctx, claims.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	signed, err := s.mintAccessToken(user, newAccessID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: signed, RefreshToken: newRefreshToken}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session identity missing")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.Find(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// SubmitKYC moves an artisan into the pending verification queue. A declined
// artisan may resubmit; an approved one has nothing to submit.
func (s *service) SubmitKYC(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleArtisan {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only artisans require KYC verification")
	}
	switch user.KYCStatus {
	case enums.KYCStatusApproved:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "KYC already approved")
	case enums.KYCStatusPending:
		return user, nil
	}

	if err := s.repo.SetKYCStatus(ctx, userID, enums.KYCStatusPending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update kyc status")
	}
	user.KYCStatus = enums.KYCStatusPending
	return user, nil
}

// ReviewKYC records the admin decision and notifies the artisan. Role
// enforcement for the caller happens at the route layer.
func (s *service) ReviewKYC(ctx context.Context, input ReviewKYCInput) (*models.User, error) {
	user, err := s.Me(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleArtisan {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target user is not an artisan")
	}
	if user.KYCStatus != enums.KYCStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending KYC submission to review")
	}

	target := enums.KYCStatusDeclined
	title := "KYC Declined"
	message := "Your verification was declined. Review your details and resubmit."
	notifType := enums.NotificationTypeError
	if input.Approve {
		target = enums.KYCStatusApproved
		title = "KYC Approved"
		message = "Your verification is complete. You can now accept jobs."
		notifType = enums.NotificationTypeSuccess
	}

	if err := s.repo.SetKYCStatus(ctx, input.UserID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update kyc status")
	}

	_, _ = s.notifier.Notify(ctx, notifications.NotifyParams{
		UserID:    input.UserID,
		Category:  enums.NotificationCategorySystem,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Important: true,
	})

	user.KYCStatus = target
	return user, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessID := session.NewAccessID()
	signed, err := s.mintAccessToken(user, accessID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: refreshToken}, nil
}

func (s *service) mintAccessToken(user *models.User, accessID string) (string, error) {
	kycStatus := user.KYCStatus
	signed, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:    user.ID,
		Role:      user.Role,
		KYCStatus: &kycStatus,
		JTI:       accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return signed, nil
}
