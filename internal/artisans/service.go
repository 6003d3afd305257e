package artisans

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skilledlink/skilledlink-backend/pkg/db/models"
	dbtypes "github.com/skilledlink/skilledlink-backend/pkg/db/types"
	"github.com/skilledlink/skilledlink-backend/pkg/enums"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/geocode"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/pagination"
)

type userReader interface {
	Find(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type placeResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (*geocode.Place, error)
}

// Service defines artisan profile operations.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*models.ArtisanProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error)
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	SetAvailability(ctx context.Context, userID uuid.UUID, available bool) (*models.ArtisanProfile, error)
}

type service struct {
	repo     Repository
	users    userReader
	resolver placeResolver
	logg     *logger.Logger
}

// UpsertInput creates or updates an artisan's public profile. Nil optional
// fields leave the stored value untouched on update.
type UpsertInput struct {
	UserID    uuid.UUID
	Trade     string
	Skills    []string
	Bio       *string
	Latitude  *float64
	Longitude *float64
	Available *bool
}

// SearchParams configures the public artisan search.
type SearchParams struct {
	Trade         string
	AvailableOnly bool
	Limit         int
	Cursor        string
}

// SearchResult wraps returned profiles and the cursor for the next page.
type SearchResult struct {
	Items  []models.ArtisanProfile `json:"items"`
	Cursor string                  `json:"cursor"`
}

// NewService wires artisan profile dependencies.
func NewService(repo Repository, users userReader, resolver placeResolver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("artisan repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("place resolver required")
	}
	return &service{repo: repo, users: users, resolver: resolver, logg: logg}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.ArtisanProfile, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Trade) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade is required")
	}

	user, err := s.users.Find(ctx, input.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role != enums.UserRoleArtisan {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only artisans can manage a profile")
	}

	formatted := s.resolveAddress(ctx, input.Latitude, input.Longitude)

	existing, err := s.repo.FindByUserID(ctx, input.UserID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	if existing == nil {
		profile := &models.ArtisanProfile{
			UserID:    input.UserID,
			Trade:     strings.TrimSpace(input.Trade),
			Skills:    dbtypes.StringArray(input.Skills),
			Bio:       input.Bio,
			Latitude:  input.Latitude,
			Longitude: input.Longitude,
			Available: true,
		}
		if input.Available != nil {
			profile.Available = *input.Available
		}
		if formatted != "" {
			profile.FormattedAddress = &formatted
		}
		if err := s.repo.Create(ctx, profile); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		return profile, nil
	}

	columns := map[string]any{"trade": strings.TrimSpace(input.Trade)}
	if input.Skills != nil {
		columns["skills"] = dbtypes.StringArray(input.Skills)
	}
	if input.Bio != nil {
		columns["bio"] = input.Bio
	}
	if input.Latitude != nil && input.Longitude != nil {
		columns["latitude"] = input.Latitude
		columns["longitude"] = input.Longitude
		if formatted != "" {
			columns["formatted_address"] = formatted
		}
	}
	if input.Available != nil {
		columns["available"] = *input.Available
	}
	if err := s.repo.Update(ctx, existing.ID, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}

	fresh, err := s.repo.FindByUserID(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload profile")
	}
	return fresh, nil
}

// resolveAddress turns captured coordinates into a display address. Resolution
// is best effort: a geocoder outage leaves the address blank rather than
// failing the profile write.
func (s *service) resolveAddress(ctx context.Context, lat, lon *float64) string {
	if lat == nil || lon == nil {
		return ""
	}
	place, err := s.resolver.Resolve(ctx, *lat, *lon)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "reverse geocode failed for profile address")
		}
		return ""
	}
	return place.Formatted
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ArtisanProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artisan profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	query := searchProfilesParams{
		Trade:         strings.TrimSpace(params.Trade),
		AvailableOnly: params.AvailableOnly,
		Limit:         params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	profiles, next, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search profiles")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &SearchResult{Items: profiles, Cursor: cursor}, nil
}

func (s *service) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) (*models.ArtisanProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artisan profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile.Available == available {
		return profile, nil
	}
	if err := s.repo.Update(ctx, profile.ID, map[string]any{"available": available}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update availability")
	}
	profile.Available = available
	return profile, nil
}
