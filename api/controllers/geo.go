package controllers

import (
	"net/http"

	"github.com/skilledlink/skilledlink-backend/api/responses"
	"github.com/skilledlink/skilledlink-backend/api/validators"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/geocode"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
)

// lowAccuracyMeters flags GPS fixes too coarse to trust for address display.
const lowAccuracyMeters = 100.0

// GeoReverse resolves coordinates into a human-readable place.
func GeoReverse(resolver *geocode.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, _, err := validators.ParseQueryFloat(r, "lat", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lon, _, err := validators.ParseQueryFloat(r, "lon", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range"))
			return
		}

		accuracy, hasAccuracy, err := validators.ParseQueryFloat(r, "accuracy", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if hasAccuracy && accuracy > lowAccuracyMeters && logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"accuracy_meters": accuracy,
				"lat":             lat,
				"lon":             lon,
			})
			logg.Warn(ctx, "geo.low_accuracy_fix")
		}

		place, err := resolver.Resolve(r.Context(), lat, lon)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, place)
	}
}
