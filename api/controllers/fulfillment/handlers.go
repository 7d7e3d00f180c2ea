package fulfillment

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// TrackingNumberRequest asks for a tracking number for one delivery method.
type TrackingNumberRequest struct {
	DeliveryMethod string `json:"delivery_method" validate:"required"`
}

// TrackingNumberView is the generated assignment.
type TrackingNumberView struct {
	DeliveryMethod string `json:"delivery_method"`
	TrackingNumber string `json:"tracking_number"`
}

// TrackingNumberAssign generates a tracking number via the strategy registered
// for the requested delivery method, falling back to the default strategy for
// methods without a dedicated carrier.
func TrackingNumberAssign(registry *tracking.Registry, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tracking registry unavailable"))
			return
		}

		var payload TrackingNumberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseDeliveryMethod(validators.SanitizeString(payload.DeliveryMethod, 32))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery method"))
			return
		}

		number, err := registry.Assign(method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tracking number"))
			return
		}

		m.IncTrackingAssigned(method.String())

		responses.WriteSuccessStatus(w, http.StatusCreated, TrackingNumberView{
			DeliveryMethod: method.String(),
			TrackingNumber: number,
		})
	}
}
