package analytics

import (
	"net/http"

	"github.com/angelmondragon/ecom-backend/api/responses"
	internalanalytics "github.com/angelmondragon/ecom-backend/internal/analytics"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
)

// OrderAnalytics serves the admin dashboard aggregates.
func OrderAnalytics(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
