package controllers

import (
	"net/http"

	"github.com/angelmondragon/ecom-backend/api/responses"
	"github.com/angelmondragon/ecom-backend/api/validators"
	"github.com/angelmondragon/ecom-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
)

// TokenHeader carries the locally minted access token on /authenticate.
const TokenHeader = "X-Ecom-Token"

// Authenticate wires the local login endpoint into the HTTP layer.
func Authenticate(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.AuthenticateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Authenticate(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.AccessToken != "" {
			w.Header().Set(TokenHeader, result.AccessToken)
		}
		responses.WriteSuccess(w, result)
	}
}

// SignUp registers a local customer account.
func SignUp(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.SignUpRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SignUp(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
