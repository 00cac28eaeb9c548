package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/kartik-parmar007/marketplace-backend/api/middleware"
	"github.com/kartik-parmar007/marketplace-backend/api/responses"
	"github.com/kartik-parmar007/marketplace-backend/api/validators"
	"github.com/kartik-parmar007/marketplace-backend/internal/directory"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

// roleViewer resolves the caller's effective role with allow-list precedence.
type roleViewer interface {
	EffectiveRole(ctx context.Context, externalID string) (enums.Role, error)
}

type registerRequest struct {
	ExternalID string `json:"externalId" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required,oneof=buyer seller"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// Register records an identity in the directory under the chosen role. The
// endpoint is public: the identity provider has already issued the external
// id, and the directory row only becomes useful once requests carry a token
// verified for that same id.
func Register(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		user, err := svc.Upsert(r.Context(), directory.UpsertInput{
			ExternalID: strings.TrimSpace(payload.ExternalID),
			Email:      strings.TrimSpace(payload.Email),
			Role:       role,
			FirstName:  optionalString(payload.FirstName),
			LastName:   optionalString(payload.LastName),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, user)
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Me returns the caller's directory record together with the effective role.
// An allow-listed admin without a directory row still gets a role back.
func Me(svc directory.Service, gate roleViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		role, roleErr := gate.EffectiveRole(r.Context(), userID)

		user, err := svc.FindByExternalID(r.Context(), userID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound && roleErr == nil {
				responses.WriteSuccess(w, map[string]any{"role": role})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		effective := user.Role
		if roleErr == nil {
			effective = role
		}
		responses.WriteSuccess(w, map[string]any{"user": user, "role": effective})
	}
}

// Role returns only the caller's effective role.
func Role(gate roleViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		role, err := gate.EffectiveRole(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"role": role})
	}
}
