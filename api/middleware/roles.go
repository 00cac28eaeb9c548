package middleware

import (
	"context"
	"net/http"

	"github.com/kartik-parmar007/marketplace-backend/api/responses"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

// RoleResolver decides whether the identity in context may act under one of
// the required roles, returning the effective role that satisfied the check.
type RoleResolver interface {
	ResolveAny(ctx context.Context, externalID string, roles ...enums.Role) (enums.Role, error)
}

// Authorize gates a route on the caller holding one of the given roles. The
// resolved effective role is placed in context for downstream handlers.
func Authorize(gate RoleResolver, logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := gate.ResolveAny(r.Context(), UserIDFromContext(r.Context()), roles...)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithRole(r.Context(), role.String())
			if logg != nil {
				ctx = logg.WithActorRole(ctx, role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
