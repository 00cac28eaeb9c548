package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kartik-parmar007/marketplace-backend/api/responses"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

// TokenVerifier checks a bearer token and returns the external user id it
// was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Auth validates the bearer token and seeds the request context with the
// verified external user id. It performs no role decisions.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			parts := strings.Fields(raw)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			token := parts[1]

			externalID, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if externalID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing subject"))
				return
			}

			ctx := WithUserID(r.Context(), externalID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, externalID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
