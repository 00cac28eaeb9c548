package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kartik-parmar007/marketplace-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// SessionClaims are the claims carried by the provider's session tokens.
// The subject is the external user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// VerifySessionToken validates a session JWT issued by the identity provider
// and returns the external user id it is bound to. Verification is local:
// the provider signs with the shared HS256 secret.
func VerifySessionToken(cfg config.IdentityConfig, tokenString string) (string, error) {
	if cfg.SessionSecret == "" {
		return "", fmt.Errorf("identity session secret is required")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.SessionSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return "", err
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return subject, nil
}
