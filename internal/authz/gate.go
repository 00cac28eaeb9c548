package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/identity"
)

// ProfileFetcher reads the caller's provider-side profile. The gate calls it
// on every admin-gated request so the email-role binding is never cached.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, externalID string) (*identity.Profile, error)
}

// RoleReader is the directory lookup the gate falls back to.
type RoleReader interface {
	Role(ctx context.Context, externalID string) (enums.Role, error)
}

// Gate decides whether an identity may act under a required role. Two stages,
// in fixed precedence: the configured admin email allow-list first, the
// directory role second. A directory row with role=admin never grants admin.
type Gate struct {
	adminEmails map[string]struct{}
	profiles    ProfileFetcher
	directory   RoleReader
}

// NewGate constructs the authorization gate.
func NewGate(adminEmails []string, profiles ProfileFetcher, directory RoleReader) (*Gate, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile fetcher required")
	}
	if directory == nil {
		return nil, fmt.Errorf("role reader required")
	}
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	return &Gate{
		adminEmails: allowed,
		profiles:    profiles,
		directory:   directory,
	}, nil
}

// Resolve returns the effective role if the identity satisfies the required
// role, or a Forbidden error otherwise.
func (g *Gate) Resolve(ctx context.Context, externalID string, required enums.Role) (enums.Role, error) {
	return g.ResolveAny(ctx, externalID, required)
}

// ResolveAny succeeds when the effective role is any member of the given set.
func (g *Gate) ResolveAny(ctx context.Context, externalID string, roles ...enums.Role) (enums.Role, error) {
	if strings.TrimSpace(externalID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "no verified identity")
	}
	if len(roles) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "no roles required")
	}

	// Stage 1: the allow-list, only consulted when admin access would satisfy
	// the request. The profile is re-fetched every time.
	if containsRole(roles, enums.RoleAdmin) {
		ok, err := g.isAllowListedAdmin(ctx, externalID)
		if err != nil {
			return "", err
		}
		if ok {
			return enums.RoleAdmin, nil
		}
	}

	// Stage 2: the directory.
	role, err := g.directory.Role(ctx, externalID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return "", pkgerrors.New(pkgerrors.CodeForbidden, "no role assigned, please complete registration")
		}
		return "", err
	}

	// Directory-stored admin is inert: only the allow-list grants admin.
	if containsRole(roles, role) && role != enums.RoleAdmin {
		return role, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s role required", joinRoles(roles)))
}

// EffectiveRole resolves the caller's role without a requirement: allow-list
// first, then directory. Used by the profile endpoints.
func (g *Gate) EffectiveRole(ctx context.Context, externalID string) (enums.Role, error) {
	if strings.TrimSpace(externalID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "no verified identity")
	}
	ok, err := g.isAllowListedAdmin(ctx, externalID)
	if err != nil {
		return "", err
	}
	if ok {
		return enums.RoleAdmin, nil
	}
	return g.directory.Role(ctx, externalID)
}

func (g *Gate) isAllowListedAdmin(ctx context.Context, externalID string) (bool, error) {
	if len(g.adminEmails) == 0 {
		return false, nil
	}
	profile, err := g.profiles.GetProfile(ctx, externalID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	_, ok := g.adminEmails[strings.ToLower(strings.TrimSpace(profile.Email))]
	return ok, nil
}

func containsRole(roles []enums.Role, role enums.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func joinRoles(roles []enums.Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, role.String())
	}
	return strings.Join(parts, " or ")
}
