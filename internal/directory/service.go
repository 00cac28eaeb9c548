package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kartik-parmar007/marketplace-backend/pkg/db/models"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes the user directory: the durable identity-to-role mapping
// every authorization decision reads from.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*UserDTO, error)
	FindByExternalID(ctx context.Context, externalID string) (*UserDTO, error)
	Role(ctx context.Context, externalID string) (enums.Role, error)
	UpdateRole(ctx context.Context, externalID string, role enums.Role) error
	ListByRole(ctx context.Context, role enums.Role) ([]UserDTO, error)
	Delete(ctx context.Context, externalID string) error
}

// RoleSyncer mirrors the directory role back into the identity provider's
// metadata after registration.
type RoleSyncer interface {
	SyncRoleMetadata(ctx context.Context, externalID, role string) error
}

type service struct {
	repo   *Repository
	syncer RoleSyncer
	logg   *logger.Logger
}

// NewService constructs a directory service instance. The syncer may be nil
// when no provider write-back is wanted.
func NewService(repo *Repository, syncer RoleSyncer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	return &service{repo: repo, syncer: syncer, logg: logg}, nil
}

// Upsert registers or refreshes a directory row keyed by external id.
// Admin can never be claimed here; the allow-list is the only admin path.
func (s *service) Upsert(ctx context.Context, input UpsertInput) (*UserDTO, error) {
	externalID := strings.TrimSpace(input.ExternalID)
	email := strings.TrimSpace(input.Email)
	if externalID == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "externalId and email are required")
	}
	if !input.Role.IsSelfRegisterable() {
		if input.Role == enums.RoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin role cannot be assigned through registration")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be 'buyer' or 'seller'")
	}

	user, err := s.repo.Upsert(ctx, &models.User{
		ExternalID: externalID,
		Email:      email,
		Role:       input.Role,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert user")
	}

	// Best-effort write-back; registration already succeeded locally.
	if s.syncer != nil {
		if syncErr := s.syncer.SyncRoleMetadata(ctx, externalID, input.Role.String()); syncErr != nil && s.logg != nil {
			failCtx := s.logg.WithUserID(ctx, externalID)
			s.logg.Warn(s.logg.WithField(failCtx, "sync_error", syncErr.Error()), "identity role metadata sync failed")
		}
	}

	return NewUserDTO(user), nil
}

func (s *service) FindByExternalID(ctx context.Context, externalID string) (*UserDTO, error) {
	user, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return NewUserDTO(user), nil
}

// Role returns the stored role for the external id. Reads storage on every
// call so authorization state is always fresh.
func (s *service) Role(ctx context.Context, externalID string) (enums.Role, error) {
	user, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "no role assigned")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load role")
	}
	return user.Role, nil
}

func (s *service) UpdateRole(ctx context.Context, externalID string, role enums.Role) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := s.repo.UpdateRole(ctx, externalID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update role")
	}
	return nil
}

func (s *service) ListByRole(ctx context.Context, role enums.Role) ([]UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, *NewUserDTO(&users[i]))
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, externalID string) error {
	if err := s.repo.Delete(ctx, externalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete user")
	}
	return nil
}
