package directory

import (
	"context"

	"github.com/kartik-parmar007/marketplace-backend/pkg/db/models"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes directory persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a directory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByExternalID loads the user row for the given external identity id.
func (r *Repository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the row if absent, otherwise overwrites the mutable fields.
// The external id key never changes; repeated calls keep a single row.
func (r *Repository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.FindByExternalID(ctx, user.ExternalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if createErr := r.db.WithContext(ctx).Create(user).Error; createErr != nil {
				return nil, createErr
			}
			return user, nil
		}
		return nil, err
	}

	existing.Email = user.Email
	existing.Role = user.Role
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// UpdateRole overwrites the stored role for the given external id.
func (r *Repository) UpdateRole(ctx context.Context, externalID string, role enums.Role) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("external_id = ?", externalID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByRole returns every user holding the given role.
func (r *Repository) ListByRole(ctx context.Context, role enums.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes the user row.
func (r *Repository) Delete(ctx context.Context, externalID string) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "external_id = ?", externalID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
