package directory

import (
	"strings"
	"time"

	"github.com/kartik-parmar007/marketplace-backend/pkg/db/models"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
)

// UpsertInput holds the validated registration payload.
type UpsertInput struct {
	ExternalID string
	Email      string
	Role       enums.Role
	FirstName  *string
	LastName   *string
}

// UserDTO is the directory row shape returned to callers.
type UserDTO struct {
	ExternalID string     `json:"external_id"`
	Email      string     `json:"email"`
	Role       enums.Role `json:"role"`
	FirstName  *string    `json:"first_name,omitempty"`
	LastName   *string    `json:"last_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DisplayName joins the optional name parts for buyer-facing views.
func (u UserDTO) DisplayName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}

// NewUserDTO maps a model to the response shape.
func NewUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ExternalID: user.ExternalID,
		Email:      user.Email,
		Role:       user.Role,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
