package models

import (
	"time"

	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
)

// User is a directory row linking an external identity to a local role.
// The external identity id is the natural key; the identity provider owns
// the credential side entirely.
type User struct {
	ExternalID string     `gorm:"column:external_id;primaryKey" json:"external_id"`
	Email      string     `gorm:"column:email;not null;index" json:"email"`
	Role       enums.Role `gorm:"column:role;type:text;not null" json:"role"`
	FirstName  *string    `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName   *string    `gorm:"column:last_name" json:"last_name,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// DisplayName joins the optional name parts for buyer-facing views.
func (u User) DisplayName() string {
	first := ""
	if u.FirstName != nil {
		first = *u.FirstName
	}
	last := ""
	if u.LastName != nil {
		last = *u.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}
