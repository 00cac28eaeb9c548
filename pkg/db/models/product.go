package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a single marketplace listing owned by one seller identity.
// SellerID references users.external_id but is deliberately not a database
// foreign key; the catalog service checks the reference at create time.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	PriceCents  int64     `gorm:"column:price_cents;not null" json:"price_cents"`
	Stock       int       `gorm:"column:stock;not null;default:0" json:"stock"`
	ImageURL    *string   `gorm:"column:image_url" json:"image_url,omitempty"`
	SellerID    string    `gorm:"column:seller_id;not null;index" json:"seller_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
