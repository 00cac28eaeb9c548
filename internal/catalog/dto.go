package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/kartik-parmar007/marketplace-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// CreateInput holds the validated payload to create a listing. PriceCents is
// a pointer so "price omitted" stays distinguishable from "price zero".
type CreateInput struct {
	Name        string
	Description *string
	PriceCents  *int64
	Stock       *int
	ImageURL    *string
	SellerID    string
}

// UpdateInput holds optional mutation values. A nil field means "leave
// unchanged"; a present field is applied, including a present empty
// description, which clears the stored value.
type UpdateInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Stock       *int
	ImageURL    *string
}

// IsEmpty reports whether the update carries no field at all.
func (u UpdateInput) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.PriceCents == nil && u.Stock == nil && u.ImageURL == nil
}

// ProductDTO is the listing shape returned to all three role surfaces.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       string    `json:"price"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SellerID    string    `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductDetailDTO augments a listing with seller display fields joined from
// the directory at read time.
type ProductDetailDTO struct {
	ProductDTO
	SellerName  string `json:"seller_name"`
	SellerEmail string `json:"seller_email,omitempty"`
}

// NewProductDTO maps a model to the response shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       FormatPrice(product.PriceCents),
		PriceCents:  product.PriceCents,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		SellerID:    product.SellerID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// FormatPrice renders integer minor units as a fixed two-decimal string.
func FormatPrice(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
