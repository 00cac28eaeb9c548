package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kartik-parmar007/marketplace-backend/internal/directory"
	"github.com/kartik-parmar007/marketplace-backend/pkg/db/models"
	"github.com/kartik-parmar007/marketplace-backend/pkg/enums"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
	"gorm.io/gorm"
)

// SellerDirectory is the directory surface the catalog needs: the referential
// check on create and the seller join on product detail reads.
type SellerDirectory interface {
	FindByExternalID(ctx context.Context, externalID string) (*directory.UserDTO, error)
	Role(ctx context.Context, externalID string) (enums.Role, error)
}

// MediaRemover deletes a stored media file by its public path. Removal is
// best-effort housekeeping; failures never fail the catalog write.
type MediaRemover interface {
	Remove(publicPath string) error
}

// Service exposes catalog operations. The owner-scoped variants enforce that
// the acting seller owns the product; the unscoped variants are for admin use.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	ListAll(ctx context.Context) ([]ProductDTO, error)
	ListBySeller(ctx context.Context, sellerID string) ([]ProductDTO, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	UpdateOwned(ctx context.Context, sellerID string, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	DeleteOwned(ctx context.Context, sellerID string, id uuid.UUID) (*ProductDTO, error)
}

type service struct {
	repo    *Repository
	sellers SellerDirectory
	media   MediaRemover
	logg    *logger.Logger
}

// NewService constructs a catalog service instance. media may be nil when
// upload storage is disabled.
func NewService(repo *Repository, sellers SellerDirectory, media MediaRemover, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller directory required")
	}
	return &service{repo: repo, sellers: sellers, media: media, logg: logg}, nil
}

// Create validates and persists a new listing. Products carry no database
// foreign key to their seller, so ownership integrity is checked here against
// the directory before the insert.
func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.PriceCents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and price are required")
	}
	if *input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	stock := 0
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		stock = *input.Stock
	}
	sellerID := strings.TrimSpace(input.SellerID)
	if sellerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	role, err := s.sellers.Role(ctx, sellerID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller account not found")
		}
		return nil, err
	}
	if role != enums.RoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller role required to own products")
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Name:        name,
		Description: normalizeDescription(input.Description),
		PriceCents:  *input.PriceCents,
		Stock:       stock,
		ImageURL:    input.ImageURL,
		SellerID:    sellerID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create product")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListAll(ctx context.Context) ([]ProductDTO, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return toDTOs(products), nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID string) ([]ProductDTO, error) {
	products, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list seller products")
	}
	return toDTOs(products), nil
}

// GetDetail loads a product and joins the seller's display fields from the
// directory at read time. A seller row that has since disappeared degrades to
// the raw seller id rather than failing the read.
func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetailDTO{ProductDTO: *NewProductDTO(product), SellerName: product.SellerID}
	seller, err := s.sellers.FindByExternalID(ctx, product.SellerID)
	if err != nil {
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			if s.logg != nil {
				failCtx := s.logg.WithProductID(ctx, id.String())
				s.logg.Warn(s.logg.WithField(failCtx, "lookup_error", err.Error()), "seller lookup failed on product detail")
			}
		}
		return detail, nil
	}
	if name := seller.DisplayName(); name != "" {
		detail.SellerName = name
	}
	detail.SellerEmail = seller.Email
	return detail, nil
}

// Update mutates any product regardless of owner.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, product, input)
}

// UpdateOwned mutates a product only when the acting seller owns it. The
// existence check runs first so a foreign product id reads as not found, never
// as forbidden.
func (s *service) UpdateOwned(ctx context.Context, sellerID string, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only update your own products")
	}
	return s.applyUpdate(ctx, product, input)
}

// Delete removes any product and returns its final state.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	if product.ImageURL != nil {
		s.removeMedia(ctx, *product.ImageURL)
	}
	return NewProductDTO(product), nil
}

// DeleteOwned removes a product only when the acting seller owns it and
// returns a snapshot of the deleted row.
func (s *service) DeleteOwned(ctx context.Context, sellerID string, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you can only delete your own products")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	if product.ImageURL != nil {
		s.removeMedia(ctx, *product.ImageURL)
	}
	return NewProductDTO(product), nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

// applyUpdate copies present fields onto the loaded row and saves it. Absent
// fields keep their stored values; a present empty description clears it.
func (s *service) applyUpdate(ctx context.Context, product *models.Product, input UpdateInput) (*ProductDTO, error) {
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.Description != nil {
		product.Description = normalizeDescription(input.Description)
	}
	var replaced *string
	if input.ImageURL != nil {
		if product.ImageURL != nil && *product.ImageURL != *input.ImageURL {
			replaced = product.ImageURL
		}
		product.ImageURL = input.ImageURL
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	if replaced != nil {
		s.removeMedia(ctx, *replaced)
	}
	return NewProductDTO(saved), nil
}

// removeMedia drops a media file that no product row references anymore.
func (s *service) removeMedia(ctx context.Context, path string) {
	if s.media == nil || path == "" {
		return
	}
	if err := s.media.Remove(path); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "media_path", path), "failed to remove replaced media file")
	}
}

// normalizeDescription maps empty or whitespace-only text to an absent value.
func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
