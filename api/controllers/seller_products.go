package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kartik-parmar007/marketplace-backend/api/middleware"
	"github.com/kartik-parmar007/marketplace-backend/api/responses"
	"github.com/kartik-parmar007/marketplace-backend/api/validators"
	"github.com/kartik-parmar007/marketplace-backend/internal/catalog"
	"github.com/kartik-parmar007/marketplace-backend/internal/uploads"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

const multipartMemoryLimit = 10 << 20

// SellerCreateProduct creates a listing owned by the acting seller from a
// multipart form, storing the optional image before the insert.
func SellerCreateProduct(svc catalog.Service, store *uploads.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		input := catalog.CreateInput{SellerID: userID}
		if name, ok := validators.FormValue(r, "name"); ok {
			input.Name = name
		}
		if value, ok := validators.FormValue(r, "description"); ok {
			input.Description = &value
		}
		if value, ok := validators.FormValue(r, "price"); ok {
			cents, err := validators.ParsePriceCents(value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceCents = &cents
		}
		if value, ok := validators.FormValue(r, "stock"); ok {
			stock, err := validators.ParseStock(value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Stock = &stock
		}

		imageURL, err := saveImageIfPresent(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ImageURL = imageURL

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			discardImage(store, imageURL)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, product)
	}
}

// SellerListOwnProducts lists only the acting seller's products.
func SellerListOwnProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		products, err := svc.ListBySeller(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, products, len(products))
	}
}

// SellerListAllProducts gives sellers the full marketplace view for pricing
// research. Mutations stay scoped to their own products.
func SellerListAllProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, products, len(products))
	}
}

// SellerUpdateProduct applies a partial multipart update to a product the
// acting seller owns. Absent fields keep their stored values.
func SellerUpdateProduct(svc catalog.Service, store *uploads.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		var input catalog.UpdateInput
		if value, ok := validators.FormValue(r, "name"); ok {
			input.Name = &value
		}
		if value, ok := validators.FormValue(r, "description"); ok {
			input.Description = &value
		}
		if value, ok := validators.FormValue(r, "price"); ok {
			cents, err := validators.ParsePriceCents(value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceCents = &cents
		}
		if value, ok := validators.FormValue(r, "stock"); ok {
			stock, err := validators.ParseStock(value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Stock = &stock
		}

		imageURL, err := saveImageIfPresent(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ImageURL = imageURL

		product, err := svc.UpdateOwned(r.Context(), userID, productID, input)
		if err != nil {
			discardImage(store, imageURL)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// SellerDeleteProduct removes a product the acting seller owns and returns a
// snapshot of the deleted listing.
func SellerDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.DeleteOwned(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "product deleted", product)
	}
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}

// saveImageIfPresent stores an attached product image. The upload field is
// named "media"; "image" is accepted as well.
func saveImageIfPresent(r *http.Request, store *uploads.Storage) (*string, error) {
	file, header, err := r.FormFile("media")
	if errors.Is(err, http.ErrMissingFile) {
		file, header, err = r.FormFile("image")
	}
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image unreadable")
	}
	file.Close()

	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media uploads are not enabled")
	}

	path, err := store.Save(r.Context(), header)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// discardImage removes a stored file after the write it was uploaded for
// failed. Cleanup failures are swallowed, the file is already orphaned.
func discardImage(store *uploads.Storage, imageURL *string) {
	if store == nil || imageURL == nil {
		return
	}
	_ = store.Remove(*imageURL)
}
