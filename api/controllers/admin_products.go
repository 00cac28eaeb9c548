package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/kartik-parmar007/marketplace-backend/api/responses"
	"github.com/kartik-parmar007/marketplace-backend/api/validators"
	"github.com/kartik-parmar007/marketplace-backend/internal/catalog"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

type adminUpdateProductRequest struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Price       *json.Number `json:"price,omitempty"`
	Stock       *int         `json:"stock,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string      `json:"image_url,omitempty"`
}

// AdminListProducts lists every product in the catalog.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, products, len(products))
	}
}

// AdminGetProduct returns one product with its seller's contact details.
func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetDetail(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminUpdateProduct applies a partial JSON update to any product, with no
// ownership restriction. Omitted fields keep their stored values.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminUpdateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Stock:       payload.Stock,
			ImageURL:    payload.ImageURL,
		}
		if payload.Price != nil {
			cents, err := validators.ParsePriceCents(payload.Price.String())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceCents = &cents
		}

		product, err := svc.Update(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes any product and returns its final state.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Delete(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "product deleted", product)
	}
}
