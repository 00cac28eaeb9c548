package controllers

import (
	"net/http"

	"github.com/kartik-parmar007/marketplace-backend/api/responses"
	"github.com/kartik-parmar007/marketplace-backend/internal/catalog"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

// BuyerListProducts is the public storefront listing, newest first.
func BuyerListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, products, len(products))
	}
}

// BuyerGetProduct returns a single listing with the seller's display fields
// joined in.
func BuyerGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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
