package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormValue reads one multipart field and reports whether the client sent it
// at all. Presence matters: an absent field leaves stored data untouched
// while a present empty value is an explicit assignment.
func FormValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ParsePriceCents converts a decimal money string into integer minor units.
// More than two fractional digits is rejected rather than rounded.
func ParsePriceCents(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price must be a number")
	}
	cents := parsed.Mul(hundred)
	if !cents.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price can have at most two decimal places")
	}
	if cents.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return cents.IntPart(), nil
}

// ParseStock converts a stock quantity string into a non-negative integer.
func ParseStock(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "stock must be a whole number")
	}
	stock, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "stock must be a whole number")
	}
	if stock < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return stock, nil
}
