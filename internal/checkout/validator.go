package checkout

import (
	apperrors "github.com/Abanoub-Magdy-gabra/style-checkout/pkg/errors"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

// SanitizeCart filters raw cart entries down to well-formed line items.
// Entries missing an identifier or name, missing or negative price, or missing
// or non-positive quantity are discarded rather than failing the whole
// checkout. Pure, never returns an error.
func SanitizeCart(entries []domain.RawCartEntry) []domain.CartLineItem {
	items := make([]domain.CartLineItem, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.Name == "" {
			continue
		}
		if e.Price == nil || *e.Price < 0 {
			continue
		}
		if e.Quantity == nil || *e.Quantity <= 0 {
			continue
		}
		items = append(items, domain.CartLineItem{
			ProductID: e.ID,
			Name:      e.Name,
			UnitPrice: *e.Price,
			Quantity:  *e.Quantity,
			Size:      e.Size,
			Color:     e.Color,
			ImageURL:  e.ImageURL,
		})
	}
	return items
}

// ValidateContext confirms the checkout context is complete before any write
// is attempted. It returns the sanitized cart on success.
//
// Validity requires a present shipping address with non-empty first name,
// email and address line 1, and a non-empty sanitized cart. A nil address
// (e.g. the user navigated directly to confirmation) is invalid, not a panic.
// Missing address and empty cart are distinct errors so the caller can show
// a targeted error view.
func ValidateContext(addr *domain.ShippingAddress, entries []domain.RawCartEntry) ([]domain.CartLineItem, error) {
	items := SanitizeCart(entries)

	if addr == nil || addr.FirstName == "" || addr.Email == "" || addr.Address1 == "" {
		return nil, apperrors.MissingShippingInfo()
	}
	if len(items) == 0 {
		return nil, apperrors.EmptyCart()
	}

	return items, nil
}
