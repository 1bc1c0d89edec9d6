package checkout

import (
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

// ShippingFees maps shipping-method keys to flat fees in normalized currency
// units. Unrecognized keys fall back to the standard fee.
type ShippingFees struct {
	Standard int64
	Express  int64
	SameDay  int64
}

// basisPointsDenominator converts basis points to a fraction (1400 bp = 14%).
const basisPointsDenominator = 10_000

// Calculator derives order totals from sanitized cart items and a shipping
// method. It is deterministic and side-effect-free, so results can be memoized
// per (cart, method) pair by the caller.
//
// All arithmetic is fixed-point on int64 amounts: unit prices are normalized
// to the target currency through a rational conversion rate and tax is applied
// in basis points, both rounded half up.
type Calculator struct {
	fees      ShippingFees
	taxRateBP int64
	fxNum     int64
	fxDen     int64
}

// NewCalculator creates a total calculator. taxRateBP is the VAT rate in basis
// points. fxNum/fxDen is the source-to-normalized currency conversion rate; a
// rate of 1/1 means prices are already in normalized units.
func NewCalculator(fees ShippingFees, taxRateBP, fxNum, fxDen int64) *Calculator {
	if fxNum <= 0 {
		fxNum = 1
	}
	if fxDen <= 0 {
		fxDen = 1
	}
	return &Calculator{
		fees:      fees,
		taxRateBP: taxRateBP,
		fxNum:     fxNum,
		fxDen:     fxDen,
	}
}

// Normalize converts a source-currency amount to normalized currency units,
// rounding half up.
func (c *Calculator) Normalize(amount int64) int64 {
	return (amount*c.fxNum + c.fxDen/2) / c.fxDen
}

// ShippingFee returns the flat fee for the given method key. Unknown keys get
// the standard fee.
func (c *Calculator) ShippingFee(method string) int64 {
	switch method {
	case domain.ShippingExpress:
		return c.fees.Express
	case domain.ShippingSameDay:
		return c.fees.SameDay
	default:
		return c.fees.Standard
	}
}

// Calculate sums unit price x quantity into the subtotal, adds the shipping
// fee for the selected method, applies VAT on the subtotal, and returns the
// combined totals. Total == Subtotal + ShippingCost + Tax holds exactly.
func (c *Calculator) Calculate(items []domain.CartLineItem, method string) domain.OrderTotals {
	var subtotal int64
	for _, item := range items {
		subtotal += c.Normalize(item.UnitPrice) * int64(item.Quantity)
	}

	shipping := c.ShippingFee(method)
	tax := (subtotal*c.taxRateBP + basisPointsDenominator/2) / basisPointsDenominator

	return domain.OrderTotals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal + shipping + tax,
	}
}
