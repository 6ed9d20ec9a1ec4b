// Package pricing provides the line-item pricing and tax calculator.
package pricing

import (
	"github.com/shopspring/decimal"

	"posline/internal/core/types"
)

// RateTier selects which price column applies to a sales document.
type RateTier string

const (
	TierRetail    RateTier = "retail"
	TierWholesale RateTier = "wholesale"
	TierSpecial1  RateTier = "special1"
	TierSpecial2  RateTier = "special2"
)

// IsValidTier reports whether t is a known rate tier.
func IsValidTier(t RateTier) bool {
	switch t {
	case TierRetail, TierWholesale, TierSpecial1, TierSpecial2:
		return true
	}
	return false
}

// TierPrices holds the per-tier price columns of a product or alternate unit.
type TierPrices struct {
	Retail    types.Money `db:"retail_price" json:"retailPrice"`
	Wholesale types.Money `db:"wholesale_price" json:"wholesalePrice"`
	Special1  types.Money `db:"special1_price" json:"special1Price"`
	Special2  types.Money `db:"special2_price" json:"special2Price"`
}

// ForTier returns the price for the requested tier.
// A zero or absent tier price falls back through retail, then wholesale,
// then zero.
func (p TierPrices) ForTier(t RateTier) types.Money {
	var v types.Money
	switch t {
	case TierRetail:
		v = p.Retail
	case TierWholesale:
		v = p.Wholesale
	case TierSpecial1:
		v = p.Special1
	case TierSpecial2:
		v = p.Special2
	}

	if v.IsPositive() {
		return v
	}
	if p.Retail.IsPositive() {
		return p.Retail
	}
	if p.Wholesale.IsPositive() {
		return p.Wholesale
	}
	return decimal.Zero
}
