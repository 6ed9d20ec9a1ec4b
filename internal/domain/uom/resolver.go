// Package uom resolves the selectable unit list for a product and the
// price, cost and conversion attached to each unit.
package uom

import (
	"github.com/shopspring/decimal"

	"posline/internal/core/types"
	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/pricing"
)

// Option is one selectable unit for a line: the base unit or one of the
// product's alternate (multi) units.
type Option struct {
	UnitID     string
	Name       string
	Conversion decimal.Decimal
	Price      types.Money
	IsBase     bool
	Tag        string
}

// BuildTierOptions builds the unit list for regular selling documents.
// The base unit is always first with conversion 1. Alternate units are
// offered only when batch tracking is disabled for the product, since a
// batch-tracked product sells in base pieces only.
func BuildTierOptions(p *product.Product, tier pricing.RateTier) []Option {
	opts := []Option{{
		UnitID:     p.BaseUnitID,
		Name:       p.BaseUnitName,
		Conversion: types.One(),
		Price:      p.TierPrices.ForTier(tier),
		IsBase:     true,
		Tag:        p.BarcodeTag(),
	}}

	if p.AllowBatches {
		return opts
	}

	for _, alt := range p.AlternateUnits {
		opts = append(opts, Option{
			UnitID:     alt.UnitID.String(),
			Name:       alt.Name,
			Conversion: alt.Conversion,
			Price:      alt.TierPrices.ForTier(tier),
			Tag:        alt.UnitTag(),
		})
	}
	return opts
}

// BuildCostOptions builds the unit list for cost-based documents such as
// opening stock entry: every unit is priced from the flat purchase price
// scaled by its conversion, ignoring the selling tiers.
func BuildCostOptions(p *product.Product) []Option {
	opts := []Option{{
		UnitID:     p.BaseUnitID,
		Name:       p.BaseUnitName,
		Conversion: types.One(),
		Price:      p.PurchasePrice,
		IsBase:     true,
		Tag:        p.BarcodeTag(),
	}}

	if p.AllowBatches {
		return opts
	}

	for _, alt := range p.AlternateUnits {
		opts = append(opts, Option{
			UnitID:     alt.UnitID.String(),
			Name:       alt.Name,
			Conversion: alt.Conversion,
			Price:      types.Round2(p.PurchasePrice.Mul(alt.Conversion)),
			Tag:        alt.UnitTag(),
		})
	}
	return opts
}

// SelectDefault picks the unit a free-text selection lands on.
// Priority: a unit id pre-resolved by barcode lookup, then an exact tag
// match on an alternate unit, then an exact tag match on the base unit,
// then the first option.
func SelectDefault(opts []Option, resolvedUnitID string, tag string) Option {
	if len(opts) == 0 {
		return Option{}
	}

	if resolvedUnitID != "" {
		for _, o := range opts {
			if o.UnitID == resolvedUnitID {
				return o
			}
		}
	}

	if tag != "" {
		for _, o := range opts {
			if !o.IsBase && o.Tag == tag {
				return o
			}
		}
		for _, o := range opts {
			if o.IsBase && o.Tag == tag {
				return o
			}
		}
	}

	return opts[0]
}

// CostBasis is the purchase cost attributed to one row quantity unit:
// the base purchase price scaled by the unit conversion.
func CostBasis(basePurchasePrice types.Money, opt Option) types.Money {
	if opt.IsBase {
		return basePurchasePrice
	}
	return types.Round2(basePurchasePrice.Mul(opt.Conversion))
}

// Profit is the per-unit margin for a row sold at unitPrice.
func Profit(unitPrice, basePurchasePrice types.Money, opt Option) types.Money {
	return types.Round2(unitPrice.Sub(CostBasis(basePurchasePrice, opt)))
}
