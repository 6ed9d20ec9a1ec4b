// Package stock computes per-row quantity caps against available stock
// and validates whole documents against live stock before submission.
package stock

import (
	"github.com/shopspring/decimal"

	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/document"
)

// CreditBack holds, per product, the base-unit pieces already deducted
// by the document being edited. Those pieces are returned to the pool
// before caps are computed, otherwise editing a saved document would
// see its own consumption as missing stock.
type CreditBack map[id.ID]decimal.Decimal

// BuildCreditBack sums the original lines of a persisted document into
// base pieces per product.
func BuildCreditBack(originalLines []*document.LineItem) CreditBack {
	cb := make(CreditBack, len(originalLines))
	for _, l := range originalLines {
		if !l.HasProduct() {
			continue
		}
		cb[l.ProductID] = cb[l.ProductID].Add(l.BasePieces())
	}
	return cb
}

// For returns the credited pieces for a product, zero when absent.
func (cb CreditBack) For(productID id.ID) decimal.Decimal {
	if cb == nil {
		return decimal.Decimal{}
	}
	return cb[productID]
}

// MaxQuantity returns the largest quantity the row may hold, expressed
// in the row's own unit.
//
// A row bound to a specific batch is capped by that batch alone and
// stays out of the shared pool. Any other row shares basePieces with
// every unbatched row of the same product.
func MaxQuantity(row *document.LineItem, others []*document.LineItem, basePieces decimal.Decimal) decimal.Decimal {
	c := row.Conversion
	if !c.IsPositive() {
		c = types.One()
	}

	if row.BatchMaxPieces != nil {
		return row.BatchMaxPieces.Div(c)
	}

	used := decimal.Decimal{}
	for _, r := range others {
		if r.ID == row.ID || !r.HasProduct() || r.ProductID != row.ProductID {
			continue
		}
		if r.BatchMaxPieces != nil {
			continue
		}
		used = used.Add(r.BasePieces())
	}

	return basePieces.Sub(used).Div(c)
}

// Clamp limits a requested quantity to [0, max].
func Clamp(requested, max decimal.Decimal) decimal.Decimal {
	if max.IsNegative() {
		return decimal.Decimal{}
	}
	if requested.GreaterThan(max) {
		return max
	}
	if requested.IsNegative() {
		return decimal.Decimal{}
	}
	return requested
}
