// Package openingstock provides the OpeningStock document: the initial
// stock entry that seeds product quantities at cost.
package openingstock

import (
	"context"

	"posline/internal/core/apperror"
	"posline/internal/core/entity"
	"posline/internal/core/types"
	"posline/internal/domain/document"
)

// OpeningStock records initial on-hand quantities. Lines are priced at
// purchase cost; selling tiers do not apply.
type OpeningStock struct {
	entity.Document

	// Persisted totals
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalCost     types.Money    `db:"total_cost" json:"totalCost"`

	Lines []*document.LineItem `db:"-" json:"lines"`
}

// New creates an empty opening stock document.
func New() *OpeningStock {
	return &OpeningStock{
		Document: entity.NewDocument(),
		Lines:    make([]*document.LineItem, 0),
	}
}

// RecalculateTotals sums quantity and cost across lines.
func (d *OpeningStock) RecalculateTotals() {
	d.TotalQuantity = types.Zero()
	d.TotalCost = types.Zero()
	for _, l := range d.Lines {
		if !l.HasProduct() {
			continue
		}
		d.TotalQuantity = d.TotalQuantity.Add(l.BasePieces())
		d.TotalCost = types.Round2(d.TotalCost.Add(l.Total))
	}
}

// Validate implements entity.Validatable.
func (d *OpeningStock) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range d.Lines {
		if !line.HasProduct() {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("cost cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.SellRetail.IsNegative() || line.SellWholesale.IsNegative() {
			return apperror.NewValidation("selling price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
