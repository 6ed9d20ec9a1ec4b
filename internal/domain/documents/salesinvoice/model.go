// Package salesinvoice provides the SalesInvoice document: a retail or
// wholesale sale that deducts stock.
package salesinvoice

import (
	"context"

	"posline/internal/core/apperror"
	"posline/internal/core/entity"
	"posline/internal/core/types"
	"posline/internal/domain/document"
	"posline/internal/domain/pricing"
)

// SalesInvoice is a selling document with a line-item table part and
// header-level adjustments.
type SalesInvoice struct {
	entity.Document

	CustomerName string `db:"customer_name" json:"customerName,omitempty"`

	// Pricing regime fixed when the document is opened
	Tier    pricing.RateTier `db:"tier" json:"tier"`
	TaxType pricing.TaxType  `db:"tax_type" json:"taxType"`
	TaxMode pricing.TaxMode  `db:"tax_mode" json:"taxMode"`
	TaxRate types.Money      `db:"tax_rate" json:"taxRate"`

	document.Adjustments

	// Persisted totals (recomputed from lines before save)
	SubTotal   types.Money `db:"sub_total" json:"subTotal"`
	GrandTotal types.Money `db:"grand_total" json:"grandTotal"`
	Balance    types.Money `db:"balance" json:"balance"`
	NetBalance types.Money `db:"net_balance" json:"netBalance"`
	TotalVAT   types.Money `db:"total_vat" json:"totalVat"`

	Lines []*document.LineItem `db:"-" json:"lines"`
}

// New creates an empty sales invoice in the given pricing regime.
func New(tier pricing.RateTier, taxType pricing.TaxType, taxMode pricing.TaxMode, taxRate types.Money) *SalesInvoice {
	return &SalesInvoice{
		Document: entity.NewDocument(),
		Tier:     tier,
		TaxType:  taxType,
		TaxMode:  taxMode,
		TaxRate:  taxRate,
		Lines:    make([]*document.LineItem, 0),
	}
}

// RecalculateTotals recomputes the persisted totals from the lines and
// header adjustments.
func (d *SalesInvoice) RecalculateTotals() {
	calc := pricing.NewCalculator(d.TaxRate)
	t := document.ComputeTotals(d.Lines, &d.Adjustments, d.TaxType == pricing.Taxed, calc)
	d.SubTotal = t.SubTotal
	d.GrandTotal = t.GrandTotal
	d.Balance = t.Balance
	d.NetBalance = t.NetBalance
	d.TotalVAT = t.TotalVAT
}

// Validate implements entity.Validatable.
func (d *SalesInvoice) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if !pricing.IsValidTier(d.Tier) {
		return apperror.NewValidation("unknown rate tier").
			WithDetail("field", "tier").
			WithDetail("tier", string(d.Tier))
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
		if !line.UnitPrice.IsPositive() {
			return apperror.NewValidation("price must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
