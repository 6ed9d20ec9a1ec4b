// Package document holds the table part model shared by the selling
// and stock entry documents: line items, header adjustments and the
// document-level totals.
package document

import (
	"github.com/shopspring/decimal"

	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/pricing"
)

// LineItem is one row of a document's table part. Monetary figures are
// the output of the pricing calculator; quantities are in the row's
// selected unit, with Conversion mapping back to base pieces.
type LineItem struct {
	ID id.ID `db:"id" json:"id"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`
	ProductName string `db:"product_name" json:"productName"`

	UnitID     string          `db:"unit_id" json:"unitId"`
	UnitName   string          `db:"unit_name" json:"unitName"`
	Conversion decimal.Decimal `db:"conversion" json:"conversion"`
	// MultiUnitID is set when the row sells an alternate unit.
	MultiUnitID *string `db:"multi_unit_id" json:"multiUnitId,omitempty"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	DiscountAmount  types.Money `db:"discount_amount" json:"discountAmount"`
	// EditedDiscount records which discount field the user set last.
	EditedDiscount pricing.DiscountField `db:"-" json:"-"`

	Gross types.Money `db:"gross" json:"gross"`
	Net   types.Money `db:"net" json:"net"`
	VAT   types.Money `db:"vat" json:"vat"`
	Total types.Money `db:"total" json:"total"`

	// CostBasis is basePurchasePrice scaled by Conversion.
	CostBasis types.Money `db:"cost_basis" json:"costBasis"`

	// SellRetail and SellWholesale are the selling prices a stock entry
	// row records for the goods it brings in, in the row's unit.
	// Profit is the retail margin over cost; editing either side
	// re-derives the other. Selling documents leave all three zero.
	SellRetail    types.Money `db:"sell_retail" json:"sellRetail"`
	SellWholesale types.Money `db:"sell_wholesale" json:"sellWholesale"`
	Profit        types.Money `db:"profit" json:"profit"`

	BatchID     *id.ID `db:"batch_id" json:"batchId,omitempty"`
	BatchNumber string `db:"batch_number" json:"batchNumber,omitempty"`
	// BatchMaxPieces caps the row when a specific batch was chosen,
	// in base-unit pieces. Nil means the row draws from shared stock.
	BatchMaxPieces *decimal.Decimal `db:"-" json:"-"`
}

// NewLineItem returns an empty row with conversion 1.
func NewLineItem() *LineItem {
	return &LineItem{
		ID:         id.New(),
		Conversion: types.One(),
	}
}

// HasProduct reports whether a product was selected into the row.
func (l *LineItem) HasProduct() bool {
	return !id.IsNil(l.ProductID)
}

// IsComplete reports whether the row can be committed: product chosen,
// positive quantity and positive price.
func (l *LineItem) IsComplete() bool {
	return l.HasProduct() && l.Quantity.IsPositive() && l.UnitPrice.IsPositive()
}

// BasePieces is the row quantity expressed in base-unit pieces.
func (l *LineItem) BasePieces() decimal.Decimal {
	c := l.Conversion
	if !c.IsPositive() {
		c = types.One()
	}
	return l.Quantity.Mul(c)
}

// PricingInput maps the row onto the calculator's input.
func (l *LineItem) PricingInput() pricing.Input {
	return pricing.Input{
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
		DiscountAmount:  l.DiscountAmount,
		Edited:          l.EditedDiscount,
	}
}

// ApplyFigures writes the calculator output back onto the row.
func (l *LineItem) ApplyFigures(f pricing.Figures) {
	l.Gross = f.Gross
	l.DiscountPercent = f.DiscountPercent
	l.DiscountAmount = f.DiscountAmount
	l.Net = f.Net
	l.VAT = f.VAT
	l.Total = f.Total
}

// Clone returns a deep value copy used as the row tracker snapshot.
func (l *LineItem) Clone() *LineItem {
	cp := *l
	if l.MultiUnitID != nil {
		v := *l.MultiUnitID
		cp.MultiUnitID = &v
	}
	if l.BatchID != nil {
		v := *l.BatchID
		cp.BatchID = &v
	}
	if l.BatchMaxPieces != nil {
		v := *l.BatchMaxPieces
		cp.BatchMaxPieces = &v
	}
	return &cp
}

// Reset clears the row back to an unselected state, keeping its id.
func (l *LineItem) Reset() {
	rowID := l.ID
	*l = LineItem{ID: rowID, Conversion: types.One()}
}
