package pricing

import (
	"github.com/shopspring/decimal"

	"posline/internal/core/types"
)

// TaxType says whether the document charges VAT at all.
type TaxType string

const (
	Taxed   TaxType = "taxed"
	Untaxed TaxType = "untaxed"
)

// TaxMode says whether quoted prices already contain VAT.
type TaxMode string

const (
	// TaxInclusive: the line price contains VAT; VAT is extracted, not added.
	TaxInclusive TaxMode = "inclusive"
	// TaxExclusive: VAT is added on top of the discounted net.
	TaxExclusive TaxMode = "exclusive"
)

// DiscountField identifies which discount input the user last edited.
// Only the other one is recomputed, so the typed value always wins.
type DiscountField int

const (
	DiscountByPercent DiscountField = iota
	DiscountByAmount
)

// Input carries one line's raw figures into the calculator.
type Input struct {
	Quantity  types.Quantity
	UnitPrice types.Money

	DiscountPercent types.Money
	DiscountAmount  types.Money
	Edited          DiscountField
}

// Figures is the complete set of derived monetary figures for one line.
// All values are rounded to 2 decimals.
type Figures struct {
	Gross           types.Money
	DiscountPercent types.Money
	DiscountAmount  types.Money
	Net             types.Money
	VAT             types.Money
	Total           types.Money
}

// Calculator computes line figures under a fixed VAT rate.
// It is pure: same inputs always give the same outputs.
type Calculator struct {
	Rate types.Money // percentage, e.g. 5
}

// NewCalculator creates a calculator for the given VAT percentage.
func NewCalculator(rate types.Money) Calculator {
	return Calculator{Rate: rate}
}

// Compute runs the full recalculation for a line after a change to
// quantity, price or either discount field.
func (c Calculator) Compute(in Input, taxType TaxType, mode TaxMode) Figures {
	f := Figures{
		DiscountPercent: in.DiscountPercent,
		DiscountAmount:  in.DiscountAmount,
	}

	f.Gross = types.Round2(in.Quantity.Mul(in.UnitPrice))

	// Only the field the user did not type into is recomputed.
	switch in.Edited {
	case DiscountByAmount:
		f.DiscountPercent = types.RateOf(in.DiscountAmount, f.Gross)
	default:
		f.DiscountAmount = types.PercentOf(f.Gross, in.DiscountPercent)
	}

	return c.Retax(f, taxType, mode)
}

// Retax recomputes net, VAT and total from the already-settled gross and
// discount amount. Used both as the tail of Compute and on its own when the
// document's tax type or mode flips: gross and discount must not move then.
func (c Calculator) Retax(f Figures, taxType TaxType, mode TaxMode) Figures {
	f.Net = types.Round2(f.Gross.Sub(f.DiscountAmount))

	if taxType != Taxed {
		f.VAT = decimal.Zero
		f.Total = f.Net
		return f
	}

	switch mode {
	case TaxInclusive:
		// Price already contains tax; extract the VAT share.
		f.VAT = types.Round2(f.Net.Mul(c.Rate).Div(types.Hundred().Add(c.Rate)))
		f.Total = types.Round2(f.Net)
	default: // TaxExclusive
		f.VAT = types.Round2(f.Net.Mul(c.Rate).Div(types.Hundred()))
		f.Total = types.Round2(f.Net.Add(f.VAT))
	}

	return f
}

// AdjustmentVAT extracts the VAT share contained in a net header adjustment
// figure. Header adjustments are treated as tax-inclusive for reporting;
// the result never feeds back into the grand total.
func (c Calculator) AdjustmentVAT(netAdjustments types.Money) types.Money {
	return types.Round2(netAdjustments.Mul(c.Rate).Div(types.Hundred().Add(c.Rate)))
}
