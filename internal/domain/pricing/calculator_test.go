package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"posline/internal/core/types"
)

func money(s string) types.Money {
	return types.MustMoney(s)
}

func TestCompute_InclusiveVAT(t *testing.T) {
	calc := NewCalculator(money("5"))

	f := calc.Compute(Input{
		Quantity:  money("1"),
		UnitPrice: money("105"),
	}, Taxed, TaxInclusive)

	// A tax-inclusive price of 105 at 5% carries 5.00 of VAT and the
	// total stays at the quoted price.
	assert.True(t, f.Gross.Equal(money("105")), "gross = %s", f.Gross)
	assert.True(t, f.Net.Equal(money("105")), "net = %s", f.Net)
	assert.True(t, f.VAT.Equal(money("5.00")), "vat = %s", f.VAT)
	assert.True(t, f.Total.Equal(money("105.00")), "total = %s", f.Total)
}

func TestCompute_ExclusiveVAT(t *testing.T) {
	calc := NewCalculator(money("5"))

	f := calc.Compute(Input{
		Quantity:  money("1"),
		UnitPrice: money("105"),
	}, Taxed, TaxExclusive)

	assert.True(t, f.VAT.Equal(money("5.25")), "vat = %s", f.VAT)
	assert.True(t, f.Total.Equal(money("110.25")), "total = %s", f.Total)
}

func TestCompute_Untaxed(t *testing.T) {
	calc := NewCalculator(money("5"))

	f := calc.Compute(Input{
		Quantity:  money("3"),
		UnitPrice: money("40"),
	}, Untaxed, TaxInclusive)

	assert.True(t, f.VAT.IsZero())
	assert.True(t, f.Total.Equal(money("120")))
}

func TestCompute_DiscountByPercent(t *testing.T) {
	calc := NewCalculator(money("10"))

	f := calc.Compute(Input{
		Quantity:        money("2"),
		UnitPrice:       money("50"),
		DiscountPercent: money("10"),
		Edited:          DiscountByPercent,
	}, Taxed, TaxExclusive)

	assert.True(t, f.DiscountAmount.Equal(money("10.00")), "amount = %s", f.DiscountAmount)
	assert.True(t, f.Net.Equal(money("90.00")))
	assert.True(t, f.VAT.Equal(money("9.00")))
	assert.True(t, f.Total.Equal(money("99.00")))
}

func TestCompute_DiscountByAmount(t *testing.T) {
	calc := NewCalculator(money("10"))

	f := calc.Compute(Input{
		Quantity:       money("2"),
		UnitPrice:      money("50"),
		DiscountAmount: money("25"),
		Edited:         DiscountByAmount,
	}, Untaxed, TaxExclusive)

	// The typed amount wins; the percentage is derived from it.
	assert.True(t, f.DiscountAmount.Equal(money("25")))
	assert.True(t, f.DiscountPercent.Equal(money("25.00")), "percent = %s", f.DiscountPercent)
	assert.True(t, f.Net.Equal(money("75.00")))
}

func TestCompute_DiscountRoundTripStable(t *testing.T) {
	calc := NewCalculator(money("5"))

	in := Input{
		Quantity:        money("3"),
		UnitPrice:       money("33.33"),
		DiscountPercent: money("7"),
		Edited:          DiscountByPercent,
	}
	first := calc.Compute(in, Taxed, TaxExclusive)

	// Feed the derived amount back as if the user had typed it.
	second := calc.Compute(Input{
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		DiscountAmount: first.DiscountAmount,
		Edited:         DiscountByAmount,
	}, Taxed, TaxExclusive)

	diff := first.DiscountPercent.Sub(second.DiscountPercent).Abs()
	assert.True(t, diff.LessThanOrEqual(money("0.01")), "percent drifted by %s", diff)
	assert.True(t, first.Net.Equal(second.Net))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestCompute_Idempotent(t *testing.T) {
	calc := NewCalculator(money("12.5"))

	in := Input{
		Quantity:        money("7"),
		UnitPrice:       money("19.99"),
		DiscountPercent: money("3"),
		Edited:          DiscountByPercent,
	}

	first := calc.Compute(in, Taxed, TaxInclusive)
	second := calc.Compute(in, Taxed, TaxInclusive)

	assert.True(t, first.Gross.Equal(second.Gross))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.VAT.Equal(second.VAT))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestRetax_KeepsGrossAndDiscount(t *testing.T) {
	calc := NewCalculator(money("5"))

	f := calc.Compute(Input{
		Quantity:        money("2"),
		UnitPrice:       money("60"),
		DiscountPercent: money("10"),
		Edited:          DiscountByPercent,
	}, Taxed, TaxInclusive)

	flipped := calc.Retax(f, Taxed, TaxExclusive)

	assert.True(t, flipped.Gross.Equal(f.Gross))
	assert.True(t, flipped.DiscountAmount.Equal(f.DiscountAmount))
	assert.True(t, flipped.Total.GreaterThan(f.Total), "exclusive total adds VAT on top")
}

func TestAdjustmentVAT(t *testing.T) {
	calc := NewCalculator(money("5"))

	// 105 of tax-inclusive adjustments carry 5.00 of VAT.
	got := calc.AdjustmentVAT(money("105"))
	assert.True(t, got.Equal(money("5.00")), "adjustment vat = %s", got)
}

func TestTierPrices_Fallback(t *testing.T) {
	p := TierPrices{Retail: money("100")}

	assert.True(t, p.ForTier(TierWholesale).Equal(money("100")), "wholesale falls back to retail")
	assert.True(t, p.ForTier(TierRetail).Equal(money("100")))

	empty := TierPrices{}
	assert.True(t, empty.ForTier(TierRetail).Equal(decimal.Zero))
}
