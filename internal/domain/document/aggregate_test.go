package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/pricing"
)

func taxedLine(total, vat string) *LineItem {
	l := NewLineItem()
	l.ProductID = id.New()
	l.Total = types.MustMoney(total)
	l.VAT = types.MustMoney(vat)
	return l
}

func TestComputeTotals_SumsCommittedLinesOnly(t *testing.T) {
	lines := []*LineItem{
		taxedLine("105.00", "5.00"),
		taxedLine("52.50", "2.50"),
		NewLineItem(), // rows without a product do not count
	}

	tot := ComputeTotals(lines, &Adjustments{}, true, pricing.NewCalculator(types.MustMoney("5")))
	assert.True(t, tot.SubTotal.Equal(types.MustMoney("157.50")), "got %s", tot.SubTotal)
	assert.True(t, tot.GrandTotal.Equal(types.MustMoney("157.50")))
	assert.True(t, tot.LineVAT.Equal(types.MustMoney("7.50")))
	assert.True(t, tot.TotalVAT.Equal(types.MustMoney("7.50")))
}

func TestComputeTotals_GrandTotalFormula(t *testing.T) {
	adj := Adjustments{
		OtherDiscount: types.MustMoney("10"),
		OtherCharges:  types.MustMoney("4"),
		Freight:       types.MustMoney("6"),
		MiscCharge:    types.MustMoney("1"),
		RoundOff:      types.MustMoney("-0.50"),
	}

	tot := ComputeTotals([]*LineItem{taxedLine("100.00", "0")}, &adj, false, pricing.Calculator{})
	assert.True(t, tot.GrandTotal.Equal(types.MustMoney("100.50")), "got %s", tot.GrandTotal)
}

func TestComputeTotals_PercentDiscountRederivesAmount(t *testing.T) {
	adj := Adjustments{}
	adj.SetOtherDiscountPercent(types.MustMoney("10"))

	tot := ComputeTotals([]*LineItem{taxedLine("200.00", "0")}, &adj, false, pricing.Calculator{})
	assert.True(t, adj.OtherDiscount.Equal(types.MustMoney("20.00")), "amount follows percent")
	assert.True(t, tot.GrandTotal.Equal(types.MustMoney("180.00")))
}

func TestSetOtherDiscountPercent_ResetToZeroClearsAmount(t *testing.T) {
	adj := Adjustments{}
	adj.SetOtherDiscountPercent(types.MustMoney("10"))
	ComputeTotals([]*LineItem{taxedLine("200.00", "0")}, &adj, false, pricing.Calculator{})
	assert.True(t, adj.OtherDiscount.Equal(types.MustMoney("20.00")))

	adj.SetOtherDiscountPercent(types.Zero())
	tot := ComputeTotals([]*LineItem{taxedLine("200.00", "0")}, &adj, false, pricing.Calculator{})
	assert.True(t, adj.OtherDiscount.IsZero(), "got %s", adj.OtherDiscount)
	assert.True(t, tot.GrandTotal.Equal(types.MustMoney("200.00")), "got %s", tot.GrandTotal)
}

func TestSetOtherDiscountAmount_DropsPercent(t *testing.T) {
	adj := Adjustments{}
	adj.SetOtherDiscountPercent(types.MustMoney("10"))
	adj.SetOtherDiscountAmount(types.MustMoney("15"))

	tot := ComputeTotals([]*LineItem{taxedLine("200.00", "0")}, &adj, false, pricing.Calculator{})
	assert.True(t, adj.OtherDiscount.Equal(types.MustMoney("15")), "flat amount is not overwritten")
	assert.True(t, adj.OtherDiscPercent.IsZero())
	assert.True(t, tot.GrandTotal.Equal(types.MustMoney("185.00")))
}

func TestComputeTotals_AdjustmentVATIsInformational(t *testing.T) {
	adj := Adjustments{Freight: types.MustMoney("105")}

	tot := ComputeTotals([]*LineItem{taxedLine("105.00", "5.00")}, &adj, true, pricing.NewCalculator(types.MustMoney("5")))
	assert.True(t, tot.AdjustmentVAT.Equal(types.MustMoney("5.00")), "got %s", tot.AdjustmentVAT)
	assert.True(t, tot.TotalVAT.Equal(types.MustMoney("10.00")))
	assert.True(t, tot.GrandTotal.Equal(types.MustMoney("210.00")), "freight enters gross, its VAT does not add on top")
}

func TestComputeTotals_Balances(t *testing.T) {
	adj := Adjustments{
		CashReceived: types.MustMoney("50"),
		CardAmount:   types.MustMoney("30"),
		OldBalance:   types.MustMoney("12.25"),
	}

	tot := ComputeTotals([]*LineItem{taxedLine("100.00", "0")}, &adj, false, pricing.Calculator{})
	assert.True(t, tot.Balance.Equal(types.MustMoney("20.00")))
	assert.True(t, tot.NetBalance.Equal(types.MustMoney("32.25")))
}

func TestLineItem_BasePieces(t *testing.T) {
	l := NewLineItem()
	l.Quantity = types.MustMoney("2")
	l.Conversion = types.MustMoney("12")
	assert.True(t, l.BasePieces().Equal(types.MustMoney("24")))

	l.Conversion = types.Zero()
	assert.True(t, l.BasePieces().Equal(types.MustMoney("2")), "non-positive conversion counts as 1")
}

func TestLineItem_Clone(t *testing.T) {
	l := NewLineItem()
	l.ProductID = id.New()
	l.Quantity = types.MustMoney("3")
	batchMax := types.MustMoney("7")
	l.BatchMaxPieces = &batchMax

	c := l.Clone()
	c.Quantity = types.MustMoney("9")
	*c.BatchMaxPieces = types.MustMoney("1")

	assert.True(t, l.Quantity.Equal(types.MustMoney("3")))
	assert.True(t, l.BatchMaxPieces.Equal(types.MustMoney("7")), "batch cap is deep-copied")
}

func TestLineItem_Reset(t *testing.T) {
	l := NewLineItem()
	keep := l.ID
	l.ProductID = id.New()
	l.Quantity = types.MustMoney("3")
	l.UnitPrice = types.MustMoney("15")

	l.Reset()
	assert.Equal(t, keep, l.ID, "identity survives a reset")
	assert.False(t, l.HasProduct())
	assert.True(t, l.Quantity.IsZero())
}
