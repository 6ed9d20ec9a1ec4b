package document

import (
	"posline/internal/core/types"
	"posline/internal/domain/pricing"
)

// Adjustments are the document-level header figures applied on top of
// the line totals.
type Adjustments struct {
	OtherDiscount    types.Money `db:"other_discount" json:"otherDiscount"`
	OtherDiscPercent types.Money `db:"other_disc_percent" json:"otherDiscPercent"`
	OtherCharges     types.Money `db:"other_charges" json:"otherCharges"`
	Freight          types.Money `db:"freight" json:"freight"`
	MiscCharge       types.Money `db:"misc_charge" json:"miscCharge"`
	RoundOff         types.Money `db:"round_off" json:"roundOff"`

	CashReceived types.Money `db:"cash_received" json:"cashReceived"`
	CardAmount   types.Money `db:"card_amount" json:"cardAmount"`
	OldBalance   types.Money `db:"old_balance" json:"oldBalance"`

	// percentEdited marks the percent as the last-edited discount side,
	// so resetting it to zero still rederives the flat amount.
	// Deserialized documents leave it unset and fall back to the
	// positive-percent rule.
	percentEdited bool
}

// SetOtherDiscountPercent records a percent discount; the amount is
// derived from the current subtotal on the next totals computation,
// even when the percent was reset to zero.
func (a *Adjustments) SetOtherDiscountPercent(pct types.Money) {
	a.OtherDiscPercent = pct
	a.percentEdited = true
}

// SetOtherDiscountAmount records a flat discount and drops the percent:
// the two fields are not kept synchronized in that direction.
func (a *Adjustments) SetOtherDiscountAmount(amount types.Money) {
	a.OtherDiscount = amount
	a.OtherDiscPercent = types.Zero()
	a.percentEdited = false
}

// NetAdjustments is the signed sum of the tax-bearing adjustments.
func (a *Adjustments) NetAdjustments() types.Money {
	return a.OtherCharges.
		Add(a.Freight).
		Add(a.MiscCharge).
		Add(a.RoundOff).
		Sub(a.OtherDiscount)
}

// Totals is the computed money summary of a document.
type Totals struct {
	SubTotal   types.Money `json:"subTotal"`
	GrandTotal types.Money `json:"grandTotal"`
	Balance    types.Money `json:"balance"`
	NetBalance types.Money `json:"netBalance"`

	LineVAT types.Money `json:"lineVat"`
	// AdjustmentVAT is the tax share of the header adjustments. It is
	// reported for information only and never feeds GrandTotal.
	AdjustmentVAT types.Money `json:"adjustmentVat"`
	TotalVAT      types.Money `json:"totalVat"`
}

// ComputeTotals aggregates lines and header adjustments. When a percent
// other-discount is set, the flat amount is re-derived from the subtotal
// first. calc may be nil for untaxed documents.
func ComputeTotals(lines []*LineItem, adj *Adjustments, taxed bool, calc pricing.Calculator) Totals {
	var t Totals
	t.SubTotal = types.Zero()
	t.LineVAT = types.Zero()

	for _, l := range lines {
		if !l.HasProduct() {
			continue
		}
		t.SubTotal = types.Round2(t.SubTotal.Add(l.Total))
		t.LineVAT = types.Round2(t.LineVAT.Add(l.VAT))
	}

	if adj.percentEdited || adj.OtherDiscPercent.IsPositive() {
		adj.OtherDiscount = types.PercentOf(t.SubTotal, adj.OtherDiscPercent)
	}

	t.GrandTotal = types.Round2(t.SubTotal.
		Sub(adj.OtherDiscount).
		Add(adj.OtherCharges).
		Add(adj.Freight).
		Add(adj.MiscCharge).
		Add(adj.RoundOff))

	t.Balance = types.Round2(t.GrandTotal.Sub(adj.CashReceived).Sub(adj.CardAmount))
	t.NetBalance = types.Round2(t.Balance.Add(adj.OldBalance))

	t.AdjustmentVAT = types.Zero()
	if taxed {
		t.AdjustmentVAT = calc.AdjustmentVAT(adj.NetAdjustments())
	}
	t.TotalVAT = types.Round2(t.LineVAT.Add(t.AdjustmentVAT))
	return t
}
