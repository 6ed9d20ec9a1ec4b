package uom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/pricing"
)

func testProduct() *product.Product {
	p := product.NewProduct("P001", "Cola", "u-pc", "pc")
	p.PurchasePrice = types.MustMoney("10")
	p.TierPrices = pricing.TierPrices{
		Retail:    types.MustMoney("15"),
		Wholesale: types.MustMoney("12"),
	}

	dozenBarcode := "4711"
	p.AlternateUnits = []product.AlternateUnit{{
		UnitID:     id.New(),
		Name:       "dozen",
		Conversion: types.MustMoney("12"),
		TierPrices: pricing.TierPrices{
			Retail:    types.MustMoney("170"),
			Wholesale: types.MustMoney("140"),
		},
		Barcode: &dozenBarcode,
	}}
	return p
}

func TestBuildTierOptions(t *testing.T) {
	p := testProduct()

	opts := BuildTierOptions(p, pricing.TierRetail)
	require.Len(t, opts, 2)

	assert.True(t, opts[0].IsBase)
	assert.Equal(t, "u-pc", opts[0].UnitID)
	assert.True(t, opts[0].Conversion.Equal(types.One()))
	assert.True(t, opts[0].Price.Equal(types.MustMoney("15")))

	assert.False(t, opts[1].IsBase)
	assert.Equal(t, "dozen", opts[1].Name)
	assert.True(t, opts[1].Conversion.Equal(types.MustMoney("12")))
	assert.True(t, opts[1].Price.Equal(types.MustMoney("170")))
}

func TestBuildTierOptions_BatchTrackedSellsBaseOnly(t *testing.T) {
	p := testProduct()
	p.AllowBatches = true

	opts := BuildTierOptions(p, pricing.TierRetail)
	require.Len(t, opts, 1)
	assert.True(t, opts[0].IsBase)
}

func TestBuildCostOptions_ScalesPurchasePrice(t *testing.T) {
	p := testProduct()

	opts := BuildCostOptions(p)
	require.Len(t, opts, 2)

	assert.True(t, opts[0].Price.Equal(types.MustMoney("10")))
	// A dozen costs 12 base pieces at purchase price.
	assert.True(t, opts[1].Price.Equal(types.MustMoney("120")), "dozen cost = %s", opts[1].Price)
}

func TestSelectDefault(t *testing.T) {
	p := testProduct()
	opts := BuildTierOptions(p, pricing.TierRetail)
	altID := opts[1].UnitID

	t.Run("resolved unit id wins", func(t *testing.T) {
		got := SelectDefault(opts, altID, "")
		assert.Equal(t, "dozen", got.Name)
	})

	t.Run("alternate tag match", func(t *testing.T) {
		got := SelectDefault(opts, "", "4711")
		assert.Equal(t, "dozen", got.Name)
	})

	t.Run("falls back to base", func(t *testing.T) {
		got := SelectDefault(opts, "", "no-such-tag")
		assert.True(t, got.IsBase)
	})

	t.Run("empty options", func(t *testing.T) {
		got := SelectDefault(nil, "", "")
		assert.Equal(t, Option{}, got)
	})
}

func TestCostBasisAndProfit(t *testing.T) {
	p := testProduct()
	opts := BuildTierOptions(p, pricing.TierRetail)

	base := CostBasis(p.PurchasePrice, opts[0])
	assert.True(t, base.Equal(types.MustMoney("10")))

	dozen := CostBasis(p.PurchasePrice, opts[1])
	assert.True(t, dozen.Equal(types.MustMoney("120")))

	profit := Profit(types.MustMoney("170"), p.PurchasePrice, opts[1])
	assert.True(t, profit.Equal(types.MustMoney("50")))
}
