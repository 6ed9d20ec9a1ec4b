package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posline/internal/core/id"
	"posline/internal/core/types"
)

func TestResolve_NoBatches(t *testing.T) {
	r := Resolve(nil, true)
	assert.Nil(t, r.Batch)
	assert.False(t, r.ChoiceRequired)
}

func TestResolve_SingleBatch(t *testing.T) {
	b := &Batch{ID: id.New(), Number: "B-1", Quantity: types.MustMoney("5")}

	r := Resolve([]*Batch{b}, true)
	require.NotNil(t, r.Batch)
	assert.Equal(t, "B-1", r.Batch.Number)
	assert.False(t, r.ChoiceRequired)
}

func TestResolve_ManyBatchesTracked(t *testing.T) {
	batches := []*Batch{
		{ID: id.New(), Number: "B-1"},
		{ID: id.New(), Number: "B-2"},
	}

	r := Resolve(batches, true)
	assert.Nil(t, r.Batch)
	assert.True(t, r.ChoiceRequired)
	assert.Len(t, r.Candidates, 2)
}

func TestResolve_ManyBatchesUntrackedMerges(t *testing.T) {
	batches := []*Batch{
		{ID: id.New(), Number: "B-1", Quantity: types.MustMoney("4"), RetailPrice: types.MustMoney("10")},
		{ID: id.New(), Number: "B-2", Quantity: types.MustMoney("6"), RetailPrice: types.MustMoney("20")},
	}

	r := Resolve(batches, false)
	require.NotNil(t, r.Batch)
	assert.True(t, r.Batch.IsMerged())
	assert.False(t, r.ChoiceRequired)
}

func TestMerge_AveragesOpenBatches(t *testing.T) {
	productID := id.New()
	batches := []*Batch{
		{ProductID: productID, Number: "B-1", Quantity: types.MustMoney("4"), RetailPrice: types.MustMoney("10"), PurchasePrice: types.MustMoney("6")},
		{ProductID: productID, Number: "B-2", Quantity: types.MustMoney("6"), RetailPrice: types.MustMoney("20"), PurchasePrice: types.MustMoney("12")},
	}

	m := Merge(batches)
	require.NotNil(t, m)

	assert.Equal(t, MergedNumber, m.Number)
	assert.Equal(t, productID, m.ProductID)
	assert.True(t, m.Quantity.Equal(types.MustMoney("10")), "quantity = %s", m.Quantity)
	assert.True(t, m.RetailPrice.Equal(types.MustMoney("15.00")), "retail = %s", m.RetailPrice)
	assert.True(t, m.PurchasePrice.Equal(types.MustMoney("9.00")))
}

func TestMerge_SkipsEmptyBatches(t *testing.T) {
	batches := []*Batch{
		{Number: "B-1", Quantity: types.Zero(), RetailPrice: types.MustMoney("99")},
		{Number: "B-2", Quantity: types.MustMoney("5"), RetailPrice: types.MustMoney("20")},
	}

	m := Merge(batches)
	require.NotNil(t, m)

	// The empty batch contributes neither quantity nor price.
	assert.True(t, m.Quantity.Equal(types.MustMoney("5")))
	assert.True(t, m.RetailPrice.Equal(types.MustMoney("20.00")), "retail = %s", m.RetailPrice)
}

func TestMerge_AllEmptyKeepsFirstPrices(t *testing.T) {
	batches := []*Batch{
		{Number: "B-1", RetailPrice: types.MustMoney("30")},
		{Number: "B-2", RetailPrice: types.MustMoney("50")},
	}

	m := Merge(batches)
	require.NotNil(t, m)

	assert.True(t, m.Quantity.IsZero())
	assert.True(t, m.RetailPrice.Equal(types.MustMoney("30")))
}

func TestMerge_Empty(t *testing.T) {
	assert.Nil(t, Merge(nil))
}
