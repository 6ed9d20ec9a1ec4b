package session

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/batch"
	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/pricing"
)

type fakeProducts struct {
	byID  map[id.ID]*product.Product
	byTag map[string]*product.Product
	// onFindByTag runs before the lookup resolves, simulating events
	// that arrive while a request is in flight.
	onFindByTag func(tag string)
}

func (f *fakeProducts) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.byID[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (f *fakeProducts) FindByTag(_ context.Context, tag string) (*product.Product, *id.ID, error) {
	if f.onFindByTag != nil {
		hook := f.onFindByTag
		f.onFindByTag = nil
		hook(tag)
	}
	p, ok := f.byTag[tag]
	if !ok {
		return nil, nil, apperror.NewNotFound("product", tag)
	}
	return p, nil, nil
}

type fakeBatches struct {
	byProduct map[id.ID][]*batch.Batch
}

func (f *fakeBatches) ListByProduct(_ context.Context, productID id.ID) ([]*batch.Batch, error) {
	return f.byProduct[productID], nil
}

type fakeStock struct {
	available map[id.ID]decimal.Decimal
}

func (f *fakeStock) Available(_ context.Context, productID id.ID) (decimal.Decimal, error) {
	return f.available[productID], nil
}

type fixture struct {
	products *fakeProducts
	batches  *fakeBatches
	stock    *fakeStock
	cola     *product.Product
}

func newFixture() *fixture {
	cola := product.NewProduct("P001", "Cola", "u-pc", "pc")
	cola.PurchasePrice = types.MustMoney("10")
	cola.TierPrices = pricing.TierPrices{
		Retail:    types.MustMoney("15"),
		Wholesale: types.MustMoney("12"),
	}
	cola.AlternateUnits = []product.AlternateUnit{{
		UnitID:     id.New(),
		Name:       "dozen",
		Conversion: types.MustMoney("12"),
		TierPrices: pricing.TierPrices{Retail: types.MustMoney("170")},
	}}

	return &fixture{
		products: &fakeProducts{
			byID:  map[id.ID]*product.Product{cola.ID: cola},
			byTag: map[string]*product.Product{"P001": cola},
		},
		batches: &fakeBatches{byProduct: map[id.ID][]*batch.Batch{}},
		stock:   &fakeStock{available: map[id.ID]decimal.Decimal{cola.ID: types.MustMoney("10")}},
		cola:    cola,
	}
}

func (f *fixture) session(cfg Config) *Session {
	if cfg.TaxType == "" {
		cfg.TaxType = pricing.Taxed
	}
	if cfg.TaxMode == "" {
		cfg.TaxMode = pricing.TaxInclusive
	}
	if cfg.TaxRate.IsZero() {
		cfg.TaxRate = types.MustMoney("5")
	}
	if cfg.Tier == "" {
		cfg.Tier = pricing.TierRetail
	}
	return New(f.products, f.batches, f.stock, f.stock, cfg)
}

func TestSelectProduct_FillsRow(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()

	err := s.SelectProduct(context.Background(), row.ID, "P001")
	require.NoError(t, err)

	assert.Equal(t, "Cola", row.ProductName)
	assert.Equal(t, "u-pc", row.UnitID)
	assert.True(t, row.Quantity.Equal(types.One()))
	assert.True(t, row.UnitPrice.Equal(types.MustMoney("15")))
	assert.True(t, row.Total.Equal(types.MustMoney("15.00")), "got %s", row.Total)
	assert.False(t, s.tracker.Tracking(), "a fresh selection needs no revert point")
}

func TestSelectProduct_NoStock(t *testing.T) {
	f := newFixture()
	f.stock.available[f.cola.ID] = decimal.Zero
	s := f.session(Config{})
	row := s.AddRow()

	err := s.SelectProduct(context.Background(), row.ID, "P001")
	require.Error(t, err)
	assert.True(t, apperror.IsStockExhausted(err))
	assert.False(t, row.HasProduct(), "row stays empty after a failed selection")
}

func TestSetQuantity_SilentClampThenCommitNotice(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))

	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("15")))
	assert.True(t, row.Quantity.Equal(types.MustMoney("10")), "clamped to stock on hand")
	assert.Empty(t, s.Notices(), "clamping itself raises nothing")

	require.NoError(t, s.CommitRow(row.ID))
	notices := s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, row.ID, notices[0].RowID)
	assert.Equal(t, "quantity not available, reduced to stock on hand", notices[0].Message)
	assert.Empty(t, s.Notices(), "notices drain on read")
}

func TestCommitRow_NoNoticeWithinCap(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))

	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("4")))
	require.NoError(t, s.CommitRow(row.ID))
	assert.Empty(t, s.Notices())
}

func TestLeaveGrid_RevertsUncommittedEdit(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("3")))
	require.NoError(t, s.CommitRow(row.ID))

	require.NoError(t, s.EnterRow(row.ID))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("7")))
	assert.True(t, row.Quantity.Equal(types.MustMoney("7")))

	s.LeaveGrid()
	assert.True(t, row.Quantity.Equal(types.MustMoney("3")), "abandoned edit rolls back")
	assert.True(t, row.Total.Equal(types.MustMoney("45.00")), "figures roll back with it")
	assert.False(t, s.tracker.Tracking())
}

func TestEnterRow_AbandonsPreviousRow(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	first := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), first.ID, "P001"))
	require.NoError(t, s.SetQuantity(first.ID, types.MustMoney("2")))
	require.NoError(t, s.CommitRow(first.ID))
	second := s.AddRow()

	require.NoError(t, s.EnterRow(first.ID))
	require.NoError(t, s.SetQuantity(first.ID, types.MustMoney("9")))

	require.NoError(t, s.EnterRow(second.ID))
	assert.True(t, first.Quantity.Equal(types.MustMoney("2")))
}

func TestSelectProduct_CommitsAndSupersedesTrackedEdit(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.EnterRow(row.ID))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("5")))

	require.NoError(t, s.SelectProductByID(context.Background(), row.ID, f.cola.ID))
	assert.False(t, s.tracker.Tracking())

	s.LeaveGrid()
	assert.True(t, row.Quantity.Equal(types.One()), "re-selection stands, nothing reverts")
}

func TestSelectProduct_StaleResultDiscarded(t *testing.T) {
	f := newFixture()

	fanta := product.NewProduct("P002", "Fanta", "u-pc", "pc")
	fanta.TierPrices = pricing.TierPrices{Retail: types.MustMoney("20")}
	f.products.byID[fanta.ID] = fanta
	f.stock.available[fanta.ID] = types.MustMoney("6")

	s := f.session(Config{})
	row := s.AddRow()

	// A second selection lands while the first lookup is in flight.
	f.products.onFindByTag = func(string) {
		require.NoError(t, s.SelectProductByID(context.Background(), row.ID, fanta.ID))
	}

	err := s.SelectProduct(context.Background(), row.ID, "P001")
	require.NoError(t, err)
	assert.Equal(t, "Fanta", row.ProductName, "superseded lookup must not overwrite the newer one")
	assert.True(t, row.UnitPrice.Equal(types.MustMoney("20")))
}

func TestCrossRowCap(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})

	first := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), first.ID, "P001"))
	require.NoError(t, s.SetQuantity(first.ID, types.MustMoney("6")))
	require.NoError(t, s.CommitRow(first.ID))

	second := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), second.ID, "P001"))
	require.NoError(t, s.SetQuantity(second.ID, types.MustMoney("99")))
	assert.True(t, second.Quantity.Equal(types.MustMoney("4")), "10 on hand minus 6 on the first row")
}

func TestBatchChoice(t *testing.T) {
	f := newFixture()
	f.cola.AllowBatches = true
	b1 := &batch.Batch{ID: id.New(), ProductID: f.cola.ID, Number: "B-1", Quantity: types.MustMoney("3"), RetailPrice: types.MustMoney("14")}
	b2 := &batch.Batch{ID: id.New(), ProductID: f.cola.ID, Number: "B-2", Quantity: types.MustMoney("5"), RetailPrice: types.MustMoney("16")}
	f.batches.byProduct[f.cola.ID] = []*batch.Batch{b1, b2}

	s := f.session(Config{})
	row := s.AddRow()

	err := s.SelectProduct(context.Background(), row.ID, "P001")
	require.Error(t, err)
	assert.True(t, apperror.IsBatchSelectionRequired(err))
	assert.False(t, row.HasProduct())

	require.NoError(t, s.ChooseBatch(context.Background(), row.ID, b1.ID))
	assert.Equal(t, "B-1", row.BatchNumber)
	assert.True(t, row.UnitPrice.Equal(types.MustMoney("14")))

	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("10")))
	assert.True(t, row.Quantity.Equal(types.MustMoney("3")), "capped by the chosen batch")
}

func TestCancelBatchChoice(t *testing.T) {
	f := newFixture()
	f.cola.AllowBatches = true
	b1 := &batch.Batch{ID: id.New(), ProductID: f.cola.ID, Number: "B-1", Quantity: types.MustMoney("3")}
	b2 := &batch.Batch{ID: id.New(), ProductID: f.cola.ID, Number: "B-2", Quantity: types.MustMoney("5")}
	f.batches.byProduct[f.cola.ID] = []*batch.Batch{b1, b2}

	s := f.session(Config{})
	row := s.AddRow()
	require.Error(t, s.SelectProduct(context.Background(), row.ID, "P001"))

	s.CancelBatchChoice(row.ID)
	assert.False(t, row.HasProduct())

	err := s.ChooseBatch(context.Background(), row.ID, b1.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEditMode_CreditsBackOriginalQuantities(t *testing.T) {
	f := newFixture()
	// 7 pieces free on hand; the saved document already holds 3 more.
	f.stock.available[f.cola.ID] = types.MustMoney("7")

	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("3")))
	original := s.Lines()

	edit := f.session(Config{Mode: ModeEdit, OriginalLines: original})
	require.NoError(t, edit.Load(context.Background()))
	editRow := edit.Lines()[0]
	assert.NotSame(t, row, editRow, "edit sessions work on clones")

	require.NoError(t, edit.SetQuantity(editRow.ID, types.MustMoney("10")))
	assert.True(t, editRow.Quantity.Equal(types.MustMoney("10")), "own consumption credited back")

	require.NoError(t, edit.SetQuantity(editRow.ID, types.MustMoney("11")))
	assert.True(t, editRow.Quantity.Equal(types.MustMoney("10")))
}

func TestChangeUnit_RepricesAndReclamps(t *testing.T) {
	f := newFixture()
	f.stock.available[f.cola.ID] = types.MustMoney("30")

	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("30")))
	require.NoError(t, s.SetDiscountPercent(row.ID, types.MustMoney("10")))

	dozenID := f.cola.AlternateUnits[0].UnitID.String()
	require.NoError(t, s.ChangeUnit(row.ID, dozenID))

	assert.Equal(t, "dozen", row.UnitName)
	assert.True(t, row.Conversion.Equal(types.MustMoney("12")))
	assert.True(t, row.UnitPrice.Equal(types.MustMoney("170")))
	assert.True(t, row.CostBasis.Equal(types.MustMoney("120")), "purchase price scales with conversion")
	assert.True(t, row.Quantity.Equal(types.MustMoney("2.5")), "30 pieces re-clamped to dozens")
	assert.True(t, row.DiscountPercent.IsZero(), "discounts reset on unit change")
}

func TestSetTaxMode_RetaxesWithoutMovingGross(t *testing.T) {
	f := newFixture()
	s := f.session(Config{TaxMode: pricing.TaxInclusive})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("7")))

	assert.True(t, row.VAT.Equal(types.MustMoney("5.00")), "got %s", row.VAT)
	assert.True(t, row.Total.Equal(types.MustMoney("105.00")))

	s.SetTaxMode(pricing.TaxExclusive)
	assert.True(t, row.Gross.Equal(types.MustMoney("105.00")), "gross must not move on a mode flip")
	assert.True(t, row.VAT.Equal(types.MustMoney("5.25")), "got %s", row.VAT)
	assert.True(t, row.Total.Equal(types.MustMoney("110.25")), "got %s", row.Total)
}

func TestSetTaxType_UntaxedDropsVATKeepingDiscount(t *testing.T) {
	f := newFixture()
	s := f.session(Config{TaxMode: pricing.TaxExclusive})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("2")))
	require.NoError(t, s.SetDiscountAmount(row.ID, types.MustMoney("6")))

	s.SetTaxType(pricing.Untaxed)
	assert.True(t, row.DiscountAmount.Equal(types.MustMoney("6")), "discount must not move on a type flip")
	assert.True(t, row.VAT.IsZero())
	assert.True(t, row.Total.Equal(types.MustMoney("24.00")), "got %s", row.Total)

	s.SetTaxType(pricing.Taxed)
	assert.True(t, row.VAT.Equal(types.MustMoney("1.20")), "got %s", row.VAT)
	assert.True(t, row.Total.Equal(types.MustMoney("25.20")))
}

func TestCostSession_SellPriceAutoFill(t *testing.T) {
	f := newFixture()
	s := f.session(Config{CostPricing: true})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))

	assert.True(t, row.UnitPrice.Equal(types.MustMoney("10")), "cost sessions price at purchase cost")
	assert.True(t, row.SellRetail.Equal(types.MustMoney("15")))
	assert.True(t, row.SellWholesale.Equal(types.MustMoney("12")))
	assert.True(t, row.Profit.Equal(types.MustMoney("5.00")), "got %s", row.Profit)

	require.NoError(t, s.SetRowProfit(row.ID, types.MustMoney("8")))
	assert.True(t, row.SellRetail.Equal(types.MustMoney("18.00")), "retail follows cost plus margin")
	assert.True(t, row.SellWholesale.Equal(types.MustMoney("12")), "a set wholesale price stays put")

	require.NoError(t, s.SetRowRetailPrice(row.ID, types.MustMoney("25")))
	assert.True(t, row.Profit.Equal(types.MustMoney("15.00")), "margin re-derives from the typed price")

	require.NoError(t, s.SetRowWholesalePrice(row.ID, types.MustMoney("20")))
	assert.True(t, row.SellWholesale.Equal(types.MustMoney("20")))
}

func TestCostSession_AlternateUnitProfit(t *testing.T) {
	f := newFixture()
	f.stock.available[f.cola.ID] = types.MustMoney("30")
	s := f.session(Config{CostPricing: true})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))

	dozenID := f.cola.AlternateUnits[0].UnitID.String()
	require.NoError(t, s.ChangeUnit(row.ID, dozenID))

	assert.True(t, row.UnitPrice.Equal(types.MustMoney("120.00")), "got %s", row.UnitPrice)
	assert.True(t, row.SellRetail.Equal(types.MustMoney("170")))
	assert.True(t, row.Profit.Equal(types.MustMoney("50.00")), "got %s", row.Profit)

	require.NoError(t, s.SetRowProfit(row.ID, types.MustMoney("30")))
	assert.True(t, row.SellRetail.Equal(types.MustMoney("150.00")))
}

func TestSellPriceOps_RejectedOnSellingSession(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))

	err := s.SetRowProfit(row.ID, types.MustMoney("5"))
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestDiscountEdits(t *testing.T) {
	f := newFixture()
	s := f.session(Config{TaxMode: pricing.TaxExclusive})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("2")))

	require.NoError(t, s.SetDiscountPercent(row.ID, types.MustMoney("10")))
	assert.True(t, row.DiscountAmount.Equal(types.MustMoney("3.00")), "amount derived from percent")

	require.NoError(t, s.SetDiscountAmount(row.ID, types.MustMoney("6")))
	assert.True(t, row.DiscountPercent.Equal(types.MustMoney("20.00")), "percent derived from amount")
}

func TestValidate_RejectsStaleSnapshot(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	require.NoError(t, s.SetQuantity(row.ID, types.MustMoney("8")))
	require.NoError(t, s.CommitRow(row.ID))

	// Another terminal sold most of the stock since the snapshot.
	f.stock.available[f.cola.ID] = types.MustMoney("5")

	err := s.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsStockExhausted(err))
}

func TestValidate_AllowsOneTrailingEmptyRow(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})
	row := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), row.ID, "P001"))
	s.AddRow()

	assert.NoError(t, s.Validate(context.Background()))

	s.AddRow()
	err := s.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestDeleteRow_FreesItsShareOfStock(t *testing.T) {
	f := newFixture()
	s := f.session(Config{})

	first := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), first.ID, "P001"))
	require.NoError(t, s.SetQuantity(first.ID, types.MustMoney("6")))
	require.NoError(t, s.CommitRow(first.ID))

	second := s.AddRow()
	require.NoError(t, s.SelectProduct(context.Background(), second.ID, "P001"))

	s.DeleteRow(first.ID)
	assert.Len(t, s.Lines(), 1)

	require.NoError(t, s.SetQuantity(second.ID, types.MustMoney("10")))
	assert.True(t, second.Quantity.Equal(types.MustMoney("10")))
}
