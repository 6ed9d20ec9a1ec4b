package session

import (
	"context"

	"github.com/shopspring/decimal"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/batch"
	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/document"
	"posline/internal/domain/pricing"
	"posline/internal/domain/stock"
	"posline/internal/domain/uom"
)

// ProductLookup is the slice of the product service the session needs.
type ProductLookup interface {
	GetByID(ctx context.Context, id id.ID) (*product.Product, error)
	FindByTag(ctx context.Context, tag string) (*product.Product, *id.ID, error)
}

// Mode distinguishes a fresh document from editing a persisted one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Config fixes the session's pricing regime at construction.
type Config struct {
	TaxType pricing.TaxType
	TaxMode pricing.TaxMode
	TaxRate types.Money
	Tier    pricing.RateTier

	// CostPricing switches unit prices to the purchase-cost basis used
	// by opening stock entry instead of the selling tiers.
	CostPricing bool

	Mode Mode
	// OriginalLines are the persisted lines of the document being
	// edited; their quantities are credited back when computing caps.
	OriginalLines []*document.LineItem
}

// Notice is a non-blocking user-visible message raised during editing,
// e.g. a quantity clamped at row commit.
type Notice struct {
	RowID   id.ID
	Message string
}

// Session is one editor working on one open document. It is not safe
// for concurrent use; all mutation is driven by discrete edit events.
type Session struct {
	products ProductLookup
	batches  batch.Repository
	// snapshotStock serves in-session caps and may be cached;
	// liveStock must hit the backing store and is used only by
	// pre-submit validation.
	snapshotStock stock.Lookup
	liveStock     stock.Lookup

	calc    pricing.Calculator
	taxType pricing.TaxType
	taxMode pricing.TaxMode
	tier    pricing.RateTier
	costing bool

	lines   []*document.LineItem
	adj     document.Adjustments
	credit  stock.CreditBack
	tracker Tracker

	// baseStock snapshots available pieces per product as of selection.
	baseStock    map[id.ID]decimal.Decimal
	productCache map[id.ID]*product.Product
	pending      map[id.ID]*pendingBatch
	seq          map[id.ID]uint64
	requested    map[id.ID]decimal.Decimal
	notices      []Notice
}

// pendingBatch is a row suspended on an explicit batch choice.
type pendingBatch struct {
	prod       *product.Product
	resolvedID *id.ID
	tag        string
	candidates []*batch.Batch
}

// New creates an editing session over the given collaborators.
func New(products ProductLookup, batches batch.Repository, snapshot, live stock.Lookup, cfg Config) *Session {
	s := &Session{
		products:      products,
		batches:       batches,
		snapshotStock: snapshot,
		liveStock:     live,
		calc:          pricing.NewCalculator(cfg.TaxRate),
		taxType:       cfg.TaxType,
		taxMode:       cfg.TaxMode,
		tier:          cfg.Tier,
		costing:       cfg.CostPricing,
		baseStock:     make(map[id.ID]decimal.Decimal),
		productCache:  make(map[id.ID]*product.Product),
		pending:       make(map[id.ID]*pendingBatch),
		seq:           make(map[id.ID]uint64),
		requested:     make(map[id.ID]decimal.Decimal),
	}
	if cfg.Mode == ModeEdit {
		s.credit = stock.BuildCreditBack(cfg.OriginalLines)
		for _, l := range cfg.OriginalLines {
			s.lines = append(s.lines, l.Clone())
		}
	}
	return s
}

// Load primes the session for the lines it started with: the stock
// snapshot and product cache are filled for every product already on a
// line, so quantity caps and unit switches work before any new
// selection. Create-mode sessions have nothing to prime.
func (s *Session) Load(ctx context.Context) error {
	for _, l := range s.lines {
		if !l.HasProduct() {
			continue
		}
		if _, ok := s.baseStock[l.ProductID]; ok {
			continue
		}
		pool, err := s.poolFor(ctx, l.ProductID, nil)
		if err != nil {
			return err
		}
		s.baseStock[l.ProductID] = pool

		p, err := s.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		s.productCache[l.ProductID] = p
	}
	return nil
}

// Lines exposes the current table part.
func (s *Session) Lines() []*document.LineItem { return s.lines }

// Adjustments exposes the mutable header figures.
func (s *Session) Adjustments() *document.Adjustments { return &s.adj }

// Notices drains the accumulated user-visible notices.
func (s *Session) Notices() []Notice {
	n := s.notices
	s.notices = nil
	return n
}

// AddRow appends an empty row and returns it.
func (s *Session) AddRow() *document.LineItem {
	row := document.NewLineItem()
	s.lines = append(s.lines, row)
	return row
}

// Row returns the line with the given id, nil when absent.
func (s *Session) Row(rowID id.ID) *document.LineItem {
	for _, l := range s.lines {
		if l.ID == rowID {
			return l
		}
	}
	return nil
}

// EnterRow is called when the cursor lands on a row. Any abandoned
// in-progress edit on another row is rolled back first.
func (s *Session) EnterRow(rowID id.ID) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	s.applyRevert(s.tracker.Enter(row))
	return nil
}

// LeaveGrid is called when focus moves outside the table part entirely.
// A tracked-but-uncommitted row reverts to its snapshot.
func (s *Session) LeaveGrid() {
	s.applyRevert(s.tracker.Abandon())
}

func (s *Session) applyRevert(rv *Revert) {
	if rv == nil {
		return
	}
	if row := s.Row(rv.RowID); row != nil {
		*row = *rv.Snapshot
		delete(s.requested, rv.RowID)
	}
}

// DeleteRow removes a line and forgets its bookkeeping.
func (s *Session) DeleteRow(rowID id.ID) {
	for i, l := range s.lines {
		if l.ID == rowID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	s.tracker.Commit(rowID)
	delete(s.pending, rowID)
	delete(s.seq, rowID)
	delete(s.requested, rowID)
}

// SelectProduct resolves a scanned or typed tag into the row. On
// success the row is filled, capped and implicitly committed. A stale
// result (superseded by a newer selection for the same row) is dropped
// without effect.
func (s *Session) SelectProduct(ctx context.Context, rowID id.ID, query string) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}

	seq := s.nextSeq(rowID)
	p, resolvedUnit, err := s.products.FindByTag(ctx, query)
	if err != nil {
		return err
	}
	if s.stale(rowID, seq) {
		return nil
	}
	return s.selectInto(ctx, seq, row, p, resolvedUnit, query)
}

// SelectProductByID fills the row from a picker choice.
func (s *Session) SelectProductByID(ctx context.Context, rowID, productID id.ID) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}

	seq := s.nextSeq(rowID)
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if s.stale(rowID, seq) {
		return nil
	}
	return s.selectInto(ctx, seq, row, p, nil, "")
}

func (s *Session) selectInto(ctx context.Context, seq uint64, row *document.LineItem, p *product.Product, resolvedUnit *id.ID, tag string) error {
	list, err := s.batches.ListByProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	if s.stale(row.ID, seq) {
		return nil
	}

	res := batch.Resolve(list, p.AllowBatches)
	if res.ChoiceRequired {
		s.pending[row.ID] = &pendingBatch{
			prod:       p,
			resolvedID: resolvedUnit,
			tag:        tag,
			candidates: res.Candidates,
		}
		return apperror.NewBatchSelectionRequired(p.ID.String(), len(res.Candidates))
	}

	return s.fillRow(ctx, row, p, resolvedUnit, tag, res.Batch)
}

// ChooseBatch completes a selection suspended on a batch choice.
func (s *Session) ChooseBatch(ctx context.Context, rowID, batchID id.ID) error {
	row := s.Row(rowID)
	pb := s.pending[rowID]
	if row == nil || pb == nil {
		return apperror.NewNotFound("pending batch selection", rowID)
	}

	var chosen *batch.Batch
	for _, b := range pb.candidates {
		if b.ID == batchID {
			chosen = b
			break
		}
	}
	if chosen == nil {
		return apperror.NewNotFound("batch", batchID)
	}

	delete(s.pending, rowID)
	return s.fillRow(ctx, row, pb.prod, pb.resolvedID, pb.tag, chosen)
}

// CancelBatchChoice drops a suspended selection and leaves the row
// unselected.
func (s *Session) CancelBatchChoice(rowID id.ID) {
	if _, ok := s.pending[rowID]; !ok {
		return
	}
	delete(s.pending, rowID)
	if row := s.Row(rowID); row != nil {
		row.Reset()
	}
}

func (s *Session) fillRow(ctx context.Context, row *document.LineItem, p *product.Product, resolvedUnit *id.ID, tag string, b *batch.Batch) error {
	opts := s.unitOptions(p)
	resolvedID := ""
	if resolvedUnit != nil {
		resolvedID = resolvedUnit.String()
	}
	unit := uom.SelectDefault(opts, resolvedID, tag)

	candidate := row.Clone()
	candidate.ProductID = p.ID
	candidate.ProductCode = p.Code
	candidate.ProductName = p.Name
	s.applyUnit(candidate, p, unit)
	candidate.BatchID = nil
	candidate.BatchNumber = ""
	candidate.BatchMaxPieces = nil

	candidate.SellRetail = types.Zero()
	candidate.SellWholesale = types.Zero()
	candidate.Profit = types.Zero()
	if s.costing {
		s.applySellPrices(candidate, p, unit)
	}

	if b != nil {
		candidate.BatchNumber = b.Number
		if !b.IsMerged() {
			bid := b.ID
			candidate.BatchID = &bid
			qty := b.Quantity
			candidate.BatchMaxPieces = &qty
		}
		if price := s.batchPrice(b); price.IsPositive() {
			candidate.UnitPrice = price
		}
	}

	pool, err := s.poolFor(ctx, p.ID, b)
	if err != nil {
		return err
	}

	maxQty := stock.MaxQuantity(candidate, s.lines, pool)
	if !maxQty.IsPositive() {
		row.Reset()
		return apperror.NewStockExhausted(p.ID.String(), 1, maxQty.InexactFloat64()).
			WithDetail("product_name", p.Name)
	}

	candidate.Quantity = stock.Clamp(types.One(), maxQty)
	candidate.DiscountPercent = types.Zero()
	candidate.DiscountAmount = types.Zero()
	candidate.EditedDiscount = pricing.DiscountByPercent
	candidate.ApplyFigures(s.calc.Compute(candidate.PricingInput(), s.taxType, s.taxMode))

	*row = *candidate
	s.productCache[p.ID] = p
	s.baseStock[p.ID] = pool
	delete(s.requested, row.ID)

	// A freshly filled row has nothing to revert to.
	s.tracker.Commit(row.ID)
	return nil
}

// poolFor determines the shared base-piece pool for a product: a merged
// batch's total, or the external stock figure, both plus any pieces the
// edited document had already deducted.
func (s *Session) poolFor(ctx context.Context, productID id.ID, b *batch.Batch) (decimal.Decimal, error) {
	var pool decimal.Decimal
	if b != nil && b.IsMerged() {
		pool = b.Quantity
	} else {
		available, err := s.snapshotStock.Available(ctx, productID)
		if err != nil {
			return decimal.Decimal{}, err
		}
		pool = available
	}
	return pool.Add(s.credit.For(productID)), nil
}

func (s *Session) unitOptions(p *product.Product) []uom.Option {
	if s.costing {
		return uom.BuildCostOptions(p)
	}
	return uom.BuildTierOptions(p, s.tier)
}

// batchPrice picks the batch-level price for the session tier, falling
// back retail then wholesale. Cost-priced sessions use the batch
// purchase price.
func (s *Session) batchPrice(b *batch.Batch) types.Money {
	if s.costing {
		return b.PurchasePrice
	}
	switch s.tier {
	case pricing.TierWholesale:
		if b.WholesalePrice.IsPositive() {
			return b.WholesalePrice
		}
		return b.RetailPrice
	default:
		if b.RetailPrice.IsPositive() {
			return b.RetailPrice
		}
		return b.WholesalePrice
	}
}

func (s *Session) applyUnit(row *document.LineItem, p *product.Product, unit uom.Option) {
	row.UnitID = unit.UnitID
	row.UnitName = unit.Name
	row.Conversion = unit.Conversion
	row.MultiUnitID = nil
	if !unit.IsBase {
		uid := unit.UnitID
		row.MultiUnitID = &uid
	}
	row.UnitPrice = unit.Price
	row.CostBasis = uom.CostBasis(p.PurchasePrice, unit)
}

// SetQuantity silently clamps the requested value to the row's cap and
// recomputes the line. The raw request is remembered so CommitRow can
// raise a notice if it exceeded the cap.
func (s *Session) SetQuantity(rowID id.ID, qty decimal.Decimal) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	if !row.HasProduct() {
		return apperror.NewValidation("select a product before entering quantity")
	}

	s.requested[rowID] = qty
	row.Quantity = stock.Clamp(qty, s.capFor(row))
	row.ApplyFigures(s.calc.Compute(row.PricingInput(), s.taxType, s.taxMode))
	return nil
}

// SetUnitPrice overrides the row price and recomputes the line.
func (s *Session) SetUnitPrice(rowID id.ID, price types.Money) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	if price.IsNegative() {
		return apperror.NewValidation("price cannot be negative")
	}
	row.UnitPrice = price
	row.ApplyFigures(s.calc.Compute(row.PricingInput(), s.taxType, s.taxMode))
	return nil
}

// SetDiscountPercent records a percent edit; the amount is re-derived.
func (s *Session) SetDiscountPercent(rowID id.ID, pct types.Money) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	row.DiscountPercent = pct
	row.EditedDiscount = pricing.DiscountByPercent
	row.ApplyFigures(s.calc.Compute(row.PricingInput(), s.taxType, s.taxMode))
	return nil
}

// SetDiscountAmount records a flat discount edit; the percent is
// re-derived.
func (s *Session) SetDiscountAmount(rowID id.ID, amount types.Money) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	row.DiscountAmount = amount
	row.EditedDiscount = pricing.DiscountByAmount
	row.ApplyFigures(s.calc.Compute(row.PricingInput(), s.taxType, s.taxMode))
	return nil
}

// ChangeUnit switches the row to another of the product's units:
// price re-derives from the unit's tier price, discounts reset and the
// quantity is re-clamped against the new conversion.
func (s *Session) ChangeUnit(rowID id.ID, unitID string) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	p := s.productCache[row.ProductID]
	if p == nil {
		return apperror.NewValidation("select a product before changing unit")
	}

	unit := s.optionFor(p, unitID)
	if unit == nil {
		return apperror.NewNotFound("unit", unitID)
	}

	s.applyUnit(row, p, *unit)
	if s.costing {
		s.applySellPrices(row, p, *unit)
	}
	row.DiscountPercent = types.Zero()
	row.DiscountAmount = types.Zero()
	row.EditedDiscount = pricing.DiscountByPercent
	row.Quantity = stock.Clamp(row.Quantity, s.capFor(row))
	row.ApplyFigures(s.calc.Compute(row.PricingInput(), s.taxType, s.taxMode))
	return nil
}

// SetTaxType flips the whole document between taxed and untaxed and
// redoes the tax tail of every filled line. Gross and both discount
// fields stay exactly where they are.
func (s *Session) SetTaxType(taxType pricing.TaxType) {
	s.taxType = taxType
	s.retaxLines()
}

// SetTaxMode switches between inclusive and exclusive VAT and retaxes
// every filled line the same way.
func (s *Session) SetTaxMode(mode pricing.TaxMode) {
	s.taxMode = mode
	s.retaxLines()
}

func (s *Session) retaxLines() {
	for _, l := range s.lines {
		if !l.HasProduct() {
			continue
		}
		l.ApplyFigures(s.calc.Retax(pricing.Figures{
			Gross:           l.Gross,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
		}, s.taxType, s.taxMode))
	}
}

// SetRowProfit records the desired retail margin on a stock entry row:
// the retail price becomes cost plus margin. A wholesale price that was
// never set follows the retail one.
func (s *Session) SetRowProfit(rowID id.ID, profit types.Money) error {
	row, _, _, err := s.costRow(rowID)
	if err != nil {
		return err
	}
	row.Profit = types.Round2(profit)
	row.SellRetail = types.Round2(row.CostBasis.Add(row.Profit))
	if row.SellWholesale.IsZero() {
		row.SellWholesale = row.SellRetail
	}
	return nil
}

// SetRowRetailPrice sets the retail selling price of a stock entry row
// directly; the profit re-derives as price minus cost.
func (s *Session) SetRowRetailPrice(rowID id.ID, price types.Money) error {
	row, p, unit, err := s.costRow(rowID)
	if err != nil {
		return err
	}
	if price.IsNegative() {
		return apperror.NewValidation("price cannot be negative")
	}
	row.SellRetail = price
	row.Profit = uom.Profit(price, p.PurchasePrice, unit)
	if row.SellWholesale.IsZero() {
		row.SellWholesale = price
	}
	return nil
}

// SetRowWholesalePrice sets the wholesale selling price directly. It is
// not linked to the profit figure.
func (s *Session) SetRowWholesalePrice(rowID id.ID, price types.Money) error {
	row, _, _, err := s.costRow(rowID)
	if err != nil {
		return err
	}
	if price.IsNegative() {
		return apperror.NewValidation("price cannot be negative")
	}
	row.SellWholesale = price
	return nil
}

// costRow resolves a filled row on a cost-priced session together with
// its product and current unit option.
func (s *Session) costRow(rowID id.ID) (*document.LineItem, *product.Product, uom.Option, error) {
	row := s.Row(rowID)
	if row == nil {
		return nil, nil, uom.Option{}, apperror.NewNotFound("line", rowID)
	}
	if !s.costing {
		return nil, nil, uom.Option{}, apperror.NewValidation("selling prices are set on stock entry documents")
	}
	p := s.productCache[row.ProductID]
	if p == nil {
		return nil, nil, uom.Option{}, apperror.NewValidation("select a product before setting prices")
	}
	unit := s.optionFor(p, row.UnitID)
	if unit == nil {
		return nil, nil, uom.Option{}, apperror.NewNotFound("unit", row.UnitID)
	}
	return row, p, *unit, nil
}

func (s *Session) optionFor(p *product.Product, unitID string) *uom.Option {
	for _, o := range s.unitOptions(p) {
		if o.UnitID == unitID {
			u := o
			return &u
		}
	}
	return nil
}

// applySellPrices seeds a stock entry row's selling prices from the
// unit's tier prices, with the profit derived from the entered cost.
func (s *Session) applySellPrices(row *document.LineItem, p *product.Product, unit uom.Option) {
	tiers := p.TierPrices
	for _, alt := range p.AlternateUnits {
		if alt.UnitID.String() == unit.UnitID {
			tiers = alt.TierPrices
			break
		}
	}
	row.SellRetail = tiers.Retail
	row.SellWholesale = tiers.Wholesale
	row.Profit = uom.Profit(row.SellRetail, p.PurchasePrice, unit)
}

// CommitRow finalizes the tracked edit of a complete row. If the last
// typed quantity exceeded the cap the value stays clamped and a notice
// is raised, but editing is not blocked.
func (s *Session) CommitRow(rowID id.ID) error {
	row := s.Row(rowID)
	if row == nil {
		return apperror.NewNotFound("line", rowID)
	}
	if !row.IsComplete() {
		return apperror.NewValidation("row requires a product, quantity and price").
			WithDetail("line_id", rowID)
	}

	if req, ok := s.requested[rowID]; ok && req.GreaterThan(row.Quantity) {
		s.notices = append(s.notices, Notice{
			RowID:   rowID,
			Message: "quantity not available, reduced to stock on hand",
		})
	}
	delete(s.requested, rowID)
	s.tracker.Commit(rowID)
	return nil
}

// capFor recomputes the row's max quantity from the session snapshot.
func (s *Session) capFor(row *document.LineItem) decimal.Decimal {
	return stock.MaxQuantity(row, s.lines, s.baseStock[row.ProductID])
}

// Totals aggregates the document per the header adjustments.
func (s *Session) Totals() document.Totals {
	return document.ComputeTotals(s.lines, &s.adj, s.taxType == pricing.Taxed, s.calc)
}

// Validate runs the pre-submit checks: structural line validation, then
// a live stock re-check for every product, crediting back the edited
// document's original quantities. Any failure rejects the whole
// submission.
func (s *Session) Validate(ctx context.Context) error {
	empty := 0
	for _, l := range s.lines {
		if !l.HasProduct() {
			empty++
			continue
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("line_id", l.ID)
		}
		if !l.UnitPrice.IsPositive() {
			return apperror.NewValidation("price must be positive").
				WithDetail("line_id", l.ID)
		}
	}
	if empty > 1 {
		return apperror.NewValidation("more than one row has no product selected")
	}

	return stock.NewValidator(s.liveStock).Validate(ctx, s.lines, s.credit)
}

func (s *Session) nextSeq(rowID id.ID) uint64 {
	s.seq[rowID]++
	return s.seq[rowID]
}

func (s *Session) stale(rowID id.ID, seq uint64) bool {
	return s.seq[rowID] != seq
}
