package salesinvoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/core/numerator"
	"posline/internal/core/types"
	"posline/internal/domain"
	"posline/internal/domain/document"
	"posline/internal/domain/pricing"
)

type fakeRepo struct {
	docs      map[id.ID]*SalesInvoice
	lines     map[id.ID][]*document.LineItem
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*SalesInvoice),
		lines: make(map[id.ID][]*document.LineItem),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *SalesInvoice) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*SalesInvoice, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("sales invoice", docID)
	}
	return doc, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (*SalesInvoice, error) {
	for _, d := range r.docs {
		if d.Number == number {
			return d, nil
		}
	}
	return nil, apperror.NewNotFound("sales invoice", number)
}

func (r *fakeRepo) Update(_ context.Context, doc *SalesInvoice) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *fakeRepo) GetLines(_ context.Context, docID id.ID) ([]*document.LineItem, error) {
	return r.lines[docID], nil
}

func (r *fakeRepo) SaveLines(_ context.Context, docID id.ID, lines []*document.LineItem) error {
	r.lines[docID] = lines
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*SalesInvoice], error) {
	return domain.ListResult[*SalesInvoice]{}, nil
}

func testGenerator() *numerator.MockGenerator {
	var next int64
	return &numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
			next++
			return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), cfg.PadWidth, next), nil
		},
	}
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedStock struct {
	available decimal.Decimal
}

func (f *fixedStock) Available(_ context.Context, _ id.ID) (decimal.Decimal, error) {
	return f.available, nil
}

type recordingInvalidator struct {
	products []id.ID
}

func (r *recordingInvalidator) Invalidate(productID id.ID) {
	r.products = append(r.products, productID)
}

func invoiceLine(productID id.ID, qty, price string) *document.LineItem {
	l := document.NewLineItem()
	l.ProductID = productID
	l.ProductName = "Cola"
	l.Quantity = types.MustMoney(qty)
	l.UnitPrice = types.MustMoney(price)
	calc := pricing.NewCalculator(types.MustMoney("5"))
	l.ApplyFigures(calc.Compute(l.PricingInput(), pricing.Taxed, pricing.TaxInclusive))
	return l
}

func testInvoice(productID id.ID) *SalesInvoice {
	doc := New(pricing.TierRetail, pricing.Taxed, pricing.TaxInclusive, types.MustMoney("5"))
	doc.CustomerName = "Walk-in"
	doc.Lines = append(doc.Lines, invoiceLine(productID, "3", "35"))
	return doc
}

func newTestService(repo *fakeRepo, stockOnHand string) (*Service, *recordingInvalidator) {
	cache := &recordingInvalidator{}
	svc := NewService(repo, testGenerator(), passthroughTx{},
		&fixedStock{available: types.MustMoney(stockOnHand)}, cache)
	return svc, cache
}

func TestCreate_NumbersPersistsAndInvalidates(t *testing.T) {
	repo := newFakeRepo()
	svc, cache := newTestService(repo, "10")
	productID := id.New()
	doc := testInvoice(productID)

	require.NoError(t, svc.Create(context.Background(), doc))

	year := time.Now().Format("2006")
	assert.Equal(t, "SI-"+year+"-00001", doc.Number)
	assert.True(t, doc.GrandTotal.Equal(types.MustMoney("105.00")), "got %s", doc.GrandTotal)
	assert.True(t, doc.TotalVAT.Equal(types.MustMoney("5.00")))
	assert.Contains(t, repo.docs, doc.ID)
	assert.Len(t, repo.lines[doc.ID], 1)
	assert.Equal(t, []id.ID{productID}, cache.products)
}

func TestCreate_KeepsPresetNumber(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, "10")
	doc := testInvoice(id.New())
	doc.Number = "SI-2025-00099"

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Equal(t, "SI-2025-00099", doc.Number)
}

func TestCreate_RejectsInsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	svc, cache := newTestService(repo, "2")
	doc := testInvoice(id.New())

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsStockExhausted(err))
	assert.Empty(t, repo.docs, "nothing persisted on a failed check")
	assert.Empty(t, cache.products)
}

func TestCreate_RejectsUnknownTier(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, "10")
	doc := testInvoice(id.New())
	doc.Tier = "staff"

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
	assert.Empty(t, repo.docs)
}

func TestCreate_RejectsEmptyDocument(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, "10")
	doc := New(pricing.TierRetail, pricing.Taxed, pricing.TaxInclusive, types.MustMoney("5"))

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestUpdate_CreditsBackPersistedLines(t *testing.T) {
	repo := newFakeRepo()
	svc, cache := newTestService(repo, "2")
	productID := id.New()
	doc := testInvoice(productID)
	repo.docs[doc.ID] = doc
	repo.lines[doc.ID] = doc.Lines

	// 2 free plus the 3 this document already holds covers 5.
	changed := *doc
	changed.Lines = []*document.LineItem{invoiceLine(productID, "5", "35")}
	require.NoError(t, svc.Update(context.Background(), &changed))

	// Now 5 are credited back; 2 free plus 5 held does not cover 8.
	over := *doc
	over.Lines = []*document.LineItem{invoiceLine(productID, "8", "35")}
	err := svc.Update(context.Background(), &over)
	require.Error(t, err)
	assert.True(t, apperror.IsStockExhausted(err))
	assert.NotEmpty(t, cache.products)
}

func TestUpdate_SurfacesVersionConflict(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, "10")
	doc := testInvoice(id.New())
	repo.docs[doc.ID] = doc
	repo.lines[doc.ID] = doc.Lines
	repo.updateErr = apperror.NewConcurrentModification("sales invoice", doc.ID)

	err := svc.Update(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestDelete_ReleasesStock(t *testing.T) {
	repo := newFakeRepo()
	svc, cache := newTestService(repo, "10")
	productID := id.New()
	doc := testInvoice(productID)
	repo.docs[doc.ID] = doc
	repo.lines[doc.ID] = doc.Lines

	require.NoError(t, svc.Delete(context.Background(), doc.ID))
	assert.NotContains(t, repo.docs, doc.ID)
	assert.Equal(t, []id.ID{productID}, cache.products)
}

func TestHooks_RunAroundCreate(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, "10")

	var order []string
	svc.Hooks().On(domain.BeforeCreate, func(_ context.Context, _ *SalesInvoice) error {
		order = append(order, "before")
		return nil
	})
	svc.Hooks().On(domain.AfterCreate, func(_ context.Context, _ *SalesInvoice) error {
		order = append(order, "after")
		return nil
	})

	require.NoError(t, svc.Create(context.Background(), testInvoice(id.New())))
	assert.Equal(t, []string{"before", "after"}, order)
}
