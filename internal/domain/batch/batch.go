// Package batch models stock batches and resolves which batch a new
// line should draw from.
package batch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"posline/internal/core/id"
	"posline/internal/core/types"
)

// MergedNumber marks a synthetic batch built by averaging several real
// batches of a product whose units are not batch-tracked.
const MergedNumber = "MERGED"

// Batch is one receipt lot of a product. Quantity is in base-unit
// pieces. Zero-quantity batches are kept because they still carry the
// latest known prices.
type Batch struct {
	ID             id.ID           `db:"id" json:"id"`
	ProductID      id.ID           `db:"product_id" json:"productId"`
	Number         string          `db:"number" json:"number"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	PurchasePrice  types.Money     `db:"purchase_price" json:"purchasePrice"`
	RetailPrice    types.Money     `db:"retail_price" json:"retailPrice"`
	WholesalePrice types.Money     `db:"wholesale_price" json:"wholesalePrice"`
	ReceivedAt     time.Time       `db:"received_at" json:"receivedAt"`
}

// IsMerged reports whether the batch was synthesized by Merge.
func (b *Batch) IsMerged() bool {
	return b.Number == MergedNumber
}

// Repository loads open batches for a product, ordered by receipt time.
type Repository interface {
	ListByProduct(ctx context.Context, productID id.ID) ([]*Batch, error)
}

// Resolution is the outcome of resolving a product's batch list.
type Resolution struct {
	// Batch is the resolved batch, nil when the product has none.
	Batch *Batch

	// ChoiceRequired is set when several batches exist and the product
	// is batch-tracked: the caller must ask the user to pick one.
	ChoiceRequired bool

	// Candidates holds the batches to choose from when ChoiceRequired.
	Candidates []*Batch
}

// Resolve decides how a new line binds to the product's open batches.
// Zero batches: no batch context, stock is the product-level figure.
// One batch: use it. Many batches: require an explicit choice when the
// product is batch-tracked, otherwise merge them into one synthetic
// batch.
func Resolve(batches []*Batch, allowBatches bool) Resolution {
	switch {
	case len(batches) == 0:
		return Resolution{}
	case len(batches) == 1:
		return Resolution{Batch: batches[0]}
	case allowBatches:
		return Resolution{ChoiceRequired: true, Candidates: batches}
	default:
		return Resolution{Batch: Merge(batches)}
	}
}

// Merge averages prices across batches that still have quantity and
// sums their quantities. When every batch is empty the first batch's
// prices are kept as-is.
func Merge(batches []*Batch) *Batch {
	if len(batches) == 0 {
		return nil
	}

	merged := &Batch{
		ProductID:      batches[0].ProductID,
		Number:         MergedNumber,
		PurchasePrice:  batches[0].PurchasePrice,
		RetailPrice:    batches[0].RetailPrice,
		WholesalePrice: batches[0].WholesalePrice,
	}

	var open []*Batch
	for _, b := range batches {
		if b.Quantity.IsPositive() {
			open = append(open, b)
		}
	}
	if len(open) == 0 {
		return merged
	}

	var qty, purchase, retail, wholesale decimal.Decimal
	for _, b := range open {
		qty = qty.Add(b.Quantity)
		purchase = purchase.Add(b.PurchasePrice)
		retail = retail.Add(b.RetailPrice)
		wholesale = wholesale.Add(b.WholesalePrice)
	}

	n := decimal.NewFromInt(int64(len(open)))
	merged.Quantity = qty
	merged.PurchasePrice = types.Round2(purchase.Div(n))
	merged.RetailPrice = types.Round2(retail.Div(n))
	merged.WholesalePrice = types.Round2(wholesale.Div(n))
	return merged
}
