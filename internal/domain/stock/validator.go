package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/domain/document"
)

// Lookup fetches current available stock for a product, in base-unit
// pieces. Implementations may cache; callers treat the result as a
// snapshot.
type Lookup interface {
	Available(ctx context.Context, productID id.ID) (decimal.Decimal, error)
}

// CacheInvalidator drops cached stock figures after an operation that
// changes real stock (document save, update, delete).
type CacheInvalidator interface {
	Invalidate(productID id.ID)
}

// Validator re-checks a whole document against live stock right before
// submission. The in-session snapshot may be stale, so every distinct
// product is fetched again here.
type Validator struct {
	lookup Lookup
}

// NewValidator creates a pre-submit stock validator.
func NewValidator(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

type demand struct {
	pieces decimal.Decimal
	name   string
}

// Validate rejects the submission if any product's requested total
// exceeds live availability plus the pieces credited back from the
// document's own persisted lines. Nothing is saved partially: the first
// shortfall fails the whole document.
func (v *Validator) Validate(ctx context.Context, lines []*document.LineItem, credit CreditBack) error {
	demands := make(map[id.ID]*demand)
	var order []id.ID
	for _, l := range lines {
		if !l.HasProduct() {
			continue
		}
		d, ok := demands[l.ProductID]
		if !ok {
			d = &demand{name: l.ProductName}
			demands[l.ProductID] = d
			order = append(order, l.ProductID)
		}
		d.pieces = d.pieces.Add(l.BasePieces())
	}

	for _, productID := range order {
		d := demands[productID]
		available, err := v.lookup.Available(ctx, productID)
		if err != nil {
			return err
		}
		available = available.Add(credit.For(productID))
		if d.pieces.GreaterThan(available) {
			return apperror.NewStockExhausted(productID.String(), d.pieces.InexactFloat64(), available.InexactFloat64()).
				WithDetail("product_name", d.name)
		}
	}
	return nil
}
