package product

import (
	"context"

	"posline/internal/core/id"
	"posline/internal/domain"
)

// Repository defines read and write operations for products.
// The engine itself only reads; writes exist for completeness of the catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)

	// FindByTag resolves a barcode/serial tag against products and their
	// alternate units. When the tag matched an alternate unit, unitID is
	// that unit's id; otherwise it is nil.
	FindByTag(ctx context.Context, tag string) (p *Product, unitID *id.ID, err error)

	// GetAlternateUnits loads the alternate units of a product.
	GetAlternateUnits(ctx context.Context, productID id.ID) ([]AlternateUnit, error)

	// GetTree retrieves the group hierarchy starting at rootID (nil for roots).
	GetTree(ctx context.Context, rootID *id.ID) ([]*Product, error)
}
