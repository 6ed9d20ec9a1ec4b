// Package product provides the Product catalog.
// Products are the sellable goods referenced by invoice and stock-entry lines.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"posline/internal/core/apperror"
	"posline/internal/core/entity"
	"posline/internal/core/id"
	"posline/internal/core/types"
	"posline/internal/domain/pricing"
)

// Product represents a sellable item.
type Product struct {
	entity.Catalog

	// Barcode is the item barcode or serial tag (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// BaseUnitID identifies the primary unit of measure (conversion factor 1)
	BaseUnitID string `db:"base_unit_id" json:"baseUnitId"`

	// BaseUnitName is the display name of the base unit
	BaseUnitName string `db:"base_unit_name" json:"baseUnitName"`

	// PurchasePrice is the cost per base-unit piece
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// Per-tier sale prices for the base unit
	pricing.TierPrices

	// AllowBatches enables batch-level tracking. When set, alternate units
	// are not offered and multi-batch products require an explicit choice.
	AllowBatches bool `db:"allow_batches" json:"allowBatches"`

	// AlternateUnits are the secondary units of sale, loaded separately
	AlternateUnits []AlternateUnit `db:"-" json:"alternateUnits,omitempty"`
}

// AlternateUnit is a secondary unit of sale for a product.
type AlternateUnit struct {
	UnitID id.ID  `db:"unit_id" json:"unitId"`
	Name   string `db:"name" json:"name"`

	// Conversion is how many base-unit pieces one alternate unit represents
	Conversion decimal.Decimal `db:"conversion" json:"conversion"`

	// Per-tier sale prices for this unit (not scaled from the base unit)
	pricing.TierPrices

	// Barcode is the unit-specific barcode/serial tag, if any
	Barcode *string `db:"barcode" json:"barcode,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name, baseUnitID, baseUnitName string) *Product {
	return &Product{
		Catalog:      entity.NewCatalog(code, name),
		BaseUnitID:   baseUnitID,
		BaseUnitName: baseUnitName,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.BaseUnitID == "" {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "baseUnitId")
	}

	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}

	for i, u := range p.AlternateUnits {
		if !u.Conversion.IsPositive() {
			return apperror.NewValidation("conversion factor must be positive").
				WithDetail("field", "alternateUnits").
				WithDetail("index", i)
		}
	}

	return nil
}

// BarcodeTag returns the product-level barcode/serial tag or empty string.
func (p *Product) BarcodeTag() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}

// UnitTag returns the tag of an alternate unit or empty string.
func (u *AlternateUnit) UnitTag() string {
	if u.Barcode == nil {
		return ""
	}
	return *u.Barcode
}
