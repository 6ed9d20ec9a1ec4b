package dto

import (
	"github.com/shopspring/decimal"

	"posline/internal/core/id"
	"posline/internal/domain/catalogs/product"
	"posline/internal/domain/pricing"
)

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code           string               `json:"code"`
	Name           string               `json:"name" binding:"required"`
	ParentID       *string              `json:"parentId"`
	IsFolder       bool                 `json:"isFolder"`
	Barcode        *string              `json:"barcode"`
	BaseUnitID     string               `json:"baseUnitId"`
	BaseUnitName   string               `json:"baseUnitName"`
	PurchasePrice  decimal.Decimal      `json:"purchasePrice"`
	RetailPrice    decimal.Decimal      `json:"retailPrice"`
	WholesalePrice decimal.Decimal      `json:"wholesalePrice"`
	Special1Price  decimal.Decimal      `json:"special1Price"`
	Special2Price  decimal.Decimal      `json:"special2Price"`
	AllowBatches   bool                 `json:"allowBatches"`
	AlternateUnits []AlternateUnitInput `json:"alternateUnits"`
}

// AlternateUnitInput describes a secondary unit of sale.
type AlternateUnitInput struct {
	Name           string          `json:"name" binding:"required"`
	Conversion     decimal.Decimal `json:"conversion" binding:"required"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	Special1Price  decimal.Decimal `json:"special1Price"`
	Special2Price  decimal.Decimal `json:"special2Price"`
	Barcode        *string         `json:"barcode"`
}

// ToModel converts the request into a domain product.
func (r CreateProductRequest) ToModel() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.BaseUnitID, r.BaseUnitName)
	p.IsFolder = r.IsFolder
	if r.ParentID != nil {
		p.SetParent(*r.ParentID)
	}
	p.Barcode = r.Barcode
	p.PurchasePrice = r.PurchasePrice
	p.TierPrices = pricing.TierPrices{
		Retail:    r.RetailPrice,
		Wholesale: r.WholesalePrice,
		Special1:  r.Special1Price,
		Special2:  r.Special2Price,
	}
	p.AllowBatches = r.AllowBatches
	for _, u := range r.AlternateUnits {
		p.AlternateUnits = append(p.AlternateUnits, product.AlternateUnit{
			UnitID:     id.New(),
			Name:       u.Name,
			Conversion: u.Conversion,
			TierPrices: pricing.TierPrices{
				Retail:    u.RetailPrice,
				Wholesale: u.WholesalePrice,
				Special1:  u.Special1Price,
				Special2:  u.Special2Price,
			},
			Barcode: u.Barcode,
		})
	}
	return p
}

// UpdateProductRequest for updating products. Nil pointers leave the
// current value untouched.
type UpdateProductRequest struct {
	Code           *string          `json:"code"`
	Name           *string          `json:"name"`
	ParentID       *string          `json:"parentId"`
	Barcode        *string          `json:"barcode"`
	BaseUnitID     *string          `json:"baseUnitId"`
	BaseUnitName   *string          `json:"baseUnitName"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	RetailPrice    *decimal.Decimal `json:"retailPrice"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice"`
	Special1Price  *decimal.Decimal `json:"special1Price"`
	Special2Price  *decimal.Decimal `json:"special2Price"`
	AllowBatches   *bool            `json:"allowBatches"`
	Version        int              `json:"version" binding:"required,min=1"`
}

// Apply copies the set fields onto an existing product.
func (r UpdateProductRequest) Apply(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.ParentID != nil {
		p.SetParent(*r.ParentID)
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.BaseUnitID != nil {
		p.BaseUnitID = *r.BaseUnitID
	}
	if r.BaseUnitName != nil {
		p.BaseUnitName = *r.BaseUnitName
	}
	if r.PurchasePrice != nil {
		p.PurchasePrice = *r.PurchasePrice
	}
	if r.RetailPrice != nil {
		p.TierPrices.Retail = *r.RetailPrice
	}
	if r.WholesalePrice != nil {
		p.TierPrices.Wholesale = *r.WholesalePrice
	}
	if r.Special1Price != nil {
		p.TierPrices.Special1 = *r.Special1Price
	}
	if r.Special2Price != nil {
		p.TierPrices.Special2 = *r.Special2Price
	}
	if r.AllowBatches != nil {
		p.AllowBatches = *r.AllowBatches
	}
	p.Version = r.Version
}

// ProductLookupResponse is returned by the barcode/code lookup endpoint.
type ProductLookupResponse struct {
	Product *product.Product `json:"product"`

	// MatchedUnitID is set when the tag matched an alternate unit barcode.
	MatchedUnitID *string `json:"matchedUnitId,omitempty"`
}
