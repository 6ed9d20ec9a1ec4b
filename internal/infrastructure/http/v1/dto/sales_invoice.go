package dto

import (
	"time"

	"posline/internal/domain/document"
	"posline/internal/domain/documents/salesinvoice"
	"posline/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

// CreateSalesInvoiceRequest for creating sales invoices. Totals are
// recomputed server-side; any client-sent totals are ignored.
type CreateSalesInvoiceRequest struct {
	Date         time.Time            `json:"date"`
	Comment      string               `json:"comment"`
	CustomerName string               `json:"customerName"`
	Tier         pricing.RateTier     `json:"tier"`
	TaxType      pricing.TaxType      `json:"taxType"`
	TaxMode      pricing.TaxMode      `json:"taxMode"`
	TaxRate      decimal.Decimal      `json:"taxRate"`
	Adjustments  document.Adjustments `json:"adjustments"`
	Lines        []*document.LineItem `json:"lines" binding:"required"`
}

// ToModel converts the request into a domain invoice.
func (r CreateSalesInvoiceRequest) ToModel() *salesinvoice.SalesInvoice {
	tier := r.Tier
	if tier == "" {
		tier = pricing.TierRetail
	}
	doc := salesinvoice.New(tier, r.TaxType, r.TaxMode, r.TaxRate)
	if !r.Date.IsZero() {
		doc.Date = r.Date
	}
	doc.Comment = r.Comment
	doc.CustomerName = r.CustomerName
	doc.Adjustments = r.Adjustments
	doc.Lines = r.Lines
	return doc
}

// UpdateSalesInvoiceRequest for updating sales invoices.
type UpdateSalesInvoiceRequest struct {
	Date         *time.Time            `json:"date"`
	Comment      *string               `json:"comment"`
	CustomerName *string               `json:"customerName"`
	Adjustments  *document.Adjustments `json:"adjustments"`
	Lines        []*document.LineItem  `json:"lines"`
	Version      int                   `json:"version" binding:"required,min=1"`
}

// Apply copies the set fields onto an existing invoice.
func (r UpdateSalesInvoiceRequest) Apply(doc *salesinvoice.SalesInvoice) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	if r.CustomerName != nil {
		doc.CustomerName = *r.CustomerName
	}
	if r.Adjustments != nil {
		doc.Adjustments = *r.Adjustments
	}
	if r.Lines != nil {
		doc.Lines = r.Lines
	}
	doc.Version = r.Version
}
