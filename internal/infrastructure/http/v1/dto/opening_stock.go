package dto

import (
	"time"

	"posline/internal/domain/document"
	"posline/internal/domain/documents/openingstock"
)

// CreateOpeningStockRequest for recording initial stock on hand.
type CreateOpeningStockRequest struct {
	Date    time.Time            `json:"date"`
	Comment string               `json:"comment"`
	Lines   []*document.LineItem `json:"lines" binding:"required"`
}

// ToModel converts the request into a domain document.
func (r CreateOpeningStockRequest) ToModel() *openingstock.OpeningStock {
	doc := openingstock.New()
	if !r.Date.IsZero() {
		doc.Date = r.Date
	}
	doc.Comment = r.Comment
	doc.Lines = r.Lines
	return doc
}

// UpdateOpeningStockRequest for updating opening stock documents.
type UpdateOpeningStockRequest struct {
	Date    *time.Time           `json:"date"`
	Comment *string              `json:"comment"`
	Lines   []*document.LineItem `json:"lines"`
	Version int                  `json:"version" binding:"required,min=1"`
}

// Apply copies the set fields onto an existing document.
func (r UpdateOpeningStockRequest) Apply(doc *openingstock.OpeningStock) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	if r.Lines != nil {
		doc.Lines = r.Lines
	}
	doc.Version = r.Version
}
