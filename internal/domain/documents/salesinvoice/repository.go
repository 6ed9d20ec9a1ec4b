package salesinvoice

import (
	"context"
	"time"

	"posline/internal/core/id"
	"posline/internal/domain"
	"posline/internal/domain/document"
)

// Repository defines persistence for sales invoices.
type Repository interface {
	Create(ctx context.Context, doc *SalesInvoice) error
	GetByID(ctx context.Context, docID id.ID) (*SalesInvoice, error)
	GetByNumber(ctx context.Context, number string) (*SalesInvoice, error)
	Update(ctx context.Context, doc *SalesInvoice) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]*document.LineItem, error)
	SaveLines(ctx context.Context, docID id.ID, lines []*document.LineItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesInvoice], error)
}

// ListFilter filters sales invoice lists.
type ListFilter struct {
	domain.ListFilter

	CustomerName *string
	DateFrom     *time.Time
	DateTo       *time.Time
}
