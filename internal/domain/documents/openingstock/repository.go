package openingstock

import (
	"context"
	"time"

	"posline/internal/core/id"
	"posline/internal/domain"
	"posline/internal/domain/document"
)

// Repository defines persistence for opening stock documents.
type Repository interface {
	Create(ctx context.Context, doc *OpeningStock) error
	GetByID(ctx context.Context, docID id.ID) (*OpeningStock, error)
	GetByNumber(ctx context.Context, number string) (*OpeningStock, error)
	Update(ctx context.Context, doc *OpeningStock) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]*document.LineItem, error)
	SaveLines(ctx context.Context, docID id.ID, lines []*document.LineItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*OpeningStock], error)
}

// ListFilter filters opening stock lists.
type ListFilter struct {
	domain.ListFilter

	DateFrom *time.Time
	DateTo   *time.Time
}
