package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posline/internal/core/id"
	"posline/internal/domain"
	"posline/internal/domain/document"
	"posline/internal/domain/documents/salesinvoice"
	"posline/internal/infrastructure/storage/postgres"
)

const (
	salesInvoicesTable     = "doc_sales_invoices"
	salesInvoiceLinesTable = "doc_sales_invoice_lines"
)

// SalesInvoiceRepo implements salesinvoice.Repository.
type SalesInvoiceRepo struct {
	*BaseDocumentRepo[*salesinvoice.SalesInvoice]
	txm *postgres.TxManager
}

// NewSalesInvoiceRepo creates a sales invoice repository.
func NewSalesInvoiceRepo(txm *postgres.TxManager) *SalesInvoiceRepo {
	return &SalesInvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			salesInvoicesTable,
			postgres.ExtractDBColumns[salesinvoice.SalesInvoice](),
			func() *salesinvoice.SalesInvoice { return &salesinvoice.SalesInvoice{} },
		),
		txm: txm,
	}
}

var _ salesinvoice.Repository = (*SalesInvoiceRepo)(nil)

// GetLines retrieves lines for a sales invoice.
func (r *SalesInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]*document.LineItem, error) {
	return getLines(ctx, r.txm.GetQuerier(ctx), salesInvoiceLinesTable, docID)
}

// SaveLines replaces the lines of a sales invoice.
func (r *SalesInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []*document.LineItem) error {
	return saveLines(ctx, r.txm.GetQuerier(ctx), salesInvoiceLinesTable, docID, lines)
}

// List retrieves sales invoices with document-specific filtering.
func (r *SalesInvoiceRepo) List(ctx context.Context, f salesinvoice.ListFilter) (domain.ListResult[*salesinvoice.SalesInvoice], error) {
	result := domain.ListResult[*salesinvoice.SalesInvoice]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect()

	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if f.CustomerName != nil {
		q = q.Where(squirrel.ILike{"customer_name": "%" + *f.CustomerName + "%"})
	}

	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}

	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"customer_name": pattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
