package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posline/internal/core/id"
	"posline/internal/domain"
	"posline/internal/domain/document"
	"posline/internal/domain/documents/openingstock"
	"posline/internal/infrastructure/storage/postgres"
)

const (
	openingStocksTable     = "doc_opening_stocks"
	openingStockLinesTable = "doc_opening_stock_lines"
)

// OpeningStockRepo implements openingstock.Repository.
type OpeningStockRepo struct {
	*BaseDocumentRepo[*openingstock.OpeningStock]
	txm *postgres.TxManager
}

// NewOpeningStockRepo creates an opening stock repository.
func NewOpeningStockRepo(txm *postgres.TxManager) *OpeningStockRepo {
	return &OpeningStockRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			openingStocksTable,
			postgres.ExtractDBColumns[openingstock.OpeningStock](),
			func() *openingstock.OpeningStock { return &openingstock.OpeningStock{} },
		),
		txm: txm,
	}
}

var _ openingstock.Repository = (*OpeningStockRepo)(nil)

// GetLines retrieves lines for an opening stock document.
func (r *OpeningStockRepo) GetLines(ctx context.Context, docID id.ID) ([]*document.LineItem, error) {
	return getLines(ctx, r.txm.GetQuerier(ctx), openingStockLinesTable, docID)
}

// SaveLines replaces the lines of an opening stock document.
func (r *OpeningStockRepo) SaveLines(ctx context.Context, docID id.ID, lines []*document.LineItem) error {
	return saveLines(ctx, r.txm.GetQuerier(ctx), openingStockLinesTable, docID, lines)
}

// List retrieves opening stock documents with date filtering.
func (r *OpeningStockRepo) List(ctx context.Context, f openingstock.ListFilter) (domain.ListResult[*openingstock.OpeningStock], error) {
	result := domain.ListResult[*openingstock.OpeningStock]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect()

	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}

	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}

	if f.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + f.Search + "%"})
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
