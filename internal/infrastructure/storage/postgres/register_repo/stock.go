// Package register_repo provides PostgreSQL implementations for the
// stock and batch registers.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"posline/internal/core/id"
	"posline/internal/domain/batch"
	"posline/internal/domain/stock"
	"posline/internal/infrastructure/storage/postgres"
)

const batchesTable = "stock_batches"

// availableSQL derives on-hand pieces for a product from persisted
// documents: opening stock receipts minus sales invoice issues, both
// scaled to base-unit pieces, skipping soft-deleted documents.
const availableSQL = `
	WITH receipts AS (
		SELECT COALESCE(SUM(l.quantity * l.conversion), 0) AS qty
		FROM doc_opening_stock_lines l
		JOIN doc_opening_stocks d ON d.id = l.document_id
		WHERE l.product_id = $1 AND d.deletion_mark = false
	),
	issues AS (
		SELECT COALESCE(SUM(l.quantity * l.conversion), 0) AS qty
		FROM doc_sales_invoice_lines l
		JOIN doc_sales_invoices d ON d.id = l.document_id
		WHERE l.product_id = $1 AND d.deletion_mark = false
	)
	SELECT receipts.qty - issues.qty FROM receipts, issues
`

// StockRepo serves live stock figures and batch lists.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var (
	_ stock.Lookup     = (*StockRepo)(nil)
	_ batch.Repository = (*StockRepo)(nil)
)

// Available returns current on-hand pieces for a product.
func (r *StockRepo) Available(ctx context.Context, productID id.ID) (decimal.Decimal, error) {
	var qty decimal.Decimal
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, availableSQL, productID).Scan(&qty); err != nil {
		return decimal.Decimal{}, fmt.Errorf("stock available: %w", err)
	}
	return qty, nil
}

// ListByProduct returns the product's batches ordered by receipt time.
// Zero-quantity batches are included: they still carry price data.
func (r *StockRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*batch.Batch, error) {
	q := r.builder.Select(
		"id", "product_id", "number", "quantity",
		"purchase_price", "retail_price", "wholesale_price", "received_at",
	).From(batchesTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("received_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []*batch.Batch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}

	return batches, nil
}
