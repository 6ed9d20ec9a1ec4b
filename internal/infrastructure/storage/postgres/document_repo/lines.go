package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posline/internal/core/id"
	"posline/internal/domain/document"
	"posline/internal/infrastructure/storage/postgres"
)

// lineColumns are the persisted columns of a document line, matching
// the "db" tags on document.LineItem. line_no orders rows and is
// derived from slice position on save.
var lineColumns = []string{
	"id", "product_id", "product_code", "product_name",
	"unit_id", "unit_name", "conversion", "multi_unit_id",
	"quantity", "unit_price", "discount_percent", "discount_amount",
	"gross", "net", "vat", "total", "cost_basis",
	"sell_retail", "sell_wholesale", "profit",
	"batch_id", "batch_number",
}

// getLines loads the table part of a document ordered by line number.
func getLines(ctx context.Context, querier postgres.Querier, table string, docID id.ID) ([]*document.LineItem, error) {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(lineColumns...).
		From(table).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []*document.LineItem
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// saveLines replaces the table part of a document (delete + insert).
func saveLines(ctx context.Context, querier postgres.Querier, table string, docID id.ID, lines []*document.LineItem) error {
	deleteSQL := "DELETE FROM " + table + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	cols := append([]string{"document_id", "line_no"}, lineColumns...)
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert(table).
		Columns(cols...)

	for i, line := range lines {
		q = q.Values(
			docID, i+1,
			line.ID, line.ProductID, line.ProductCode, line.ProductName,
			line.UnitID, line.UnitName, line.Conversion, line.MultiUnitID,
			line.Quantity, line.UnitPrice, line.DiscountPercent, line.DiscountAmount,
			line.Gross, line.Net, line.VAT, line.Total, line.CostBasis,
			line.SellRetail, line.SellWholesale, line.Profit,
			line.BatchID, line.BatchNumber,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}
