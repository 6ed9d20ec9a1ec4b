package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/domain/catalogs/product"
	"posline/internal/infrastructure/storage/postgres"
)

const (
	productTable     = "products"
	productUnitTable = "product_units"
)

// ProductRepo is the PostgreSQL implementation of product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
	txm *postgres.TxManager
}

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
		txm: txm,
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// GetAlternateUnits loads a product's alternate units ordered by name.
func (r *ProductRepo) GetAlternateUnits(ctx context.Context, productID id.ID) ([]product.AlternateUnit, error) {
	q := r.Builder().
		Select("unit_id", "name", "conversion",
			"retail_price", "wholesale_price", "special1_price", "special2_price",
			"barcode").
		From(productUnitTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []product.AlternateUnit
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &units, sql, args...); err != nil {
		return nil, fmt.Errorf("get alternate units: %w", err)
	}

	return units, nil
}

// FindByTag resolves a barcode/serial tag. Product-level tags win over
// alternate unit tags so a shared tag selects the base unit.
func (r *ProductRepo) FindByTag(ctx context.Context, tag string) (*product.Product, *id.ID, error) {
	p, err := r.FindOne(ctx, r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{
			squirrel.Eq{"barcode": tag},
			squirrel.Eq{"code": tag},
		}).
		Limit(1))
	if err == nil {
		return p, nil, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, nil, err
	}

	// Fall back to alternate unit barcodes.
	q := r.Builder().
		Select("product_id", "unit_id").
		From(productUnitTable).
		Where(squirrel.Eq{"barcode": tag}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		ProductID id.ID `db:"product_id"`
		UnitID    id.ID `db:"unit_id"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil, apperror.NewNotFound("product", tag)
		}
		return nil, nil, fmt.Errorf("find by unit tag: %w", err)
	}

	p, err = r.GetByID(ctx, row.ProductID)
	if err != nil {
		return nil, nil, err
	}

	unitID := row.UnitID
	return p, &unitID, nil
}
