package dto

import (
	"github.com/shopspring/decimal"

	"posline/internal/domain/batch"
)

// AvailabilityResponse reports on-hand stock for a product in
// base-unit pieces.
type AvailabilityResponse struct {
	ProductID string          `json:"productId"`
	Available decimal.Decimal `json:"available"`
}

// BatchListResponse lists the stock batches of a product.
type BatchListResponse struct {
	ProductID string         `json:"productId"`
	Batches   []*batch.Batch `json:"batches"`
}
