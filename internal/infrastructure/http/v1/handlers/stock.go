package handlers

import (
	"github.com/gin-gonic/gin"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/domain/batch"
	"posline/internal/domain/stock"
	"posline/internal/infrastructure/http/v1/dto"
)

// StockHandler provides HTTP handlers for stock and batch lookups.
type StockHandler struct {
	*BaseHandler
	lookup  stock.Lookup
	batches batch.Repository
}

// NewStockHandler creates a new stock handler. The lookup should be the
// live repository, not the session cache; API readers expect current
// figures.
func NewStockHandler(base *BaseHandler, lookup stock.Lookup, batches batch.Repository) *StockHandler {
	return &StockHandler{BaseHandler: base, lookup: lookup, batches: batches}
}

// GetAvailability handles GET /stock/availability/:productId.
func (h *StockHandler) GetAvailability(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	available, err := h.lookup.Available(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvailabilityResponse{
		ProductID: productID.String(),
		Available: available,
	})
}

// GetBatches handles GET /stock/batches/:productId.
func (h *StockHandler) GetBatches(c *gin.Context) {
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	batches, err := h.batches.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BatchListResponse{
		ProductID: productID.String(),
		Batches:   batches,
	})
}
