package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/domain"
	"posline/internal/domain/documents/salesinvoice"
	"posline/internal/infrastructure/http/v1/dto"
)

// SalesInvoiceHandler provides HTTP handlers for sales invoices.
type SalesInvoiceHandler struct {
	*BaseHandler
	service *salesinvoice.Service
}

// NewSalesInvoiceHandler creates a new sales invoice handler.
func NewSalesInvoiceHandler(base *BaseHandler, service *salesinvoice.Service) *SalesInvoiceHandler {
	return &SalesInvoiceHandler{BaseHandler: base, service: service}
}

// List handles GET /document/sales-invoice.
func (h *SalesInvoiceHandler) List(c *gin.Context) {
	filter := salesinvoice.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	if customer := c.Query("customerName"); customer != "" {
		filter.CustomerName = &customer
	}

	if from := c.Query("dateFrom"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format (RFC3339 expected)"))
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("dateTo"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format (RFC3339 expected)"))
			return
		}
		filter.DateTo = &t
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Create handles POST /document/sales-invoice.
func (h *SalesInvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateSalesInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToModel()
	if userID := h.GetUserID(c); userID != "" {
		doc.CreatedBy = userID
		doc.UpdatedBy = userID
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// Get handles GET /document/sales-invoice/:id.
func (h *SalesInvoiceHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Update handles PUT /document/sales-invoice/:id.
func (h *SalesInvoiceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateSalesInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(doc)
	if userID := h.GetUserID(c); userID != "" {
		doc.UpdatedBy = userID
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /document/sales-invoice/:id.
func (h *SalesInvoiceHandler) Delete(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
