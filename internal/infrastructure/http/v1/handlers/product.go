package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/domain"
	"posline/internal/domain/catalogs/product"
	domainFilter "posline/internal/domain/filter"
	"posline/internal/infrastructure/http/v1/dto"
)

// ProductHandler provides HTTP handlers for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// List handles GET /products - list with filtering and pagination.
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if parentID := c.Query("parentId"); parentID != "" {
		filter.ParentID = &parentID
	}

	if isFolder := c.Query("isFolder"); isFolder != "" {
		val := isFolder == "true"
		filter.IsFolder = &val
	}

	if filterJSON := c.Query("filter"); filterJSON != "" {
		var advFilters []domainFilter.Item
		if err := json.Unmarshal([]byte(filterJSON), &advFilters); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return
		}
		filter.AdvancedFilters = advFilters
	}

	result, err := h.service.List(ctx, filter)
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

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToModel()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(p)

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Delete handles DELETE /products/:id (soft delete via deletion mark).
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GetTree handles GET /products/tree - product group hierarchy.
func (h *ProductHandler) GetTree(c *gin.Context) {
	var rootID *id.ID
	if root := c.Query("rootId"); root != "" {
		parsed, err := id.Parse(root)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid rootId format"))
			return
		}
		rootID = &parsed
	}

	tree, err := h.service.GetTree(c.Request.Context(), rootID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": tree})
}

// Lookup handles GET /products/lookup?tag= - resolve a barcode, serial
// tag, or product code the way a scanner entry would.
func (h *ProductHandler) Lookup(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		h.Error(c, apperror.NewValidation("tag is required"))
		return
	}

	p, unitID, err := h.service.FindByTag(c.Request.Context(), tag)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ProductLookupResponse{Product: p}
	if unitID != nil {
		s := unitID.String()
		resp.MatchedUnitID = &s
	}
	h.OK(c, resp)
}
