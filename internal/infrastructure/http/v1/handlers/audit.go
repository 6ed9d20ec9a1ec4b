package handlers

import (
	"github.com/gin-gonic/gin"

	"posline/internal/core/apperror"
	"posline/internal/core/id"
	"posline/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes audit history for documents.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

// GetHistory handles GET /audit/:entityType/:id.
func (h *AuditHandler) GetHistory(c *gin.Context) {
	entityType := c.Param("entityType")
	if entityType == "" {
		h.Error(c, apperror.NewValidation("entityType is required"))
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.audit.GetEntityHistory(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"entries": entries})
}
