package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bailbooks-api",
		"version": "1.0.0",
	})
}

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Tags Audits
// @Produce json
// @Param entity query string false "BondCase, Installment, Expense or Deposit"
// @Param entity_id query int false "Entity ID"
// @Param action query string false "Audit action"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := listQuery(c, "entity", "entity_id", "action")

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": pagination(query, total)})
}
