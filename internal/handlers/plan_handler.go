package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// PlanRequest is the body for previewing or generating a plan. Omitted amounts fall
// back to the case; term_index (1-3) selects one of the suggested terms.
type PlanRequest struct {
	TotalAmount       *decimal.Decimal `json:"total_amount"`
	DownPayment       *decimal.Decimal `json:"down_payment"`
	InstallmentAmount *decimal.Decimal `json:"installment_amount"`
	Frequency         string           `json:"frequency"`
	TermIndex         int              `json:"term_index"`
	StartDate         string           `json:"start_date" binding:"required"`
}

func (h *PlanHandler) bind(c *gin.Context) (uint, services.PlanRequest, bool) {
	id, ok := paramID(c, "case_id")
	if !ok {
		return 0, services.PlanRequest{}, false
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return 0, services.PlanRequest{}, false
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, err.Error())
		return 0, services.PlanRequest{}, false
	}
	return id, services.PlanRequest{
		TotalAmount:       req.TotalAmount,
		DownPayment:       req.DownPayment,
		InstallmentAmount: req.InstallmentAmount,
		Frequency:         req.Frequency,
		TermIndex:         req.TermIndex,
		StartDate:         start,
	}, true
}

// @Summary Preview Plan
// @Description Expand a payment plan for a case without saving it
// @Tags Plans
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body PlanRequest true "Plan Data"
// @Success 200 {object} services.PlanResult
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /cases/{case_id}/plan/preview [post]
func (h *PlanHandler) Preview(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := h.planService.Preview(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Generate Plan
// @Description Create the case's installments. Pending installments of an earlier plan are cancelled.
// @Tags Plans
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body PlanRequest true "Plan Data"
// @Success 201 {object} services.PlanResult
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /cases/{case_id}/plan [post]
func (h *PlanHandler) Generate(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := h.planService.Generate(c.Request.Context(), id, req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
