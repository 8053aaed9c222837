package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type InstallmentHandler struct {
	ledgerService *services.LedgerService
}

func NewInstallmentHandler(ledgerService *services.LedgerService) *InstallmentHandler {
	return &InstallmentHandler{ledgerService: ledgerService}
}

// @Summary List Installments
// @Description Installments across cases. status accepts a comma list or "overdue".
// @Tags Installments
// @Produce json
// @Param case_id query int false "Case ID"
// @Param status query string false "Status filter"
// @Param source query string false "plan or manual"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installments [get]
func (h *InstallmentHandler) Index(c *gin.Context) {
	query := listQuery(c, "case_id", "status", "source", "start_date", "end_date")

	installments, total, err := h.ledgerService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"installments": installments,
		"pagination":   pagination(query, total),
	})
}

// @Summary Get Installment
// @Tags Installments
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Success 200 {object} models.Installment
// @Security BearerAuth
// @Router /installments/{installment_id} [get]
func (h *InstallmentHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "installment_id")
	if !ok {
		return
	}
	inst, err := h.ledgerService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

type PayInstallmentRequest struct {
	Method string `json:"method" binding:"required"`
}

// @Summary Mark Installment Paid
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param request body PayInstallmentRequest true "Payment method"
// @Success 200 {object} models.Installment
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/pay [post]
func (h *InstallmentHandler) Pay(c *gin.Context) {
	id, ok := paramID(c, "installment_id")
	if !ok {
		return
	}
	var req PayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	inst, err := h.ledgerService.MarkPaid(c.Request.Context(), id, req.Method, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

type FailInstallmentRequest struct {
	Reason string `json:"reason"`
}

// @Summary Mark Installment Failed
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param request body FailInstallmentRequest false "Failure reason"
// @Success 200 {object} models.Installment
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/fail [post]
func (h *InstallmentHandler) Fail(c *gin.Context) {
	id, ok := paramID(c, "installment_id")
	if !ok {
		return
	}
	var req FailInstallmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	inst, err := h.ledgerService.MarkFailed(c.Request.Context(), id, req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

// @Summary Cancel Installment
// @Tags Installments
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Success 200 {object} models.Installment
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/cancel [post]
func (h *InstallmentHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "installment_id")
	if !ok {
		return
	}
	inst, err := h.ledgerService.Cancel(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

// ManualPaymentRequest records a payment outside any plan. status defaults to paid.
type ManualPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Description string          `json:"description" binding:"max=500"`
	Status      string          `json:"status"`
	DueDate     *string         `json:"due_date"`
}

// @Summary Record Manual Payment
// @Tags Installments
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body ManualPaymentRequest true "Payment"
// @Success 201 {object} models.Installment
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /cases/{case_id}/installments [post]
func (h *InstallmentHandler) RecordManual(c *gin.Context) {
	caseID, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	var req ManualPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	inst, err := h.ledgerService.RecordManual(c.Request.Context(), caseID, services.ManualPaymentInput{
		Amount:      req.Amount,
		Method:      req.Method,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     due,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inst)
}

// @Summary Cancel Pending Installments
// @Description Cancel every pending installment of a case without generating a new plan
// @Tags Installments
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cases/{case_id}/installments/cancel_pending [post]
func (h *InstallmentHandler) CancelPending(c *gin.Context) {
	caseID, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	n, err := h.ledgerService.CancelPending(c.Request.Context(), caseID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": n})
}

// @Summary Case Ledger
// @Description Ordered installments with overdue flags and running balances
// @Tags Installments
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} engine.CaseLedger
// @Security BearerAuth
// @Router /cases/{case_id}/ledger [get]
func (h *InstallmentHandler) Ledger(c *gin.Context) {
	caseID, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	ledger, err := h.ledgerService.Ledger(c.Request.Context(), caseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// @Summary Case Totals
// @Tags Installments
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} engine.Totals
// @Security BearerAuth
// @Router /cases/{case_id}/totals [get]
func (h *InstallmentHandler) Totals(c *gin.Context) {
	caseID, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	totals, err := h.ledgerService.Totals(c.Request.Context(), caseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"case_id": caseID,
		"totals":  totals,
	})
}
