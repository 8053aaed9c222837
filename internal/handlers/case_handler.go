package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type CaseHandler struct {
	caseService  *services.CaseService
	quoteService *services.QuoteService
}

func NewCaseHandler(caseService *services.CaseService, quoteService *services.QuoteService) *CaseHandler {
	return &CaseHandler{caseService: caseService, quoteService: quoteService}
}

// CaseRequest is the body for creating or updating a case. Amounts may be sent as
// JSON numbers or strings.
type CaseRequest struct {
	CaseNumber       *string          `json:"case_number"`
	DefendantName    *string          `json:"defendant_name"`
	IndemnitorName   *string          `json:"indemnitor_name"`
	BondAmount       *decimal.Decimal `json:"bond_amount"`
	PremiumRate      *decimal.Decimal `json:"premium_rate"`
	Premium          *decimal.Decimal `json:"premium"`
	DownPayment      *decimal.Decimal `json:"down_payment"`
	PaymentAmount    *decimal.Decimal `json:"payment_amount"`
	PaymentFrequency *string          `json:"payment_frequency"`
	Note             *string          `json:"note"`
}

func (r CaseRequest) input() services.CaseInput {
	return services.CaseInput{
		CaseNumber:       r.CaseNumber,
		DefendantName:    r.DefendantName,
		IndemnitorName:   r.IndemnitorName,
		BondAmount:       r.BondAmount,
		PremiumRate:      r.PremiumRate,
		Premium:          r.Premium,
		DownPayment:      r.DownPayment,
		PaymentAmount:    r.PaymentAmount,
		PaymentFrequency: r.PaymentFrequency,
		Note:             r.Note,
	}
}

// @Summary List Cases
// @Description Get a paginated list of bond cases
// @Tags Cases
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Case number, defendant or indemnitor"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cases [get]
func (h *CaseHandler) Index(c *gin.Context) {
	query := listQuery(c, "start_date", "end_date")

	cases, total, err := h.caseService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases":      cases,
		"pagination": pagination(query, total),
	})
}

// @Summary Get Case
// @Description Get a case with its quote and ledger totals
// @Tags Cases
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} services.CaseDetail
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /cases/{case_id} [get]
func (h *CaseHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	detail, err := h.caseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary Create Case
// @Tags Cases
// @Accept json
// @Produce json
// @Param request body CaseRequest true "Case Data"
// @Success 201 {object} models.BondCase
// @Security BearerAuth
// @Router /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	var req CaseRequest
	if err := BindNestedOrFlat(c, "case", &req); err != nil {
		badRequest(c, err.Error())
		return
	}

	bondCase, err := h.caseService.Create(c.Request.Context(), req.input(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bondCase)
}

// @Summary Update Case
// @Description Update case fields. A premium or down payment of 0 restores the derived value.
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body CaseRequest true "Case Data"
// @Success 200 {object} models.BondCase
// @Security BearerAuth
// @Router /cases/{case_id} [patch]
func (h *CaseHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	var req CaseRequest
	if err := BindNestedOrFlat(c, "case", &req); err != nil {
		badRequest(c, err.Error())
		return
	}

	bondCase, err := h.caseService.Update(c.Request.Context(), id, req.input(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bondCase)
}

// @Summary Case Quote
// @Description Premium, down payment, suggested terms and recommendation for a stored case
// @Tags Cases
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} services.QuoteResult
// @Security BearerAuth
// @Router /cases/{case_id}/quote [get]
func (h *CaseHandler) Quote(c *gin.Context) {
	id, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	result, err := h.quoteService.QuoteCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
