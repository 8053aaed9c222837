package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type QuoteHandler struct {
	quoteService *services.QuoteService
}

func NewQuoteHandler(quoteService *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

type QuoteRequest struct {
	BondAmount  decimal.Decimal  `json:"bond_amount"`
	PremiumRate *decimal.Decimal `json:"premium_rate"`
	Premium     *decimal.Decimal `json:"premium"`
	DownPayment *decimal.Decimal `json:"down_payment"`
}

// @Summary Quote
// @Description Price a bond amount: premium, down payment, three suggested terms and an optional recommendation
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote Data"
// @Success 200 {object} services.QuoteResult
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.quoteService.Quote(c.Request.Context(), services.QuoteRequest{
		BondAmount:  req.BondAmount,
		PremiumRate: req.PremiumRate,
		Premium:     req.Premium,
		DownPayment: req.DownPayment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
