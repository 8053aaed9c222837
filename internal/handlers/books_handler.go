package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type BooksHandler struct {
	booksService *services.BooksService
}

func NewBooksHandler(booksService *services.BooksService) *BooksHandler {
	return &BooksHandler{booksService: booksService}
}

type ExpenseRequest struct {
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	IncurredOn  *string          `json:"incurred_on"`
	Description *string          `json:"description"`
}

func (r ExpenseRequest) input() (services.ExpenseInput, error) {
	on, err := parseOptionalDate(r.IncurredOn)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	return services.ExpenseInput{
		Category:    r.Category,
		Amount:      r.Amount,
		IncurredOn:  on,
		Description: r.Description,
	}, nil
}

type DepositRequest struct {
	CaseID      *uint            `json:"case_id"`
	Amount      *decimal.Decimal `json:"amount"`
	ReceivedOn  *string          `json:"received_on"`
	Description *string          `json:"description"`
}

func (r DepositRequest) input() (services.DepositInput, error) {
	on, err := parseOptionalDate(r.ReceivedOn)
	if err != nil {
		return services.DepositInput{}, err
	}
	return services.DepositInput{
		CaseID:      r.CaseID,
		Amount:      r.Amount,
		ReceivedOn:  on,
		Description: r.Description,
	}, nil
}

// @Summary List Expenses
// @Tags Books
// @Produce json
// @Param category query string false "Category"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /expenses [get]
func (h *BooksHandler) ExpenseIndex(c *gin.Context) {
	query := listQuery(c, "category", "start_date", "end_date")
	expenses, total, err := h.booksService.ListExpenses(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses, "pagination": pagination(query, total)})
}

// @Summary Get Expense
// @Tags Books
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Success 200 {object} models.Expense
// @Security BearerAuth
// @Router /expenses/{expense_id} [get]
func (h *BooksHandler) ExpenseShow(c *gin.Context) {
	id, ok := paramID(c, "expense_id")
	if !ok {
		return
	}
	expense, err := h.booksService.GetExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// @Summary Create Expense
// @Tags Books
// @Accept json
// @Produce json
// @Param request body ExpenseRequest true "Expense"
// @Success 201 {object} models.Expense
// @Security BearerAuth
// @Router /expenses [post]
func (h *BooksHandler) ExpenseCreate(c *gin.Context) {
	var req ExpenseRequest
	if err := BindNestedOrFlat(c, "expense", &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	expense, err := h.booksService.CreateExpense(c.Request.Context(), in, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// @Summary Update Expense
// @Tags Books
// @Accept json
// @Produce json
// @Param expense_id path int true "Expense ID"
// @Param request body ExpenseRequest true "Expense"
// @Success 200 {object} models.Expense
// @Security BearerAuth
// @Router /expenses/{expense_id} [patch]
func (h *BooksHandler) ExpenseUpdate(c *gin.Context) {
	id, ok := paramID(c, "expense_id")
	if !ok {
		return
	}
	var req ExpenseRequest
	if err := BindNestedOrFlat(c, "expense", &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	expense, err := h.booksService.UpdateExpense(c.Request.Context(), id, in, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// @Summary Delete Expense
// @Tags Books
// @Param expense_id path int true "Expense ID"
// @Success 204
// @Security BearerAuth
// @Router /expenses/{expense_id} [delete]
func (h *BooksHandler) ExpenseDelete(c *gin.Context) {
	id, ok := paramID(c, "expense_id")
	if !ok {
		return
	}
	if err := h.booksService.DeleteExpense(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List Deposits
// @Tags Books
// @Produce json
// @Param case_id query int false "Case ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /deposits [get]
func (h *BooksHandler) DepositIndex(c *gin.Context) {
	query := listQuery(c, "case_id", "start_date", "end_date")
	deposits, total, err := h.booksService.ListDeposits(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits, "pagination": pagination(query, total)})
}

// @Summary Get Deposit
// @Tags Books
// @Produce json
// @Param deposit_id path int true "Deposit ID"
// @Success 200 {object} models.Deposit
// @Security BearerAuth
// @Router /deposits/{deposit_id} [get]
func (h *BooksHandler) DepositShow(c *gin.Context) {
	id, ok := paramID(c, "deposit_id")
	if !ok {
		return
	}
	deposit, err := h.booksService.GetDeposit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

// @Summary Create Deposit
// @Tags Books
// @Accept json
// @Produce json
// @Param request body DepositRequest true "Deposit"
// @Success 201 {object} models.Deposit
// @Security BearerAuth
// @Router /deposits [post]
func (h *BooksHandler) DepositCreate(c *gin.Context) {
	var req DepositRequest
	if err := BindNestedOrFlat(c, "deposit", &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	deposit, err := h.booksService.CreateDeposit(c.Request.Context(), in, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

// @Summary Update Deposit
// @Tags Books
// @Accept json
// @Produce json
// @Param deposit_id path int true "Deposit ID"
// @Param request body DepositRequest true "Deposit"
// @Success 200 {object} models.Deposit
// @Security BearerAuth
// @Router /deposits/{deposit_id} [patch]
func (h *BooksHandler) DepositUpdate(c *gin.Context) {
	id, ok := paramID(c, "deposit_id")
	if !ok {
		return
	}
	var req DepositRequest
	if err := BindNestedOrFlat(c, "deposit", &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	deposit, err := h.booksService.UpdateDeposit(c.Request.Context(), id, in, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

// @Summary Delete Deposit
// @Tags Books
// @Param deposit_id path int true "Deposit ID"
// @Success 204
// @Security BearerAuth
// @Router /deposits/{deposit_id} [delete]
func (h *BooksHandler) DepositDelete(c *gin.Context) {
	id, ok := paramID(c, "deposit_id")
	if !ok {
		return
	}
	if err := h.booksService.DeleteDeposit(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
