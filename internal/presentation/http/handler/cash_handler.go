package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// CashHandler handles drawer reconciliation and cash movements
type CashHandler struct {
	cashService *service.CashService
}

// NewCashHandler creates a new cash handler
func NewCashHandler(cashService *service.CashService) *CashHandler {
	return &CashHandler{cashService: cashService}
}

// Expected returns the expected drawer balance for a day
func (h *CashHandler) Expected(c *gin.Context) {
	day, err := parseDay("date", c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	breakdown, err := h.cashService.ExpectedCash(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expected cash computed successfully", breakdown)
}

// RecordReconciliation handles a drawer count
func (h *CashHandler) RecordReconciliation(c *gin.Context) {
	var req request.RecordReconciliationRequest
	if !bindJSON(c, &req) {
		return
	}
	day, err := parseDay("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	rec, err := h.cashService.RecordReconciliation(c.Request.Context(), &service.RecordReconciliationInput{
		Date:          day,
		Denominations: entity.Denominations(req.Denominations),
		Notes:         req.Notes,
		RecordedBy:    GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash reconciliation recorded successfully", rec)
}

// ListReconciliations handles listing drawer counts in a date range
func (h *CashHandler) ListReconciliations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	from, err := parseDay("from", c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDay("to", c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}

	recs, pages, err := h.cashService.ListReconciliations(c.Request.Context(), from, to, &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Cash reconciliations retrieved successfully", pagination.NewPaginatedResult(recs, pages))
}

// RecordDeposit handles moving drawer cash to a bank
func (h *CashHandler) RecordDeposit(c *gin.Context) {
	var req request.RecordBankDepositRequest
	if !bindJSON(c, &req) {
		return
	}
	day, err := parseDay("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	deposit, err := h.cashService.RecordBankDeposit(c.Request.Context(), &service.RecordBankDepositInput{
		Date:      day,
		BankName:  req.BankName,
		Amount:    req.Amount,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bank deposit recorded successfully", deposit)
}

// ListDeposits handles listing the deposits of a day
func (h *CashHandler) ListDeposits(c *gin.Context) {
	day, err := parseDay("date", c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	deposits, err := h.cashService.ListBankDeposits(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bank deposits retrieved successfully", deposits)
}

// RecordInflow handles non-sale cash coming into the drawer
func (h *CashHandler) RecordInflow(c *gin.Context) {
	var req request.RecordCashInflowRequest
	if !bindJSON(c, &req) {
		return
	}
	day, err := parseDay("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	inflow, err := h.cashService.RecordCashInflow(c.Request.Context(), &service.RecordCashInflowInput{
		Date:   day,
		Source: req.Source,
		Amount: req.Amount,
		Notes:  req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash inflow recorded successfully", inflow)
}

// RecordExpense handles money paid out by the branch
func (h *CashHandler) RecordExpense(c *gin.Context) {
	var req request.RecordExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	day, err := parseDay("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	expense, err := h.cashService.RecordExpense(c.Request.Context(), &service.RecordExpenseInput{
		Date:        day,
		Category:    req.Category,
		PaymentMode: *req.PaymentMode,
		Amount:      req.Amount,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense recorded successfully", expense)
}
