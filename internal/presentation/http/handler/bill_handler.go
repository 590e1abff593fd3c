package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// BillHandler handles bill intake and settlement requests
type BillHandler struct {
	billingService *service.BillingService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billingService *service.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

// List handles listing bills of the branch
func (h *BillHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := enum.ParseBillStatus(statusStr)
		if err != nil {
			response.BadRequest(c, "Invalid bill status")
			return
		}
		params.Status = &status
	}

	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}

	if chairIDStr := c.Query("chair_id"); chairIDStr != "" {
		if chairID, err := uuid.Parse(chairIDStr); err == nil {
			params.ChairID = &chairID
		}
	}

	startDate, err := parseDay("start_date", c.Query("start_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	endDate, err := parseDay("end_date", c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	params.StartDate = startDate
	params.EndDate = endDate

	bills, pages, err := h.billingService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", pagination.NewPaginatedResult(bills, pages))
}

// Create handles bill intake from order entry
func (h *BillHandler) Create(c *gin.Context) {
	var req request.CreateBillRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.BillItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.BillItemInput{
			ItemType:       item.ItemType,
			ItemID:         item.ItemID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
		}
	}

	bill, err := h.billingService.CreateBill(c.Request.Context(), &service.CreateBillInput{
		CustomerID:     req.CustomerID,
		ChairID:        req.ChairID,
		Items:          items,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		Notes:          req.Notes,
		Draft:          req.Draft,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// Get handles getting a single bill
func (h *BillHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// Confirm moves a draft bill to pending
func (h *BillHandler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billingService.ConfirmBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill confirmed successfully", bill)
}

// Complete settles a bill in full or in part.
// The expected version may come from the body or an If-Match header.
func (h *BillHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	var req request.CompleteBillRequest
	if !bindJSON(c, &req) {
		return
	}

	version := req.Version
	if version == nil {
		if match := strings.Trim(c.GetHeader("If-Match"), `"W/`); match != "" {
			v, err := strconv.ParseInt(match, 10, 64)
			if err != nil {
				response.BadRequest(c, "Invalid If-Match version")
				return
			}
			version = &v
		}
	}

	payments := make([]service.PaymentInput, len(req.Payments))
	for i, p := range req.Payments {
		payments[i] = service.PaymentInput{
			Mode:      *p.PaymentMode,
			Amount:    p.Amount,
			Reference: p.Reference,
			BankName:  p.BankName,
		}
	}

	bill, err := h.billingService.CompleteBill(c.Request.Context(), &service.CompleteBillInput{
		BillID:          id,
		Payments:        payments,
		Notes:           req.Notes,
		PendingItemIDs:  req.PendingItemIDs,
		ExpectedVersion: version,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Bill settled successfully"
	if bill.Status == enum.BillStatusPartial {
		message = "Bill partially settled"
	}
	response.OK(c, message, bill)
}

// Cancel handles cancelling an unsettled bill
func (h *BillHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billingService.CancelBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill cancelled successfully", bill)
}

// UpdateItemStatus moves one bill item through its lifecycle
func (h *BillHandler) UpdateItemStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid bill ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req request.UpdateItemStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billingService.UpdateItemStatus(c.Request.Context(), id, itemID, *req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item status updated successfully", bill)
}
