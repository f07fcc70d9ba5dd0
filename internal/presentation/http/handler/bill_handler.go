package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/venue-pos-api/internal/application/service"
	"github.com/sangkips/venue-pos-api/internal/domain/enum"
	"github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/venue-pos-api/pkg/pagination"
)

// BillHandler handles bill-related HTTP requests
type BillHandler struct {
	billService *service.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// List handles listing bills
func (h *BillHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		TableLabel: c.Query("table"),
		SortOrder:  c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := enum.BillStatus(statusStr)
		if !status.Valid() {
			response.BadRequest(c, "Invalid bill status")
			return
		}
		params.Status = &status
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			// include the whole end day
			endDate = endDate.Add(24*time.Hour - time.Nanosecond)
			params.EndDate = &endDate
		}
	}

	result, err := h.billService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

// Create handles opening a bill
func (h *BillHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill opened successfully", bill)
}

// Get handles getting a single bill with its orders
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// Items handles listing the aggregated rows of a bill
func (h *BillHandler) Items(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	items, err := h.billService.GetBillItems(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill items retrieved successfully", response.NewBillItemsResponse(items))
}

// Pay handles paying some or all of the items on a bill
func (h *BillHandler) Pay(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.PayItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.billService.PayItems(c.Request.Context(), id, req.ToInput(userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", response.NewPaymentResponse(result))
}

// PaySession handles a payment towards one session charge on a bill
func (h *BillHandler) PaySession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "session_id", "session")
	if !ok {
		return
	}

	var req request.PaySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.billService.PaySession(c.Request.Context(), id, sessionID, req.ToInput(userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Session payment recorded successfully", response.NewPaymentResponse(result))
}

// Cancel handles cancelling a bill
func (h *BillHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.CancelBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill cancelled successfully", bill)
}

// Refresh handles recomputing a bill's totals and status
func (h *BillHandler) Refresh(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.Refresh(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill refreshed successfully", bill)
}
