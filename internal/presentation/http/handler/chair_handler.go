package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
)

// ChairHandler handles the chair board
type ChairHandler struct {
	chairService *service.ChairService
}

// NewChairHandler creates a new chair handler
func NewChairHandler(chairService *service.ChairService) *ChairHandler {
	return &ChairHandler{chairService: chairService}
}

// List handles listing chairs, optionally filtered by status
func (h *ChairHandler) List(c *gin.Context) {
	var status *enum.ChairStatus
	if statusStr := c.Query("status"); statusStr != "" {
		parsed, err := enum.ParseChairStatus(statusStr)
		if err != nil {
			response.BadRequest(c, "Invalid chair status")
			return
		}
		status = &parsed
	}

	chairs, err := h.chairService.ListChairs(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Chairs retrieved successfully", chairs)
}

// Create handles adding a chair
func (h *ChairHandler) Create(c *gin.Context) {
	var req request.CreateChairRequest
	if !bindJSON(c, &req) {
		return
	}

	chair, err := h.chairService.CreateChair(c.Request.Context(), req.ChairNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Chair created successfully", chair)
}

// Assign seats a bill on the chair
func (h *ChairHandler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid chair ID")
		return
	}

	var req request.AssignChairRequest
	if !bindJSON(c, &req) {
		return
	}

	chair, err := h.chairService.AssignChair(c.Request.Context(), id, req.BillID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Chair assigned successfully", chair)
}

// Release frees the chair without touching the bill's settlement
func (h *ChairHandler) Release(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid chair ID")
		return
	}

	chair, err := h.chairService.ReleaseChair(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Chair released successfully", chair)
}

// SetStatus handles maintenance and deactivation
func (h *ChairHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid chair ID")
		return
	}

	var req request.ChairStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	chair, err := h.chairService.SetChairStatus(c.Request.Context(), id, *req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Chair status updated successfully", chair)
}
