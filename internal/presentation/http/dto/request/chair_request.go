package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
)

// CreateChairRequest adds a chair to the branch
type CreateChairRequest struct {
	ChairNumber string `json:"chair_number" binding:"required,max=20"`
}

// AssignChairRequest seats a bill on a chair
type AssignChairRequest struct {
	BillID uuid.UUID `json:"bill_id" binding:"required"`
}

// ChairStatusRequest is an administrative status change
type ChairStatusRequest struct {
	Status *enum.ChairStatus `json:"status" binding:"required"`
}
