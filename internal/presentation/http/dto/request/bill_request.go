package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/money"
)

// CreateBillRequest represents a priced bill handed over by order entry
type CreateBillRequest struct {
	CustomerID     uuid.UUID         `json:"customer_id" binding:"required"`
	ChairID        *uuid.UUID        `json:"chair_id"`
	Items          []BillItemRequest `json:"items" binding:"required,min=1,max=200,dive"`
	DiscountAmount money.Amount      `json:"discount_amount" binding:"min=0"`
	TaxAmount      *money.Amount     `json:"tax_amount" binding:"omitempty,min=0"`
	Notes          *string           `json:"notes" binding:"omitempty,max=1000"`
	Draft          bool              `json:"draft"`
}

// BillItemRequest is one priced line
type BillItemRequest struct {
	ItemType       enum.ItemType `json:"item_type"`
	ItemID         *uuid.UUID    `json:"item_id"`
	Name           string        `json:"name" binding:"required,max=255"`
	Quantity       int           `json:"quantity" binding:"required,min=1,max=10000"`
	UnitPrice      money.Amount  `json:"unit_price" binding:"min=0"`
	DiscountAmount money.Amount  `json:"discount_amount" binding:"min=0"`
}

// CompleteBillRequest settles a bill. Omitting pending_item_ids settles
// everything; an explicit list keeps those items open.
type CompleteBillRequest struct {
	Payments       []PaymentRequest `json:"payments" binding:"max=20,dive"`
	Notes          *string          `json:"notes" binding:"omitempty,max=1000"`
	PendingItemIDs []uuid.UUID      `json:"pending_item_ids"`
	Version        *int64           `json:"version"`
}

// PaymentRequest is one tender
type PaymentRequest struct {
	PaymentMode *enum.PaymentMode `json:"payment_mode" binding:"required"`
	Amount      money.Amount      `json:"amount" binding:"gt=0"`
	Reference   *string           `json:"reference" binding:"omitempty,max=100"`
	BankName    *string           `json:"bank_name" binding:"omitempty,max=100"`
}

// UpdateItemStatusRequest moves a bill item to a new status
type UpdateItemStatusRequest struct {
	Status *enum.BillItemStatus `json:"status" binding:"required"`
}
