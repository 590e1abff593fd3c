package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"gorm.io/gorm"
)

// Bill is a customer's bill at a branch. It owns its items and payments.
type Bill struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BranchID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	ChairID        *uuid.UUID      `gorm:"type:uuid;index" json:"chair_id,omitempty"`
	BillNo         string          `gorm:"size:50;uniqueIndex;not null" json:"bill_no"`
	Status         enum.BillStatus `gorm:"not null;default:0;index" json:"status"`
	SubTotal       money.Amount    `gorm:"not null;default:0" json:"sub_total"`
	DiscountAmount money.Amount    `gorm:"not null;default:0" json:"discount_amount"`
	TaxAmount      money.Amount    `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount    money.Amount    `gorm:"not null;default:0" json:"total_amount"`
	Notes          *string         `gorm:"type:text" json:"notes,omitempty"`
	Version        int64           `gorm:"not null;default:1" json:"version"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Items    []BillItem `gorm:"foreignKey:BillID" json:"items"`
	Payments []Payment  `gorm:"foreignKey:BillID" json:"payments"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// BillItem is a priced line on a bill
type BillItem struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	BillID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"bill_id"`
	ItemType       enum.ItemType       `gorm:"not null;default:0" json:"item_type"`
	ItemID         *uuid.UUID          `gorm:"type:uuid" json:"item_id,omitempty"`
	Name           string              `gorm:"size:255;not null" json:"name"`
	Position       int                 `gorm:"not null;default:0" json:"position"`
	Quantity       int                 `gorm:"not null" json:"quantity"`
	UnitPrice      money.Amount        `gorm:"not null" json:"unit_price"`
	DiscountAmount money.Amount        `gorm:"not null;default:0" json:"discount_amount"`
	TotalPrice     money.Amount        `gorm:"not null" json:"total_price"`
	Status         enum.BillItemStatus `gorm:"not null;default:0" json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// LineTotal is quantity x unit price less the line discount
func (i *BillItem) LineTotal() money.Amount {
	return i.UnitPrice.Mul(i.Quantity) - i.DiscountAmount
}

func (i *BillItem) withinRange() bool {
	gross, err := i.UnitPrice.MulChecked(i.Quantity)
	return err == nil && gross <= money.MaxLine
}

// Validate checks the line's arithmetic bounds
func (i *BillItem) Validate() error {
	switch {
	case i.Quantity < 1:
		return apperror.NewFieldError("quantity", fmt.Sprintf("Item %q quantity must be at least 1", i.Name))
	case i.UnitPrice < 0:
		return apperror.NewFieldError("unit_price", fmt.Sprintf("Item %q unit price cannot be negative", i.Name))
	case i.DiscountAmount < 0:
		return apperror.NewFieldError("discount_amount", fmt.Sprintf("Item %q discount cannot be negative", i.Name))
	case !i.withinRange():
		return apperror.NewFieldError("quantity", fmt.Sprintf("Item %q total is out of range", i.Name))
	case i.LineTotal() < 0:
		return apperror.NewFieldError("discount_amount", fmt.Sprintf("Item %q discount exceeds its price", i.Name))
	case !i.ItemType.Valid():
		return apperror.NewFieldError("item_type", "Unknown item type")
	}
	return nil
}

// Payment is an immutable tender recorded against a bill
type Payment struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	BillID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"bill_id"`
	PaymentMode enum.PaymentMode `gorm:"not null;index" json:"payment_mode"`
	Amount      money.Amount     `gorm:"not null" json:"amount"`
	Reference   *string          `gorm:"size:100" json:"reference,omitempty"`
	BankName    *string          `gorm:"size:100" json:"bank_name,omitempty"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// RecomputeTotals derives subtotal and total from the non-rejected lines
func (b *Bill) RecomputeTotals() {
	var subTotal money.Amount
	for i := range b.Items {
		b.Items[i].TotalPrice = b.Items[i].LineTotal()
		if b.Items[i].Status != enum.BillItemStatusRejected {
			subTotal += b.Items[i].TotalPrice
		}
	}
	b.SubTotal = subTotal
	b.TotalAmount = subTotal - b.DiscountAmount + b.TaxAmount
}

// PaidAmount is the sum of all payments recorded so far
func (b *Bill) PaidAmount() money.Amount {
	var paid money.Amount
	for _, p := range b.Payments {
		paid += p.Amount
	}
	return paid
}

// OutstandingAmount is what remains to be paid for the bill to settle fully
func (b *Bill) OutstandingAmount() money.Amount {
	return b.TotalAmount - b.PaidAmount()
}

// Item returns the item with the given id, or nil
func (b *Bill) Item(id uuid.UUID) *BillItem {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i]
		}
	}
	return nil
}

// OpenItemCount counts items still awaiting settlement
func (b *Bill) OpenItemCount() int {
	n := 0
	for _, item := range b.Items {
		if item.Status.IsOpen() {
			n++
		}
	}
	return n
}

// Settlement is the plan for one CompleteBill call, computed before any mutation
type Settlement struct {
	Payable   money.Amount
	Settle    []uuid.UUID
	Remaining []uuid.UUID
}

// Partial reports whether items will remain open after the settlement
func (s *Settlement) Partial() bool {
	return len(s.Remaining) > 0
}

// PlanSettlement validates a completion request against the bill and works
// out what is payable. A nil pendingItemIDs means full settlement; a non-nil
// slice means partial settlement and must name a strict, non-empty subset of
// the open items.
func (b *Bill) PlanSettlement(pendingItemIDs []uuid.UUID) (*Settlement, error) {
	if !b.Status.CanSettle() {
		return nil, apperror.NewConflictError(fmt.Sprintf("Bill %s is %s and cannot be settled", b.BillNo, b.Status))
	}

	plan := &Settlement{}

	if pendingItemIDs == nil {
		for _, item := range b.Items {
			if item.Status.IsOpen() {
				plan.Settle = append(plan.Settle, item.ID)
			}
		}
		plan.Payable = b.OutstandingAmount()
		if plan.Payable < 0 {
			return nil, apperror.NewConflictError(fmt.Sprintf("Bill %s is overpaid by %s", b.BillNo, plan.Payable.Abs()))
		}
		return plan, nil
	}

	if len(pendingItemIDs) == 0 {
		return nil, apperror.NewFieldError("pending_item_ids", "Partial completion needs at least one pending item")
	}
	if len(pendingItemIDs) >= len(b.Items) {
		return nil, apperror.NewFieldError("pending_item_ids", "At least one item must be settled")
	}

	pending := make(map[uuid.UUID]struct{}, len(pendingItemIDs))
	for _, id := range pendingItemIDs {
		if _, dup := pending[id]; dup {
			return nil, apperror.NewFieldError("pending_item_ids", fmt.Sprintf("Item %s is listed twice", id))
		}
		item := b.Item(id)
		if item == nil {
			return nil, apperror.NewFieldError("pending_item_ids", fmt.Sprintf("Item %s does not belong to bill %s", id, b.BillNo))
		}
		if !item.Status.IsOpen() {
			return nil, apperror.NewFieldError("pending_item_ids", fmt.Sprintf("Item %q is already %s", item.Name, item.Status))
		}
		pending[id] = struct{}{}
	}

	for _, item := range b.Items {
		if !item.Status.IsOpen() {
			continue
		}
		if _, keep := pending[item.ID]; keep {
			plan.Remaining = append(plan.Remaining, item.ID)
			continue
		}
		plan.Settle = append(plan.Settle, item.ID)
		plan.Payable += item.TotalPrice
	}

	if len(plan.Settle) == 0 {
		return nil, apperror.NewFieldError("pending_item_ids", "At least one item must be settled")
	}
	// A bill-level discount can leave less owed than the settled lines are
	// worth. Never collect past the bill total.
	if outstanding := b.OutstandingAmount(); plan.Payable > outstanding {
		if outstanding < 0 {
			return nil, apperror.NewConflictError(fmt.Sprintf("Bill %s is overpaid by %s", b.BillNo, outstanding.Abs()))
		}
		plan.Payable = outstanding
	}
	return plan, nil
}

// ApplySettlement mutates the in-memory aggregate after payments were
// validated. It returns the chair to release, if any.
func (b *Bill) ApplySettlement(plan *Settlement, payments []Payment, now time.Time) *uuid.UUID {
	for _, id := range plan.Settle {
		if item := b.Item(id); item != nil && item.Status.CanTransitionTo(enum.BillItemStatusCompleted) {
			item.Status = enum.BillItemStatusCompleted
			item.UpdatedAt = now
		}
	}
	b.Payments = append(b.Payments, payments...)

	if plan.Partial() {
		b.Status = enum.BillStatusPartial
		return nil
	}

	b.Status = enum.BillStatusCompleted
	b.CompletedAt = &now
	released := b.ChairID
	b.ChairID = nil
	return released
}

// Cancel freezes the bill. Items and payments stay for audit.
func (b *Bill) Cancel(now time.Time) (*uuid.UUID, error) {
	if !b.Status.CanCancel() {
		return nil, apperror.NewConflictError(fmt.Sprintf("Bill %s is %s and cannot be cancelled", b.BillNo, b.Status))
	}
	b.Status = enum.BillStatusCancelled
	b.CancelledAt = &now
	released := b.ChairID
	b.ChairID = nil
	return released, nil
}

// SetItemStatus moves a single item through its state machine. Rejecting an
// item takes its price off the bill.
func (b *Bill) SetItemStatus(itemID uuid.UUID, next enum.BillItemStatus, now time.Time) error {
	if b.Status.IsTerminal() {
		return apperror.NewConflictError(fmt.Sprintf("Bill %s is %s and can no longer change", b.BillNo, b.Status))
	}
	item := b.Item(itemID)
	if item == nil {
		return apperror.NewNotFoundError("Bill item")
	}
	if item.Status == next {
		return nil
	}
	if !item.Status.CanTransitionTo(next) {
		return apperror.NewConflictError(fmt.Sprintf("Item %q cannot move from %s to %s", item.Name, item.Status, next))
	}
	if next == enum.BillItemStatusCompleted {
		return apperror.NewConflictError("Items are completed by settling the bill")
	}

	item.Status = next
	item.UpdatedAt = now
	if next == enum.BillItemStatusRejected {
		b.RecomputeTotals()
		if b.TotalAmount < b.PaidAmount() {
			return apperror.NewConflictError(fmt.Sprintf("Rejecting %q would leave bill %s overpaid", item.Name, b.BillNo))
		}
	}
	return nil
}
