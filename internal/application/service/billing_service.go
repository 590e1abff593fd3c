package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/logger"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/sangkips/salon-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// BillingOptions carries the billing settings the service needs from config
type BillingOptions struct {
	BillPrefix string
	TaxRateBps int64
	Location   *time.Location
	Now        Clock
}

// BillingService creates, settles and cancels bills
type BillingService struct {
	billRepo  repository.BillRepository
	chairRepo repository.ChairRepository
	tx        repository.Transactor
	locker    Locker
	publisher EventPublisher
	logger    logrus.FieldLogger
	opts      BillingOptions
}

// NewBillingService creates a new billing service
func NewBillingService(
	billRepo repository.BillRepository,
	chairRepo repository.ChairRepository,
	tx repository.Transactor,
	locker Locker,
	publisher EventPublisher,
	log logrus.FieldLogger,
	opts BillingOptions,
) *BillingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BillPrefix == "" {
		opts.BillPrefix = "BILL"
	}
	return &BillingService{
		billRepo:  billRepo,
		chairRepo: chairRepo,
		tx:        tx,
		locker:    locker,
		publisher: publisher,
		logger:    log,
		opts:      opts,
	}
}

// BillItemInput is one already-priced line from order entry
type BillItemInput struct {
	ItemType       enum.ItemType
	ItemID         *uuid.UUID
	Name           string
	Quantity       int
	UnitPrice      money.Amount
	DiscountAmount money.Amount
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	CustomerID     uuid.UUID
	ChairID        *uuid.UUID
	Items          []BillItemInput
	DiscountAmount money.Amount
	// TaxAmount overrides the configured flat rate when set
	TaxAmount *money.Amount
	Notes     *string
	Draft     bool
}

// PaymentInput is one tender in a completion request
type PaymentInput struct {
	Mode      enum.PaymentMode
	Amount    money.Amount
	Reference *string
	BankName  *string
}

// CompleteBillInput represents a full or partial settlement request.
// A nil PendingItemIDs settles the whole bill.
type CompleteBillInput struct {
	BillID          uuid.UUID
	Payments        []PaymentInput
	Notes           *string
	PendingItemIDs  []uuid.UUID
	ExpectedVersion *int64
}

// CreateBill registers a priced bill and, if a chair is given, occupies it
func (s *BillingService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}

	if len(input.Items) == 0 {
		return nil, apperror.NewFieldError("items", "A bill needs at least one item")
	}
	if input.DiscountAmount < 0 {
		return nil, apperror.NewFieldError("discount_amount", "Discount cannot be negative")
	}
	if input.TaxAmount != nil && *input.TaxAmount < 0 {
		return nil, apperror.NewFieldError("tax_amount", "Tax cannot be negative")
	}

	now := s.opts.Now()
	status := enum.BillStatusPending
	if input.Draft {
		status = enum.BillStatusDraft
	}

	bill := &entity.Bill{
		BranchID:       branchID,
		CustomerID:     input.CustomerID,
		ChairID:        input.ChairID,
		BillNo:         utils.GenerateBillNo(s.opts.BillPrefix, now.In(s.opts.Location)),
		Status:         status,
		DiscountAmount: input.DiscountAmount,
		Notes:          input.Notes,
		CreatedAt:      now,
		Items:          make([]entity.BillItem, 0, len(input.Items)),
	}
	for i, in := range input.Items {
		item := entity.BillItem{
			ItemType:       in.ItemType,
			ItemID:         in.ItemID,
			Name:           strings.TrimSpace(in.Name),
			Position:       i,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			DiscountAmount: in.DiscountAmount,
			Status:         enum.BillItemStatusPending,
		}
		if item.Name == "" {
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].name", i), "Item name is required")
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		bill.Items = append(bill.Items, item)
	}

	bill.RecomputeTotals()
	if bill.DiscountAmount > bill.SubTotal {
		return nil, apperror.NewFieldError("discount_amount", "Discount exceeds the bill subtotal")
	}
	if input.TaxAmount != nil {
		bill.TaxAmount = *input.TaxAmount
	} else {
		bill.TaxAmount = (bill.SubTotal - bill.DiscountAmount).MulRate(s.opts.TaxRateBps)
	}
	bill.RecomputeTotals()

	var chair *entity.Chair
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if input.ChairID != nil {
			c, err := s.chairRepo.GetByID(ctx, *input.ChairID)
			if err != nil {
				return err
			}
			if c == nil {
				return apperror.NewNotFoundError("Chair")
			}
			chair = c
		}

		if err := s.billRepo.Create(ctx, bill); err != nil {
			return err
		}

		if chair != nil {
			ok, err := s.chairRepo.Occupy(ctx, chair.ID, bill.ID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NewChairUnavailableError(chair.ChairNumber)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bill_id":   bill.ID,
		"bill_no":   bill.BillNo,
		"branch_id": branchID,
		"total":     bill.TotalAmount.String(),
	}).Info("Bill created")

	s.publisher.Publish(branchID, events.EventBillCreated, bill)
	if chair != nil {
		s.publishChair(ctx, branchID, chair.ID)
	}
	return bill, nil
}

// GetBill retrieves a bill with its items and payments
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills retrieves bills of the current branch with pagination
func (s *BillingService) ListBills(ctx context.Context, params *repository.BillFilterParams) ([]entity.Bill, *pagination.Pagination, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return bills, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total), nil
}

// ConfirmBill moves a draft bill to pending so it can be settled
func (s *BillingService) ConfirmBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return s.mutate(ctx, id, nil, func(ctx context.Context, bill *entity.Bill) error {
		if bill.Status != enum.BillStatusDraft {
			return apperror.NewConflictError(fmt.Sprintf("Bill %s is %s, only drafts can be confirmed", bill.BillNo, bill.Status))
		}
		bill.Status = enum.BillStatusPending
		return nil
	})
}

// CompleteBill settles the whole bill or every item outside PendingItemIDs.
// Everything is validated before any write and applied in one transaction.
func (s *BillingService) CompleteBill(ctx context.Context, input *CompleteBillInput) (*entity.Bill, error) {
	received, err := validatePayments(input.Payments)
	if err != nil {
		return nil, err
	}

	var released *uuid.UUID
	var settled int
	bill, err := s.mutate(ctx, input.BillID, input.ExpectedVersion, func(ctx context.Context, bill *entity.Bill) error {
		plan, err := bill.PlanSettlement(input.PendingItemIDs)
		if err != nil {
			return err
		}
		if received != plan.Payable {
			return apperror.NewAmountMismatchError(plan.Payable, received)
		}

		now := s.opts.Now()
		payments := make([]entity.Payment, 0, len(input.Payments))
		for _, p := range input.Payments {
			payments = append(payments, entity.Payment{
				BillID:      bill.ID,
				PaymentMode: p.Mode,
				Amount:      p.Amount,
				Reference:   p.Reference,
				BankName:    p.BankName,
				CreatedAt:   now,
			})
		}
		if len(payments) > 0 {
			if err := s.billRepo.CreatePayments(ctx, payments); err != nil {
				return err
			}
		}
		if err := s.billRepo.UpdateItemStatuses(ctx, bill.ID, plan.Settle, enum.BillItemStatusCompleted); err != nil {
			return err
		}

		released = bill.ApplySettlement(plan, payments, now)
		settled = len(plan.Settle)
		if input.Notes != nil {
			bill.Notes = input.Notes
		}
		if released != nil {
			return s.releaseHeldChair(ctx, *released, bill)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bill_id":        bill.ID,
		"status":         bill.Status.String(),
		"received":       received.String(),
		"items_settled":  settled,
		"chair_released": released != nil,
	}).Info("Bill settled")

	s.publisher.Publish(bill.BranchID, events.EventBillSettled, bill)
	if released != nil {
		s.publishChair(ctx, bill.BranchID, *released)
	}
	return bill, nil
}

// CancelBill cancels an open bill and frees its chair
func (s *BillingService) CancelBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var released *uuid.UUID
	bill, err := s.mutate(ctx, id, nil, func(ctx context.Context, bill *entity.Bill) error {
		chairID, err := bill.Cancel(s.opts.Now())
		if err != nil {
			return err
		}
		released = chairID
		if chairID != nil {
			return s.releaseHeldChair(ctx, *chairID, bill)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bill_id":        bill.ID,
		"paid":           bill.PaidAmount().String(),
		"chair_released": released != nil,
	}).Info("Bill cancelled")

	s.publisher.Publish(bill.BranchID, events.EventBillCancelled, bill)
	if released != nil {
		s.publishChair(ctx, bill.BranchID, *released)
	}
	return bill, nil
}

// UpdateItemStatus moves one item of an open bill through its state machine
func (s *BillingService) UpdateItemStatus(ctx context.Context, billID, itemID uuid.UUID, status enum.BillItemStatus) (*entity.Bill, error) {
	if !status.Valid() {
		return nil, apperror.NewFieldError("status", "Unknown item status")
	}
	return s.mutate(ctx, billID, nil, func(ctx context.Context, bill *entity.Bill) error {
		if err := bill.SetItemStatus(itemID, status, s.opts.Now()); err != nil {
			return err
		}
		return s.billRepo.UpdateItemStatuses(ctx, bill.ID, []uuid.UUID{itemID}, status)
	})
}

// mutate runs fn on a locked, freshly loaded bill and writes the header back
// under a version check
func (s *BillingService) mutate(ctx context.Context, id uuid.UUID, expectedVersion *int64, fn func(ctx context.Context, bill *entity.Bill) error) (*entity.Bill, error) {
	release, err := s.locker.Lock(ctx, billLockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var result *entity.Bill
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if expectedVersion != nil && *expectedVersion != bill.Version {
			return apperror.ErrStaleState
		}

		version := bill.Version
		if err := fn(ctx, bill); err != nil {
			return err
		}
		if err := s.billRepo.UpdateWithVersion(ctx, bill, version); err != nil {
			return err
		}
		result = bill
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// releaseHeldChair frees the chair if the bill still holds it. An admin may
// already have released it, which is fine.
func (s *BillingService) releaseHeldChair(ctx context.Context, chairID uuid.UUID, bill *entity.Bill) error {
	ok, err := s.chairRepo.ReleaseHeldBy(ctx, chairID, bill.ID)
	if err != nil {
		logger.LogError(s.logger, "BillingService", "releaseHeldChair", "Error releasing chair", chairID, err)
		return err
	}
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"bill_id":  bill.ID,
			"chair_id": chairID,
		}).Warn("Chair was no longer held by the bill")
	}
	return nil
}

func (s *BillingService) publishChair(ctx context.Context, branchID, chairID uuid.UUID) {
	chair, err := s.chairRepo.GetByID(ctx, chairID)
	if err != nil || chair == nil {
		return
	}
	s.publisher.Publish(branchID, events.EventChairUpdated, chair)
}

func validatePayments(payments []PaymentInput) (money.Amount, error) {
	var fieldErrors []apperror.FieldError
	var received money.Amount
	for i, p := range payments {
		if !p.Mode.Valid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("payments[%d].payment_mode", i),
				Message: "Unknown payment mode",
			})
		}
		if !p.Amount.IsPositive() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("payments[%d].amount", i),
				Message: "Payment amount must be greater than zero",
			})
		}
		if p.Amount > money.MaxLine {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("payments[%d].amount", i),
				Message: "Payment amount is out of range",
			})
			continue
		}
		sum, err := received.AddChecked(p.Amount)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("payments[%d].amount", i),
				Message: "Payment total is out of range",
			})
			continue
		}
		received = sum
	}
	if len(fieldErrors) > 0 {
		return 0, apperror.NewValidationError(fieldErrors)
	}
	return received, nil
}
