package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// Create inserts the bill together with its items
	Create(ctx context.Context, bill *entity.Bill) error
	// GetByID loads the bill with items and payments, or nil if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	// GetByIDForUpdate is GetByID with the bill row locked until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	// UpdateWithVersion writes the bill header if its version still equals
	// expectedVersion and bumps it. A lost race returns apperror.ErrStaleState.
	UpdateWithVersion(ctx context.Context, bill *entity.Bill, expectedVersion int64) error
	UpdateItemStatuses(ctx context.Context, billID uuid.UUID, itemIDs []uuid.UUID, status enum.BillItemStatus) error
	CreatePayments(ctx context.Context, payments []entity.Payment) error
	SumPayments(ctx context.Context, params *PaymentSumParams) (money.Amount, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.BillStatus
	CustomerID *uuid.UUID
	ChairID    *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// PaymentSumParams selects payments to total for cash accounting
type PaymentSumParams struct {
	BranchID   uuid.UUID
	Mode       enum.PaymentMode
	BillStatus enum.BillStatus
	From       time.Time
	To         time.Time
}
