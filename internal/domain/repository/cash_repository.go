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

// CashRepository defines the interface for drawer, deposit, inflow and expense records
type CashRepository interface {
	CreateReconciliation(ctx context.Context, rec *entity.CashReconciliation) error
	ListReconciliations(ctx context.Context, params *ReconciliationFilterParams) ([]entity.CashReconciliation, int64, error)

	CreateBankDeposit(ctx context.Context, deposit *entity.BankDeposit) error
	ListBankDeposits(ctx context.Context, branchID uuid.UUID, day time.Time) ([]entity.BankDeposit, error)
	SumBankDeposits(ctx context.Context, branchID uuid.UUID, day time.Time) (money.Amount, error)

	CreateCashInflow(ctx context.Context, inflow *entity.CashInflow) error
	SumCashInflows(ctx context.Context, branchID uuid.UUID, day time.Time) (money.Amount, error)

	CreateExpense(ctx context.Context, expense *entity.Expense) error
	SumExpenses(ctx context.Context, branchID uuid.UUID, day time.Time, mode enum.PaymentMode) (money.Amount, error)
}

// ReconciliationFilterParams contains filtering parameters for reconciliation queries
type ReconciliationFilterParams struct {
	Pagination *pagination.PaginationParams
	BranchID   uuid.UUID
	From       *time.Time
	To         *time.Time
}
