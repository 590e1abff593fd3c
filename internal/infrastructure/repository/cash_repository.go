package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/money"
	"gorm.io/gorm"
)

type cashRepository struct {
	db *gorm.DB
}

// NewCashRepository creates a new cash repository
func NewCashRepository(db *gorm.DB) domainRepo.CashRepository {
	return &cashRepository{db: db}
}

func (r *cashRepository) CreateReconciliation(ctx context.Context, rec *entity.CashReconciliation) error {
	return conn(ctx, r.db).Create(rec).Error
}

func (r *cashRepository) ListReconciliations(ctx context.Context, params *domainRepo.ReconciliationFilterParams) ([]entity.CashReconciliation, int64, error) {
	var recs []entity.CashReconciliation
	var total int64

	query := conn(ctx, r.db).Model(&entity.CashReconciliation{}).Where("branch_id = ?", params.BranchID)
	if params.From != nil {
		query = query.Where("date >= ?", dayKey(*params.From))
	}
	if params.To != nil {
		query = query.Where("date <= ?", dayKey(*params.To))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("date DESC, created_at DESC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PerPage).
		Find(&recs).Error

	return recs, total, err
}

func (r *cashRepository) CreateBankDeposit(ctx context.Context, deposit *entity.BankDeposit) error {
	return conn(ctx, r.db).Create(deposit).Error
}

func (r *cashRepository) ListBankDeposits(ctx context.Context, branchID uuid.UUID, day time.Time) ([]entity.BankDeposit, error) {
	var deposits []entity.BankDeposit
	err := conn(ctx, r.db).
		Where("branch_id = ? AND date = ?", branchID, dayKey(day)).
		Order("created_at ASC").
		Find(&deposits).Error
	return deposits, err
}

func (r *cashRepository) SumBankDeposits(ctx context.Context, branchID uuid.UUID, day time.Time) (money.Amount, error) {
	return r.sum(ctx, &entity.BankDeposit{}, branchID, day)
}

func (r *cashRepository) CreateCashInflow(ctx context.Context, inflow *entity.CashInflow) error {
	return conn(ctx, r.db).Create(inflow).Error
}

func (r *cashRepository) SumCashInflows(ctx context.Context, branchID uuid.UUID, day time.Time) (money.Amount, error) {
	return r.sum(ctx, &entity.CashInflow{}, branchID, day)
}

func (r *cashRepository) CreateExpense(ctx context.Context, expense *entity.Expense) error {
	return conn(ctx, r.db).Create(expense).Error
}

func (r *cashRepository) SumExpenses(ctx context.Context, branchID uuid.UUID, day time.Time, mode enum.PaymentMode) (money.Amount, error) {
	return r.sum(ctx, &entity.Expense{}, branchID, day, func(db *gorm.DB) *gorm.DB {
		return db.Where("payment_mode = ?", mode)
	})
}

func (r *cashRepository) sum(ctx context.Context, model interface{}, branchID uuid.UUID, day time.Time, scopes ...func(*gorm.DB) *gorm.DB) (money.Amount, error) {
	var total money.Amount
	err := conn(ctx, r.db).
		Model(model).
		Select("COALESCE(SUM(amount), 0)").
		Where("branch_id = ? AND date = ?", branchID, dayKey(day)).
		Scopes(scopes...).
		Scan(&total).Error
	return total, err
}
