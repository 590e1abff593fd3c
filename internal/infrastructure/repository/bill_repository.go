package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	db := conn(ctx, r.db)
	if err := db.Omit(clause.Associations).Create(bill).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrStaleState
		}
		return err
	}
	if len(bill.Items) == 0 {
		return nil
	}
	for i := range bill.Items {
		bill.Items[i].BillID = bill.ID
	}
	return db.Create(&bill.Items).Error
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return r.get(ctx, conn(ctx, r.db), id)
}

func (r *billRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return r.get(ctx, conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *billRepository) get(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := db.
		Scopes(BranchScope(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{}).Scopes(BranchScope(ctx))

	if params.Search != "" {
		query = query.Where("bill_no ILIKE ?", "%"+params.Search+"%")
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.ChairID != nil {
		query = query.Where("chair_id = ?", *params.ChairID)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at < ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PerPage).
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) UpdateWithVersion(ctx context.Context, bill *entity.Bill, expectedVersion int64) error {
	now := time.Now()
	result := conn(ctx, r.db).
		Model(&entity.Bill{}).
		Where("id = ? AND version = ?", bill.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":          bill.Status,
			"chair_id":        bill.ChairID,
			"sub_total":       bill.SubTotal,
			"discount_amount": bill.DiscountAmount,
			"tax_amount":      bill.TaxAmount,
			"total_amount":    bill.TotalAmount,
			"notes":           bill.Notes,
			"completed_at":    bill.CompletedAt,
			"cancelled_at":    bill.CancelledAt,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrStaleState
	}
	bill.Version = expectedVersion + 1
	bill.UpdatedAt = now
	return nil
}

func (r *billRepository) UpdateItemStatuses(ctx context.Context, billID uuid.UUID, itemIDs []uuid.UUID, status enum.BillItemStatus) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db).
		Model(&entity.BillItem{}).
		Where("bill_id = ? AND id IN ?", billID, itemIDs).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *billRepository) CreatePayments(ctx context.Context, payments []entity.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&payments).Error
}

func (r *billRepository) SumPayments(ctx context.Context, params *domainRepo.PaymentSumParams) (money.Amount, error) {
	var total money.Amount
	err := conn(ctx, r.db).
		Model(&entity.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN bills ON bills.id = payments.bill_id").
		Where("bills.branch_id = ? AND bills.status = ?", params.BranchID, params.BillStatus).
		Where("payments.payment_mode = ?", params.Mode).
		Where("payments.created_at >= ? AND payments.created_at < ?", params.From, params.To).
		Scan(&total).Error
	return total, err
}
