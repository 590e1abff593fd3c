package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"gorm.io/gorm"
)

type chairRepository struct {
	db *gorm.DB
}

// NewChairRepository creates a new chair repository
func NewChairRepository(db *gorm.DB) domainRepo.ChairRepository {
	return &chairRepository{db: db}
}

func (r *chairRepository) Create(ctx context.Context, chair *entity.Chair) error {
	err := conn(ctx, r.db).Create(chair).Error
	if isUniqueViolation(err) {
		return apperror.NewConflictError(fmt.Sprintf("Chair %s already exists in this branch", chair.ChairNumber))
	}
	return err
}

func (r *chairRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Chair, error) {
	var chair entity.Chair
	err := conn(ctx, r.db).Scopes(BranchScope(ctx)).First(&chair, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &chair, err
}

func (r *chairRepository) ListByBranch(ctx context.Context, branchID uuid.UUID, status *enum.ChairStatus) ([]entity.Chair, error) {
	var chairs []entity.Chair
	query := conn(ctx, r.db).Where("branch_id = ?", branchID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("chair_number ASC").Find(&chairs).Error
	return chairs, err
}

func (r *chairRepository) Occupy(ctx context.Context, chairID, billID uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Chair{}).
		Scopes(BranchScope(ctx)).
		Where("id = ? AND status = ?", chairID, enum.ChairStatusAvailable).
		Updates(map[string]interface{}{
			"status":          enum.ChairStatusOccupied,
			"current_bill_id": billID,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *chairRepository) ReleaseHeldBy(ctx context.Context, chairID, billID uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Chair{}).
		Where("id = ? AND current_bill_id = ?", chairID, billID).
		Updates(map[string]interface{}{
			"status":          enum.ChairStatusAvailable,
			"current_bill_id": nil,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *chairRepository) UpdateWithVersion(ctx context.Context, chair *entity.Chair, expectedVersion int64) error {
	now := time.Now()
	result := conn(ctx, r.db).
		Model(&entity.Chair{}).
		Where("id = ? AND version = ?", chair.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":          chair.Status,
			"current_bill_id": chair.CurrentBillID,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrStaleState
	}
	chair.Version = expectedVersion + 1
	chair.UpdatedAt = now
	return nil
}
