package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
)

type chairRepository struct {
	s *Store
}

// NewChairRepository creates a chair repository on the store
func NewChairRepository(s *Store) domainRepo.ChairRepository {
	return &chairRepository{s: s}
}

func (r *chairRepository) Create(ctx context.Context, chair *entity.Chair) error {
	defer r.s.lockWrite(ctx)()

	for _, existing := range r.s.chairs {
		if existing.BranchID == chair.BranchID && existing.ChairNumber == chair.ChairNumber {
			return apperror.NewConflictError(fmt.Sprintf("Chair %s already exists in this branch", chair.ChairNumber))
		}
	}
	if chair.ID == uuid.Nil {
		chair.ID = uuid.New()
	}
	if chair.Version == 0 {
		chair.Version = 1
	}
	now := time.Now()
	chair.CreatedAt = now
	chair.UpdatedAt = now
	r.s.chairs[chair.ID] = *chair
	return nil
}

func (r *chairRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Chair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.chairs[id]
	if !ok || !infraRepo.InBranch(ctx, c.BranchID) {
		return nil, nil
	}
	return &c, nil
}

func (r *chairRepository) ListByBranch(ctx context.Context, branchID uuid.UUID, status *enum.ChairStatus) ([]entity.Chair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	chairs := []entity.Chair{}
	for _, c := range r.s.chairs {
		if c.BranchID != branchID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		chairs = append(chairs, c)
	}
	sort.Slice(chairs, func(i, j int) bool {
		return chairs[i].ChairNumber < chairs[j].ChairNumber
	})
	return chairs, nil
}

func (r *chairRepository) Occupy(ctx context.Context, chairID, billID uuid.UUID) (bool, error) {
	defer r.s.lockWrite(ctx)()

	c, ok := r.s.chairs[chairID]
	if !ok || !infraRepo.InBranch(ctx, c.BranchID) || c.Status != enum.ChairStatusAvailable {
		return false, nil
	}
	held := billID
	c.Status = enum.ChairStatusOccupied
	c.CurrentBillID = &held
	c.Version++
	c.UpdatedAt = time.Now()
	r.s.chairs[chairID] = c
	return true, nil
}

func (r *chairRepository) ReleaseHeldBy(ctx context.Context, chairID, billID uuid.UUID) (bool, error) {
	defer r.s.lockWrite(ctx)()

	c, ok := r.s.chairs[chairID]
	if !ok || c.CurrentBillID == nil || *c.CurrentBillID != billID {
		return false, nil
	}
	c.Status = enum.ChairStatusAvailable
	c.CurrentBillID = nil
	c.Version++
	c.UpdatedAt = time.Now()
	r.s.chairs[chairID] = c
	return true, nil
}

func (r *chairRepository) UpdateWithVersion(ctx context.Context, chair *entity.Chair, expectedVersion int64) error {
	defer r.s.lockWrite(ctx)()

	c, ok := r.s.chairs[chair.ID]
	if !ok || c.Version != expectedVersion {
		return apperror.ErrStaleState
	}
	c.Status = chair.Status
	c.CurrentBillID = chair.CurrentBillID
	c.Version = expectedVersion + 1
	c.UpdatedAt = time.Now()
	r.s.chairs[chair.ID] = c

	chair.Version = c.Version
	chair.UpdatedAt = c.UpdatedAt
	return nil
}
