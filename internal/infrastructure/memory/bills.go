package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
)

type billRepository struct {
	s *Store
}

// NewBillRepository creates a bill repository on the store
func NewBillRepository(s *Store) domainRepo.BillRepository {
	return &billRepository{s: s}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	defer r.s.lockWrite(ctx)()

	for _, existing := range r.s.bills {
		if existing.BillNo == bill.BillNo {
			return apperror.ErrStaleState
		}
	}

	now := time.Now()
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	if bill.Version == 0 {
		bill.Version = 1
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = bill.CreatedAt
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.BillID = bill.ID
		item.CreatedAt = bill.CreatedAt
		item.UpdatedAt = bill.CreatedAt
	}
	r.s.bills[bill.ID] = cloneBill(bill)
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bills[id]
	if !ok || !infraRepo.InBranch(ctx, b.BranchID) {
		return nil, nil
	}
	return cloneBill(b), nil
}

// GetByIDForUpdate needs no row lock here: transactions are already serialized
func (r *billRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return r.GetByID(ctx, id)
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []entity.Bill
	for _, b := range r.s.bills {
		if !infraRepo.InBranch(ctx, b.BranchID) {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(b.BillNo), strings.ToLower(params.Search)) {
			continue
		}
		if params.Status != nil && b.Status != *params.Status {
			continue
		}
		if params.CustomerID != nil && b.CustomerID != *params.CustomerID {
			continue
		}
		if params.ChairID != nil && (b.ChairID == nil || *b.ChairID != *params.ChairID) {
			continue
		}
		if params.StartDate != nil && b.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && !b.CreatedAt.Before(*params.EndDate) {
			continue
		}
		c := cloneBill(b)
		c.Payments = nil
		rows = append(rows, *c)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return paginate(rows, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(rows)), nil
}

func (r *billRepository) UpdateWithVersion(ctx context.Context, bill *entity.Bill, expectedVersion int64) error {
	defer r.s.lockWrite(ctx)()

	stored, ok := r.s.bills[bill.ID]
	if !ok || stored.Version != expectedVersion {
		return apperror.ErrStaleState
	}

	now := time.Now()
	stored.Status = bill.Status
	stored.ChairID = bill.ChairID
	stored.SubTotal = bill.SubTotal
	stored.DiscountAmount = bill.DiscountAmount
	stored.TaxAmount = bill.TaxAmount
	stored.TotalAmount = bill.TotalAmount
	stored.Notes = bill.Notes
	stored.CompletedAt = bill.CompletedAt
	stored.CancelledAt = bill.CancelledAt
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = now

	bill.Version = stored.Version
	bill.UpdatedAt = now
	return nil
}

func (r *billRepository) UpdateItemStatuses(ctx context.Context, billID uuid.UUID, itemIDs []uuid.UUID, status enum.BillItemStatus) error {
	defer r.s.lockWrite(ctx)()

	stored, ok := r.s.bills[billID]
	if !ok {
		return nil
	}
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	now := time.Now()
	for i := range stored.Items {
		if _, hit := wanted[stored.Items[i].ID]; hit {
			stored.Items[i].Status = status
			stored.Items[i].UpdatedAt = now
		}
	}
	return nil
}

func (r *billRepository) CreatePayments(ctx context.Context, payments []entity.Payment) error {
	defer r.s.lockWrite(ctx)()

	for i := range payments {
		p := &payments[i]
		stored, ok := r.s.bills[p.BillID]
		if !ok {
			return apperror.NewNotFoundError("Bill")
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		stored.Payments = append(stored.Payments, *p)
	}
	return nil
}

func (r *billRepository) SumPayments(ctx context.Context, params *domainRepo.PaymentSumParams) (money.Amount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total money.Amount
	for _, b := range r.s.bills {
		if b.BranchID != params.BranchID || b.Status != params.BillStatus {
			continue
		}
		for _, p := range b.Payments {
			if p.PaymentMode != params.Mode {
				continue
			}
			if p.CreatedAt.Before(params.From) || !p.CreatedAt.Before(params.To) {
				continue
			}
			total += p.Amount
		}
	}
	return total, nil
}
