package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/money"
)

type cashRepository struct {
	s *Store
}

// NewCashRepository creates a cash repository on the store
func NewCashRepository(s *Store) domainRepo.CashRepository {
	return &cashRepository{s: s}
}

func stamp(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
}

func (r *cashRepository) CreateReconciliation(ctx context.Context, rec *entity.CashReconciliation) error {
	defer r.s.lockWrite(ctx)()

	stamp(&rec.ID, &rec.CreatedAt)
	r.s.reconciliations = append(r.s.reconciliations, *rec)
	return nil
}

func (r *cashRepository) ListReconciliations(ctx context.Context, params *domainRepo.ReconciliationFilterParams) ([]entity.CashReconciliation, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []entity.CashReconciliation
	for _, rec := range r.s.reconciliations {
		if rec.BranchID != params.BranchID {
			continue
		}
		day := rec.Date.Format("2006-01-02")
		if params.From != nil && day < params.From.Format("2006-01-02") {
			continue
		}
		if params.To != nil && day > params.To.Format("2006-01-02") {
			continue
		}
		rows = append(rows, rec)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return paginate(rows, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(rows)), nil
}

func (r *cashRepository) CreateBankDeposit(ctx context.Context, deposit *entity.BankDeposit) error {
	defer r.s.lockWrite(ctx)()

	stamp(&deposit.ID, &deposit.CreatedAt)
	r.s.deposits = append(r.s.deposits, *deposit)
	return nil
}

func (r *cashRepository) ListBankDeposits(ctx context.Context, branchID uuid.UUID, day time.Time) ([]entity.BankDeposit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	deposits := []entity.BankDeposit{}
	for _, d := range r.s.deposits {
		if d.BranchID == branchID && sameDay(d.Date, day) {
			deposits = append(deposits, d)
		}
	}
	return deposits, nil
}

func (r *cashRepository) SumBankDeposits(ctx context.Context, branchID uuid.UUID, day time.Time) (money.Amount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total money.Amount
	for _, d := range r.s.deposits {
		if d.BranchID == branchID && sameDay(d.Date, day) {
			total += d.Amount
		}
	}
	return total, nil
}

func (r *cashRepository) CreateCashInflow(ctx context.Context, inflow *entity.CashInflow) error {
	defer r.s.lockWrite(ctx)()

	stamp(&inflow.ID, &inflow.CreatedAt)
	r.s.inflows = append(r.s.inflows, *inflow)
	return nil
}

func (r *cashRepository) SumCashInflows(ctx context.Context, branchID uuid.UUID, day time.Time) (money.Amount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total money.Amount
	for _, i := range r.s.inflows {
		if i.BranchID == branchID && sameDay(i.Date, day) {
			total += i.Amount
		}
	}
	return total, nil
}

func (r *cashRepository) CreateExpense(ctx context.Context, expense *entity.Expense) error {
	defer r.s.lockWrite(ctx)()

	stamp(&expense.ID, &expense.CreatedAt)
	r.s.expenses = append(r.s.expenses, *expense)
	return nil
}

func (r *cashRepository) SumExpenses(ctx context.Context, branchID uuid.UUID, day time.Time, mode enum.PaymentMode) (money.Amount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total money.Amount
	for _, e := range r.s.expenses {
		if e.BranchID == branchID && e.PaymentMode == mode && sameDay(e.Date, day) {
			total += e.Amount
		}
	}
	return total, nil
}
