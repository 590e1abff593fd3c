package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/sangkips/salon-api/pkg/pagination"
)

func seedBill(t *testing.T, ctx context.Context, repo domainRepo.BillRepository, branch uuid.UUID) *entity.Bill {
	t.Helper()
	bill := &entity.Bill{
		BranchID:   branch,
		CustomerID: uuid.New(),
		BillNo:     "B-" + uuid.NewString()[:8],
		Status:     enum.BillStatusPending,
		Items: []entity.BillItem{
			{Name: "Cut", Quantity: 1, UnitPrice: money.Rupees(500), Status: enum.BillItemStatusPending},
		},
	}
	bill.RecomputeTotals()
	if err := repo.Create(ctx, bill); err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return bill
}

func TestTransactionRollsBackOnError(t *testing.T) {
	store := NewStore()
	bills := NewBillRepository(store)
	tx := NewTransactor(store)
	branch := uuid.New()
	ctx := infraRepo.WithBranch(context.Background(), branch)
	bill := seedBill(t, ctx, bills, branch)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := bills.CreatePayments(ctx, []entity.Payment{{BillID: bill.ID, PaymentMode: enum.PaymentModeCash, Amount: bill.TotalAmount}}); err != nil {
			return err
		}
		bill.Status = enum.BillStatusCompleted
		if err := bills.UpdateWithVersion(ctx, bill, bill.Version); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := bills.GetByID(ctx, bill.ID)
	if got.Status != enum.BillStatusPending || len(got.Payments) != 0 || got.Version != 1 {
		t.Fatalf("transaction should have rolled back, got %s with %d payments v%d", got.Status, len(got.Payments), got.Version)
	}
}

func TestUpdateWithVersionDetectsStaleWrites(t *testing.T) {
	store := NewStore()
	bills := NewBillRepository(store)
	branch := uuid.New()
	ctx := infraRepo.WithBranch(context.Background(), branch)
	bill := seedBill(t, ctx, bills, branch)

	first, _ := bills.GetByID(ctx, bill.ID)
	second, _ := bills.GetByID(ctx, bill.ID)

	first.Status = enum.BillStatusCancelled
	if err := bills.UpdateWithVersion(ctx, first, first.Version); err != nil {
		t.Fatalf("first update: %v", err)
	}
	second.Status = enum.BillStatusPartial
	if err := bills.UpdateWithVersion(ctx, second, second.Version); !errors.Is(err, apperror.ErrStaleState) {
		t.Fatalf("expected stale state, got %v", err)
	}
}

func TestBranchScope(t *testing.T) {
	store := NewStore()
	bills := NewBillRepository(store)
	branch := uuid.New()
	bill := seedBill(t, infraRepo.WithBranch(context.Background(), branch), bills, branch)

	other := infraRepo.WithBranch(context.Background(), uuid.New())
	if got, _ := bills.GetByID(other, bill.ID); got != nil {
		t.Fatalf("bill must not be visible from another branch")
	}
	if got, _ := bills.GetByID(context.Background(), bill.ID); got != nil {
		t.Fatalf("bill must not be visible without a branch")
	}
	admin := infraRepo.WithSkipBranchScope(context.Background(), true)
	if got, _ := bills.GetByID(admin, bill.ID); got == nil {
		t.Fatalf("super admin should see every branch")
	}

	list, total, _ := bills.List(other, &domainRepo.BillFilterParams{Pagination: pagination.DefaultPagination()})
	if total != 0 || len(list) != 0 {
		t.Fatalf("list must be branch scoped")
	}
}

func TestChairCompareAndSet(t *testing.T) {
	store := NewStore()
	chairs := NewChairRepository(store)
	branch := uuid.New()
	ctx := infraRepo.WithBranch(context.Background(), branch)

	chair := &entity.Chair{BranchID: branch, ChairNumber: "C1"}
	if err := chairs.Create(ctx, chair); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := chairs.Create(ctx, &entity.Chair{BranchID: branch, ChairNumber: "C1"}); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("duplicate chair number should conflict, got %v", err)
	}

	billA, billB := uuid.New(), uuid.New()
	if ok, _ := chairs.Occupy(ctx, chair.ID, billA); !ok {
		t.Fatalf("first occupy should win")
	}
	if ok, _ := chairs.Occupy(ctx, chair.ID, billB); ok {
		t.Fatalf("second occupy must fail")
	}
	if ok, _ := chairs.ReleaseHeldBy(ctx, chair.ID, billB); ok {
		t.Fatalf("release by a bill that does not hold the chair must fail")
	}
	if ok, _ := chairs.ReleaseHeldBy(ctx, chair.ID, billA); !ok {
		t.Fatalf("holder should release")
	}
	got, _ := chairs.GetByID(ctx, chair.ID)
	if got.Status != enum.ChairStatusAvailable || got.CurrentBillID != nil {
		t.Fatalf("chair should be available, got %s", got.Status)
	}
}

func TestCashSumsByDay(t *testing.T) {
	store := NewStore()
	cash := NewCashRepository(store)
	branch := uuid.New()
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_ = cash.CreateBankDeposit(ctx, &entity.BankDeposit{BranchID: branch, Date: day, BankName: "HDFC", Amount: money.Rupees(1000)})
	_ = cash.CreateBankDeposit(ctx, &entity.BankDeposit{BranchID: branch, Date: day.AddDate(0, 0, 1), BankName: "HDFC", Amount: money.Rupees(50)})
	_ = cash.CreateExpense(ctx, &entity.Expense{BranchID: branch, Date: day, Category: "tea", PaymentMode: enum.PaymentModeCash, Amount: money.Rupees(40)})
	_ = cash.CreateExpense(ctx, &entity.Expense{BranchID: branch, Date: day, Category: "rent", PaymentMode: enum.PaymentModeOnline, Amount: money.Rupees(9000)})

	deposits, _ := cash.SumBankDeposits(ctx, branch, day)
	if deposits != money.Rupees(1000) {
		t.Fatalf("expected deposits 1000, got %s", deposits)
	}
	expenses, _ := cash.SumExpenses(ctx, branch, day, enum.PaymentModeCash)
	if expenses != money.Rupees(40) {
		t.Fatalf("expected cash expenses 40, got %s", expenses)
	}
}

func TestRollbackKeepsConcurrentWrites(t *testing.T) {
	store := NewStore()
	bills := NewBillRepository(store)
	cash := NewCashRepository(store)
	tx := NewTransactor(store)
	branch := uuid.New()
	ctx := infraRepo.WithBranch(context.Background(), branch)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bill := seedBill(t, ctx, bills, branch)

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := bills.CreatePayments(ctx, []entity.Payment{{BillID: bill.ID, PaymentMode: enum.PaymentModeCash, Amount: bill.TotalAmount}}); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("boom")
		})
	}()
	<-entered

	depositDone := make(chan error, 1)
	go func() {
		depositDone <- cash.CreateBankDeposit(ctx, &entity.BankDeposit{BranchID: branch, Date: day, BankName: "HDFC", Amount: money.Rupees(100)})
	}()

	select {
	case err := <-depositDone:
		t.Fatalf("deposit should wait for the running transaction, returned %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	close(release)

	if err := <-txDone; err == nil {
		t.Fatalf("expected the transaction to fail")
	}
	if err := <-depositDone; err != nil {
		t.Fatalf("deposit: %v", err)
	}

	total, _ := cash.SumBankDeposits(ctx, branch, day)
	if total != money.Rupees(100) {
		t.Fatalf("rollback discarded a deposit written outside the transaction, got %s", total)
	}
	got, _ := bills.GetByID(ctx, bill.ID)
	if len(got.Payments) != 0 {
		t.Fatalf("expected the transaction's payment to be rolled back, got %d", len(got.Payments))
	}
}
