package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/internal/infrastructure/lock"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/pkg/logger"
	"github.com/sangkips/salon-api/pkg/money"
)

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.EventType
}

func (r *recorder) Publish(branchID uuid.UUID, eventType events.EventType, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) count(eventType events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx    context.Context
	branch uuid.UUID
	store  *memory.Store

	bills  domainRepo.BillRepository
	chairs domainRepo.ChairRepository
	cash   domainRepo.CashRepository

	billing  *BillingService
	chairSvc *ChairService
	cashSvc  *CashService
	pkgSvc   *PackageService
	events   *recorder
}

func newFixture(t *testing.T, locker Locker) *fixture {
	t.Helper()
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	store := memory.NewStore()
	f := &fixture{
		branch: uuid.New(),
		store:  store,
		bills:  memory.NewBillRepository(store),
		chairs: memory.NewChairRepository(store),
		cash:   memory.NewCashRepository(store),
		events: &recorder{},
	}
	f.ctx = infraRepo.WithBranch(context.Background(), f.branch)

	tx := memory.NewTransactor(store)
	log := logger.Discard()
	clock := func() time.Time { return fixedNow }

	f.billing = NewBillingService(f.bills, f.chairs, tx, locker, f.events, log, BillingOptions{
		BillPrefix: "TST",
		Location:   time.UTC,
		Now:        clock,
	})
	f.chairSvc = NewChairService(f.chairs, f.bills, tx, locker, f.events, log)
	f.cashSvc = NewCashService(f.cash, f.bills, tx, f.events, log, time.UTC, clock)
	f.pkgSvc = NewPackageService(memory.NewPackageRepository(store), log)
	return f
}

func (f *fixture) chair(t *testing.T, number string) *entity.Chair {
	t.Helper()
	c, err := f.chairSvc.CreateChair(f.ctx, number)
	if err != nil {
		t.Fatalf("create chair: %v", err)
	}
	return c
}

func (f *fixture) bill(t *testing.T, chairID *uuid.UUID, rupees ...int64) *entity.Bill {
	t.Helper()
	input := &CreateBillInput{CustomerID: uuid.New(), ChairID: chairID}
	for i, r := range rupees {
		input.Items = append(input.Items, BillItemInput{
			ItemType:  enum.ItemTypeService,
			Name:      string(rune('A' + i)),
			Quantity:  1,
			UnitPrice: money.Rupees(r),
		})
	}
	bill, err := f.billing.CreateBill(f.ctx, input)
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return bill
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *entity.Bill {
	t.Helper()
	bill, err := f.billing.GetBill(f.ctx, id)
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	return bill
}

func (f *fixture) chairByID(t *testing.T, id uuid.UUID) *entity.Chair {
	t.Helper()
	c, err := f.chairs.GetByID(f.ctx, id)
	if err != nil || c == nil {
		t.Fatalf("get chair: %v", err)
	}
	return c
}

func cash(rupees int64) []PaymentInput {
	return []PaymentInput{{Mode: enum.PaymentModeCash, Amount: money.Rupees(rupees)}}
}
