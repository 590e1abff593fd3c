package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/internal/infrastructure/lock"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/logger"
)

// failAfter runs fn inside the real transaction and then fails it
type failAfter struct {
	inner domainRepo.Transactor
	err   error
}

func (tx failAfter) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.inner.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.err
	})
}

func TestAssignChairMovesBill(t *testing.T) {
	f := newFixture(t, nil)
	first := f.chair(t, "C1")
	second := f.chair(t, "C2")
	bill := f.bill(t, &first.ID, 100)

	chair, err := f.chairSvc.AssignChair(f.ctx, second.ID, bill.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !chair.IsHeldBy(bill.ID) {
		t.Fatalf("new chair should hold the bill")
	}
	if c := f.chairByID(t, first.ID); c.Status != enum.ChairStatusAvailable {
		t.Fatalf("old chair should be available, got %s", c.Status)
	}
	if got := f.reload(t, bill.ID); got.ChairID == nil || *got.ChairID != second.ID {
		t.Fatalf("bill should reference the new chair")
	}

	// Assigning the chair it already holds is a no-op
	if _, err := f.chairSvc.AssignChair(f.ctx, second.ID, bill.ID); err != nil {
		t.Fatalf("re-assign: %v", err)
	}
}

func TestAssignChairRejectsDoubleBooking(t *testing.T) {
	f := newFixture(t, nil)
	chair := f.chair(t, "C1")
	holder := f.bill(t, &chair.ID, 100)
	other := f.bill(t, nil, 200)

	if _, err := f.chairSvc.AssignChair(f.ctx, chair.ID, other.ID); !errors.Is(err, apperror.ErrChairUnavailable) {
		t.Fatalf("expected chair unavailable, got %v", err)
	}
	if c := f.chairByID(t, chair.ID); !c.IsHeldBy(holder.ID) {
		t.Fatalf("holder must keep the chair")
	}
	if got := f.reload(t, other.ID); got.ChairID != nil {
		t.Fatalf("losing bill must not reference the chair")
	}

	if _, err := f.billing.CancelBill(f.ctx, other.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.chairSvc.AssignChair(f.ctx, f.chair(t, "C2").ID, other.ID); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("cancelled bill cannot take a chair, got %v", err)
	}
}

func TestReleaseChairKeepsBillOpen(t *testing.T) {
	f := newFixture(t, nil)
	chair := f.chair(t, "C1")
	bill := f.bill(t, &chair.ID, 300)

	released, err := f.chairSvc.ReleaseChair(f.ctx, chair.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Status != enum.ChairStatusAvailable || released.CurrentBillID != nil {
		t.Fatalf("expected available chair, got %s", released.Status)
	}
	got := f.reload(t, bill.ID)
	if got.Status != enum.BillStatusPending || got.ChairID != nil {
		t.Fatalf("bill should stay pending without a chair, got %s", got.Status)
	}

	// Settling afterwards must not touch the chair that someone else now holds
	next := f.bill(t, &chair.ID, 50)
	if _, err := f.billing.CompleteBill(f.ctx, &CompleteBillInput{BillID: bill.ID, Payments: cash(300)}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if c := f.chairByID(t, chair.ID); !c.IsHeldBy(next.ID) {
		t.Fatalf("chair must still be held by the next bill")
	}
}

func TestReleaseChairAlwaysYieldsAvailable(t *testing.T) {
	f := newFixture(t, nil)
	for _, from := range []enum.ChairStatus{enum.ChairStatusAvailable, enum.ChairStatusMaintenance, enum.ChairStatusInactive} {
		chair := f.chair(t, "C-"+from.String())
		if from != enum.ChairStatusAvailable {
			if _, err := f.chairSvc.SetChairStatus(f.ctx, chair.ID, from); err != nil {
				t.Fatalf("set %s: %v", from, err)
			}
		}
		got, err := f.chairSvc.ReleaseChair(f.ctx, chair.ID)
		if err != nil {
			t.Fatalf("release from %s: %v", from, err)
		}
		if got.Status != enum.ChairStatusAvailable {
			t.Fatalf("release from %s gave %s", from, got.Status)
		}
	}
	if _, err := f.chairSvc.ReleaseChair(f.ctx, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetChairStatusRules(t *testing.T) {
	f := newFixture(t, nil)
	chair := f.chair(t, "C1")

	cases := []struct {
		name    string
		status  enum.ChairStatus
		wantErr error
		want    enum.ChairStatus
	}{
		{"to maintenance", enum.ChairStatusMaintenance, nil, enum.ChairStatusMaintenance},
		{"same status", enum.ChairStatusMaintenance, nil, enum.ChairStatusMaintenance},
		{"to inactive", enum.ChairStatusInactive, nil, enum.ChairStatusInactive},
		{"to occupied", enum.ChairStatusOccupied, apperror.ErrValidation, enum.ChairStatusInactive},
		{"back to available", enum.ChairStatusAvailable, nil, enum.ChairStatusAvailable},
	}
	for _, tc := range cases {
		got, err := f.chairSvc.SetChairStatus(f.ctx, chair.ID, tc.status)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.Status != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got.Status)
		}
	}

	f.bill(t, &chair.ID, 100)
	if _, err := f.chairSvc.SetChairStatus(f.ctx, chair.ID, enum.ChairStatusMaintenance); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("occupied chair must be released first, got %v", err)
	}
}

func TestSetChairStatusIsTransactional(t *testing.T) {
	f := newFixture(t, nil)
	chair := f.chair(t, "C1")

	boom := errors.New("boom")
	rec := &recorder{}
	svc := NewChairService(f.chairs, f.bills, failAfter{inner: memory.NewTransactor(f.store), err: boom}, lock.NoopLocker{}, rec, logger.Discard())

	if _, err := svc.SetChairStatus(f.ctx, chair.ID, enum.ChairStatusMaintenance); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c := f.chairByID(t, chair.ID); c.Status != enum.ChairStatusAvailable || c.Version != chair.Version {
		t.Fatalf("failed status change must roll back, got %s v%d", c.Status, c.Version)
	}
	if rec.count(events.EventChairUpdated) != 0 {
		t.Fatalf("a rolled back change must not be published")
	}
}

func TestChairBoard(t *testing.T) {
	f := newFixture(t, nil)
	f.chair(t, "C2")
	c1 := f.chair(t, "C1")
	f.bill(t, &c1.ID, 100)

	if _, err := f.chairSvc.CreateChair(f.ctx, "C1"); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("duplicate chair number should conflict, got %v", err)
	}
	if _, err := f.chairSvc.CreateChair(f.ctx, "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("blank chair number should be rejected, got %v", err)
	}

	all, err := f.chairSvc.ListChairs(f.ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ChairNumber != "C1" {
		t.Fatalf("expected two chairs ordered by number, got %+v", all)
	}
	occupied := enum.ChairStatusOccupied
	busy, _ := f.chairSvc.ListChairs(f.ctx, &occupied)
	if len(busy) != 1 || busy[0].ID != c1.ID {
		t.Fatalf("expected only C1 occupied")
	}
}
