package entity

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
)

func newBill(prices ...int64) *Bill {
	chair := uuid.New()
	b := &Bill{ID: uuid.New(), BillNo: "B-1", Status: enum.BillStatusPending, ChairID: &chair}
	for i, p := range prices {
		b.Items = append(b.Items, BillItem{
			ID:        uuid.New(),
			BillID:    b.ID,
			Name:      string(rune('A' + i)),
			Quantity:  1,
			UnitPrice: money.Rupees(p),
			Status:    enum.BillItemStatusPending,
		})
	}
	b.RecomputeTotals()
	return b
}

func cash(amount int64) Payment {
	return Payment{PaymentMode: enum.PaymentModeCash, Amount: money.Rupees(amount)}
}

func TestRecomputeTotals(t *testing.T) {
	b := newBill(500, 300, 200)
	b.Items[0].Quantity = 2
	b.Items[0].DiscountAmount = money.Rupees(100)
	b.DiscountAmount = money.Rupees(50)
	b.TaxAmount = money.Rupees(18)
	b.RecomputeTotals()

	if b.Items[0].TotalPrice != money.Rupees(900) {
		t.Fatalf("expected line total 900, got %s", b.Items[0].TotalPrice)
	}
	if b.SubTotal != money.Rupees(1400) {
		t.Fatalf("expected subtotal 1400, got %s", b.SubTotal)
	}
	if b.TotalAmount != money.Rupees(1368) {
		t.Fatalf("expected total 1368, got %s", b.TotalAmount)
	}
}

func TestPartialThenFullSettlement(t *testing.T) {
	b := newBill(500, 300, 200)
	chair := *b.ChairID
	itemC := b.Items[2].ID

	plan, err := b.PlanSettlement([]uuid.UUID{itemC})
	if err != nil {
		t.Fatalf("plan partial: %v", err)
	}
	if plan.Payable != money.Rupees(800) || !plan.Partial() {
		t.Fatalf("expected partial payable 800, got %s partial=%v", plan.Payable, plan.Partial())
	}
	if released := b.ApplySettlement(plan, []Payment{cash(800)}, time.Now()); released != nil {
		t.Fatalf("partial settlement must not release the chair")
	}
	if b.Status != enum.BillStatusPartial {
		t.Fatalf("expected partial, got %s", b.Status)
	}
	if b.Items[0].Status != enum.BillItemStatusCompleted || b.Items[1].Status != enum.BillItemStatusCompleted {
		t.Fatalf("A and B should be completed")
	}
	if b.Items[2].Status != enum.BillItemStatusPending {
		t.Fatalf("C should remain pending, got %s", b.Items[2].Status)
	}

	plan, err = b.PlanSettlement(nil)
	if err != nil {
		t.Fatalf("plan full: %v", err)
	}
	if plan.Payable != money.Rupees(200) {
		t.Fatalf("expected remaining payable 200, got %s", plan.Payable)
	}
	released := b.ApplySettlement(plan, []Payment{cash(200)}, time.Now())
	if released == nil || *released != chair {
		t.Fatalf("full settlement should release chair %s", chair)
	}
	if b.Status != enum.BillStatusCompleted || b.CompletedAt == nil || b.ChairID != nil {
		t.Fatalf("bill should be completed and detached, got %s", b.Status)
	}
	if b.PaidAmount() != b.TotalAmount {
		t.Fatalf("paid %s != total %s", b.PaidAmount(), b.TotalAmount)
	}
}

func TestPartialSettlementWithBillAdjustments(t *testing.T) {
	cases := []struct {
		name        string
		discount    int64
		tax         int64
		wantPartial int64
		wantRest    int64
	}{
		{"no adjustments", 0, 0, 800, 200},
		{"small discount", 150, 0, 800, 50},
		{"tax", 0, 180, 800, 380},
		{"discount and tax", 100, 90, 800, 190},
		{"discount larger than pending items", 900, 0, 100, 0},
		{"discount swallows everything", 1000, 0, 0, 0},
	}
	for _, tc := range cases {
		b := newBill(500, 300, 200)
		b.DiscountAmount = money.Rupees(tc.discount)
		b.TaxAmount = money.Rupees(tc.tax)
		b.RecomputeTotals()

		plan, err := b.PlanSettlement([]uuid.UUID{b.Items[2].ID})
		if err != nil {
			t.Fatalf("%s: plan partial: %v", tc.name, err)
		}
		if plan.Payable != money.Rupees(tc.wantPartial) {
			t.Fatalf("%s: expected partial payable %d, got %s", tc.name, tc.wantPartial, plan.Payable)
		}
		var first []Payment
		if plan.Payable > 0 {
			first = []Payment{cash(tc.wantPartial)}
		}
		b.ApplySettlement(plan, first, time.Now())
		if b.OutstandingAmount() < 0 {
			t.Fatalf("%s: partial settlement overpaid the bill by %s", tc.name, b.OutstandingAmount().Abs())
		}

		plan, err = b.PlanSettlement(nil)
		if err != nil {
			t.Fatalf("%s: plan full: %v", tc.name, err)
		}
		if plan.Payable != money.Rupees(tc.wantRest) {
			t.Fatalf("%s: expected remaining %d, got %s", tc.name, tc.wantRest, plan.Payable)
		}
		var rest []Payment
		if plan.Payable > 0 {
			rest = []Payment{cash(tc.wantRest)}
		}
		b.ApplySettlement(plan, rest, time.Now())
		if b.Status != enum.BillStatusCompleted || b.PaidAmount() != b.TotalAmount {
			t.Fatalf("%s: expected completed with paid == total, got %s paid %s total %s", tc.name, b.Status, b.PaidAmount(), b.TotalAmount)
		}
	}
}

func TestPlanSettlementRejectsAllItemsPending(t *testing.T) {
	b := newBill(500, 300)
	ids := []uuid.UUID{b.Items[0].ID, b.Items[1].ID}

	_, err := b.PlanSettlement(ids)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, item := range b.Items {
		if item.Status != enum.BillItemStatusPending {
			t.Fatalf("items must not change, got %s", item.Status)
		}
	}
	if len(b.Payments) != 0 || b.Status != enum.BillStatusPending {
		t.Fatalf("bill must not change")
	}
}

func TestPlanSettlementValidation(t *testing.T) {
	b := newBill(500, 300, 200)
	b.Items[1].Status = enum.BillItemStatusRejected
	b.RecomputeTotals()

	cases := []struct {
		name    string
		pending []uuid.UUID
	}{
		{"empty set", []uuid.UUID{}},
		{"foreign item", []uuid.UUID{uuid.New()}},
		{"rejected item", []uuid.UUID{b.Items[1].ID}},
		{"duplicate", []uuid.UUID{b.Items[0].ID, b.Items[0].ID}},
		{"every open item", []uuid.UUID{b.Items[0].ID, b.Items[2].ID}},
	}
	for _, tc := range cases {
		if _, err := b.PlanSettlement(tc.pending); !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestPlanSettlementStateChecks(t *testing.T) {
	for _, status := range []enum.BillStatus{enum.BillStatusDraft, enum.BillStatusCompleted, enum.BillStatusCancelled} {
		b := newBill(100)
		b.Status = status
		if _, err := b.PlanSettlement(nil); !errors.Is(err, apperror.ErrStateConflict) {
			t.Fatalf("%s: expected state conflict, got %v", status, err)
		}
	}
}

func TestRejectedItemsStayRejected(t *testing.T) {
	b := newBill(500, 300)
	if err := b.SetItemStatus(b.Items[1].ID, enum.BillItemStatusRejected, time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if b.TotalAmount != money.Rupees(500) {
		t.Fatalf("expected total 500 after rejection, got %s", b.TotalAmount)
	}

	plan, err := b.PlanSettlement(nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	b.ApplySettlement(plan, []Payment{cash(500)}, time.Now())
	if b.Items[1].Status != enum.BillItemStatusRejected {
		t.Fatalf("rejected item must stay rejected, got %s", b.Items[1].Status)
	}
}

func TestSetItemStatusRules(t *testing.T) {
	b := newBill(500, 300)
	now := time.Now()

	if err := b.SetItemStatus(b.Items[0].ID, enum.BillItemStatusInProgress, now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := b.SetItemStatus(b.Items[0].ID, enum.BillItemStatusRejected, now); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("in_progress -> rejected should conflict, got %v", err)
	}
	if err := b.SetItemStatus(b.Items[1].ID, enum.BillItemStatusCompleted, now); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("completion outside settlement should conflict, got %v", err)
	}
	if err := b.SetItemStatus(uuid.New(), enum.BillItemStatusInProgress, now); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejectBelowPaidAmountConflicts(t *testing.T) {
	b := newBill(500, 300, 200)
	plan, _ := b.PlanSettlement([]uuid.UUID{b.Items[2].ID})
	b.ApplySettlement(plan, []Payment{cash(800)}, time.Now())

	// rejecting C leaves total 800 == paid, which is fine
	if err := b.SetItemStatus(b.Items[2].ID, enum.BillItemStatusRejected, time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	b2 := newBill(500, 300)
	b2.DiscountAmount = money.Rupees(100)
	b2.RecomputeTotals()
	b2.Payments = []Payment{cash(650)}
	b2.Status = enum.BillStatusPartial
	if err := b2.SetItemStatus(b2.Items[1].ID, enum.BillItemStatusRejected, time.Now()); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("expected overpaid conflict, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	b := newBill(100)
	chair := *b.ChairID
	released, err := b.Cancel(time.Now())
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if released == nil || *released != chair || b.ChairID != nil || b.Status != enum.BillStatusCancelled {
		t.Fatalf("cancel should detach the chair")
	}
	if _, err := b.Cancel(time.Now()); !errors.Is(err, apperror.ErrStateConflict) {
		t.Fatalf("second cancel should conflict, got %v", err)
	}
	if len(b.Items) != 1 {
		t.Fatalf("items must be kept for audit")
	}
}

func TestBillItemValidate(t *testing.T) {
	item := BillItem{Name: "Cut", Quantity: 1, UnitPrice: money.Rupees(100), DiscountAmount: money.Rupees(150)}
	if err := item.Validate(); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("discount above price should fail, got %v", err)
	}
	item.DiscountAmount = 0
	item.Quantity = 0
	if err := item.Validate(); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("zero quantity should fail, got %v", err)
	}
	item.Quantity = math.MaxInt64 / 1000
	if err := item.Validate(); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("a quantity that wraps the line total should fail, got %v", err)
	}
	item.Quantity = 1
	item.UnitPrice = money.MaxLine + 1
	if err := item.Validate(); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("a line above the cap should fail, got %v", err)
	}
}
