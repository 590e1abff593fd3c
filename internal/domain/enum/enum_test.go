package enum

import (
	"encoding/json"
	"testing"
)

func TestBillItemTransitions(t *testing.T) {
	cases := []struct {
		from, to BillItemStatus
		want     bool
	}{
		{BillItemStatusPending, BillItemStatusInProgress, true},
		{BillItemStatusPending, BillItemStatusCompleted, true},
		{BillItemStatusPending, BillItemStatusRejected, true},
		{BillItemStatusInProgress, BillItemStatusCompleted, true},
		{BillItemStatusInProgress, BillItemStatusRejected, false},
		{BillItemStatusInProgress, BillItemStatusPending, false},
		{BillItemStatusCompleted, BillItemStatusPending, false},
		{BillItemStatusCompleted, BillItemStatusRejected, false},
		{BillItemStatusRejected, BillItemStatusPending, false},
		{BillItemStatusRejected, BillItemStatusCompleted, false},
		{BillItemStatusPending, BillItemStatus(9), false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestTerminalItemStatesHaveNoExits(t *testing.T) {
	for _, from := range []BillItemStatus{BillItemStatusCompleted, BillItemStatusRejected} {
		for to := BillItemStatus(0); to < billItemStatusCount; to++ {
			if from.CanTransitionTo(to) {
				t.Fatalf("terminal %s must not move to %s", from, to)
			}
		}
	}
}

func TestAdminChairTransitions(t *testing.T) {
	if ChairStatusOccupied.CanAdminTransitionTo(ChairStatusMaintenance) {
		t.Fatalf("occupied chair must be released before maintenance")
	}
	if ChairStatusAvailable.CanAdminTransitionTo(ChairStatusOccupied) {
		t.Fatalf("occupied may only be entered through bill assignment")
	}
	if !ChairStatusMaintenance.CanAdminTransitionTo(ChairStatusInactive) {
		t.Fatalf("maintenance -> inactive should be allowed")
	}
	if !ChairStatusInactive.CanAdminTransitionTo(ChairStatusAvailable) {
		t.Fatalf("inactive -> available should be allowed")
	}
}

func TestBillStatusRules(t *testing.T) {
	if !BillStatusPartial.CanSettle() || BillStatusDraft.CanSettle() || BillStatusCompleted.CanSettle() {
		t.Fatalf("only pending and partial bills can be settled")
	}
	if BillStatusCompleted.CanCancel() || BillStatusCancelled.CanCancel() || !BillStatusDraft.CanCancel() {
		t.Fatalf("unexpected cancel rules")
	}
}

func TestEnumJSONRoundTripRejectsUnknown(t *testing.T) {
	var mode PaymentMode
	if err := json.Unmarshal([]byte(`"upi"`), &mode); err != nil || mode != PaymentModeUPI {
		t.Fatalf("expected upi, got %v (%v)", mode, err)
	}
	if err := json.Unmarshal([]byte(`"cheque"`), &mode); err == nil {
		t.Fatalf("expected unknown payment mode to be rejected")
	}

	var status BillStatus
	if err := json.Unmarshal([]byte(`"partial"`), &status); err != nil || status != BillStatusPartial {
		t.Fatalf("expected partial, got %v (%v)", status, err)
	}
	out, _ := json.Marshal(BillItemStatusInProgress)
	if string(out) != `"in_progress"` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestClassifyDifference(t *testing.T) {
	if ClassifyDifference(1) != ReconciliationSurplus ||
		ClassifyDifference(-1) != ReconciliationShortage ||
		ClassifyDifference(0) != ReconciliationBalanced {
		t.Fatalf("unexpected classification")
	}
}
