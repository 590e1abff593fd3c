package entity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FaceValues are the INR notes and coins accepted in a drawer count, largest first
var FaceValues = []int64{2000, 500, 200, 100, 50, 20, 10, 5, 2, 1}

// Denominations maps a face value (in rupees, as a string key) to a count
type Denominations map[string]int

// Count validates a drawer count and returns its total
func (d Denominations) Count() (money.Amount, error) {
	var total money.Amount
	for face, count := range d {
		value, err := strconv.ParseInt(face, 10, 64)
		if err != nil || !isFaceValue(value) {
			return 0, apperror.NewFieldError("denominations", fmt.Sprintf("Unknown denomination %q", face))
		}
		if count < 0 {
			return 0, apperror.NewFieldError("denominations", fmt.Sprintf("Count for %s cannot be negative", face))
		}
		line, err := money.Rupees(value).MulChecked(count)
		if err == nil {
			total, err = total.AddChecked(line)
		}
		if err != nil {
			return 0, apperror.NewFieldError("denominations", fmt.Sprintf("Count for %s is out of range", face))
		}
	}
	return total, nil
}

// Normalized drops zero counts
func (d Denominations) Normalized() Denominations {
	out := make(Denominations, len(d))
	for face, count := range d {
		if count != 0 {
			out[face] = count
		}
	}
	return out
}

func isFaceValue(v int64) bool {
	for _, f := range FaceValues {
		if f == v {
			return true
		}
	}
	return false
}

// CashReconciliation is one physical drawer count compared with the books
type CashReconciliation struct {
	ID            uuid.UUID                         `gorm:"type:uuid;primary_key" json:"id"`
	BranchID      uuid.UUID                         `gorm:"type:uuid;not null;index:idx_recon_branch_date" json:"branch_id"`
	Date          time.Time                         `gorm:"type:date;not null;index:idx_recon_branch_date" json:"date"`
	Denominations datatypes.JSONType[Denominations] `gorm:"type:jsonb" json:"denominations"`
	ActualCash    money.Amount                      `gorm:"not null" json:"actual_cash"`
	ExpectedCash  money.Amount                      `gorm:"not null" json:"expected_cash"`
	Difference    money.Amount                      `gorm:"not null" json:"difference"`
	CashSales     money.Amount                      `gorm:"not null;default:0" json:"cash_sales"`
	OtherInflows  money.Amount                      `gorm:"not null;default:0" json:"other_inflows"`
	BankDeposits  money.Amount                      `gorm:"not null;default:0" json:"bank_deposits"`
	CashExpenses  money.Amount                      `gorm:"not null;default:0" json:"cash_expenses"`
	Status        enum.ReconciliationStatus         `gorm:"not null" json:"status"`
	Notes         *string                           `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy    *uuid.UUID                        `gorm:"type:uuid" json:"recorded_by,omitempty"`
	CreatedAt     time.Time                         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new reconciliation
func (r *CashReconciliation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashReconciliation model
func (CashReconciliation) TableName() string {
	return "cash_reconciliations"
}

// ExpectedBreakdown is the composition of expected drawer cash for a day
type ExpectedBreakdown struct {
	CashSales    money.Amount `json:"cash_sales"`
	OtherInflows money.Amount `json:"other_inflows"`
	BankDeposits money.Amount `json:"bank_deposits"`
	CashExpenses money.Amount `json:"cash_expenses"`
	ExpectedCash money.Amount `json:"expected_cash"`
}

// NewExpectedBreakdown computes sales + inflows - deposits - expenses
func NewExpectedBreakdown(sales, inflows, deposits, expenses money.Amount) ExpectedBreakdown {
	return ExpectedBreakdown{
		CashSales:    sales,
		OtherInflows: inflows,
		BankDeposits: deposits,
		CashExpenses: expenses,
		ExpectedCash: sales + inflows - deposits - expenses,
	}
}

// BankDeposit moves cash from the drawer to a bank
type BankDeposit struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	BranchID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_deposit_branch_date" json:"branch_id"`
	Date      time.Time    `gorm:"type:date;not null;index:idx_deposit_branch_date" json:"date"`
	BankName  string       `gorm:"size:100;not null" json:"bank_name"`
	Amount    money.Amount `gorm:"not null" json:"amount"`
	Reference *string      `gorm:"size:100" json:"reference,omitempty"`
	Notes     *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new deposit
func (d *BankDeposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BankDeposit model
func (BankDeposit) TableName() string {
	return "bank_deposits"
}

// CashInflow is cash put into the drawer outside of sales, such as an opening float
type CashInflow struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	BranchID  uuid.UUID    `gorm:"type:uuid;not null;index:idx_inflow_branch_date" json:"branch_id"`
	Date      time.Time    `gorm:"type:date;not null;index:idx_inflow_branch_date" json:"date"`
	Source    string       `gorm:"size:100;not null" json:"source"`
	Amount    money.Amount `gorm:"not null" json:"amount"`
	Notes     *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new inflow
func (i *CashInflow) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashInflow model
func (CashInflow) TableName() string {
	return "cash_inflows"
}

// Expense is money paid out by the branch. Only cash expenses leave the drawer.
type Expense struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	BranchID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_expense_branch_date" json:"branch_id"`
	Date        time.Time        `gorm:"type:date;not null;index:idx_expense_branch_date" json:"date"`
	Category    string           `gorm:"size:100;not null" json:"category"`
	PaymentMode enum.PaymentMode `gorm:"not null" json:"payment_mode"`
	Amount      money.Amount     `gorm:"not null" json:"amount"`
	Notes       *string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new expense
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
