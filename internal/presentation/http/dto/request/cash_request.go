package request

import (
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/money"
)

// Dates are business days formatted as 2006-01-02; empty means today.

// RecordReconciliationRequest is a physical drawer count
type RecordReconciliationRequest struct {
	Date          string         `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Denominations map[string]int `json:"denominations" binding:"required,dive,min=0,max=1000000"`
	Notes         *string        `json:"notes" binding:"omitempty,max=1000"`
}

// RecordBankDepositRequest moves drawer cash to a bank
type RecordBankDepositRequest struct {
	Date      string       `json:"date" binding:"omitempty,datetime=2006-01-02"`
	BankName  string       `json:"bank_name" binding:"required,max=100"`
	Amount    money.Amount `json:"amount" binding:"gt=0"`
	Reference *string      `json:"reference" binding:"omitempty,max=100"`
	Notes     *string      `json:"notes" binding:"omitempty,max=1000"`
}

// RecordCashInflowRequest adds cash to the drawer outside of sales
type RecordCashInflowRequest struct {
	Date   string       `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Source string       `json:"source" binding:"required,max=100"`
	Amount money.Amount `json:"amount" binding:"gt=0"`
	Notes  *string      `json:"notes" binding:"omitempty,max=1000"`
}

// RecordExpenseRequest is an expense paid by the branch
type RecordExpenseRequest struct {
	Date        string            `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Category    string            `json:"category" binding:"required,max=100"`
	PaymentMode *enum.PaymentMode `json:"payment_mode" binding:"required"`
	Amount      money.Amount      `json:"amount" binding:"gt=0"`
	Notes       *string           `json:"notes" binding:"omitempty,max=1000"`
}
