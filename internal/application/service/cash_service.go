package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CashService reconciles the drawer against the books for a business day
type CashService struct {
	cashRepo  repository.CashRepository
	billRepo  repository.BillRepository
	tx        repository.Transactor
	publisher EventPublisher
	logger    logrus.FieldLogger
	location  *time.Location
	now       Clock
}

// NewCashService creates a new cash service. Business days are cut in loc.
func NewCashService(
	cashRepo repository.CashRepository,
	billRepo repository.BillRepository,
	tx repository.Transactor,
	publisher EventPublisher,
	log logrus.FieldLogger,
	loc *time.Location,
	now Clock,
) *CashService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &CashService{
		cashRepo:  cashRepo,
		billRepo:  billRepo,
		tx:        tx,
		publisher: publisher,
		logger:    log,
		location:  loc,
		now:       now,
	}
}

// RecordReconciliationInput represents a drawer count. A nil Date means today.
type RecordReconciliationInput struct {
	Date          *time.Time
	Denominations entity.Denominations
	Notes         *string
	RecordedBy    *uuid.UUID
}

// RecordBankDepositInput represents a deposit of drawer cash
type RecordBankDepositInput struct {
	Date      *time.Time
	BankName  string
	Amount    money.Amount
	Reference *string
	Notes     *string
}

// RecordCashInflowInput represents cash added to the drawer outside of sales
type RecordCashInflowInput struct {
	Date   *time.Time
	Source string
	Amount money.Amount
	Notes  *string
}

// RecordExpenseInput represents money paid out by the branch
type RecordExpenseInput struct {
	Date        *time.Time
	Category    string
	PaymentMode enum.PaymentMode
	Amount      money.Amount
	Notes       *string
}

// BusinessDay normalizes a date to the business day it belongs to, stored
// as midnight UTC. A nil date is today in the business timezone.
func (s *CashService) BusinessDay(date *time.Time) time.Time {
	t := s.now().In(s.location)
	if date != nil {
		t = *date
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// window is the [start, end) instant range of a business day
func (s *CashService) window(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1)
}

// ExpectedCash computes what the drawer should hold at the end of day
func (s *CashService) ExpectedCash(ctx context.Context, date *time.Time) (*entity.ExpectedBreakdown, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.expected(ctx, branchID, s.BusinessDay(date))
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

func (s *CashService) expected(ctx context.Context, branchID uuid.UUID, day time.Time) (entity.ExpectedBreakdown, error) {
	from, to := s.window(day)
	sales, err := s.billRepo.SumPayments(ctx, &repository.PaymentSumParams{
		BranchID:   branchID,
		Mode:       enum.PaymentModeCash,
		BillStatus: enum.BillStatusCompleted,
		From:       from,
		To:         to,
	})
	if err != nil {
		return entity.ExpectedBreakdown{}, err
	}
	inflows, err := s.cashRepo.SumCashInflows(ctx, branchID, day)
	if err != nil {
		return entity.ExpectedBreakdown{}, err
	}
	deposits, err := s.cashRepo.SumBankDeposits(ctx, branchID, day)
	if err != nil {
		return entity.ExpectedBreakdown{}, err
	}
	expenses, err := s.cashRepo.SumExpenses(ctx, branchID, day, enum.PaymentModeCash)
	if err != nil {
		return entity.ExpectedBreakdown{}, err
	}
	return entity.NewExpectedBreakdown(sales, inflows, deposits, expenses), nil
}

// RecordReconciliation counts the drawer, compares it with the expected
// cash and stores the result. Several counts per day are kept.
func (s *CashService) RecordReconciliation(ctx context.Context, input *RecordReconciliationInput) (*entity.CashReconciliation, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	if len(input.Denominations) == 0 {
		return nil, apperror.NewFieldError("denominations", "Denominations are required")
	}
	actual, err := input.Denominations.Count()
	if err != nil {
		return nil, err
	}

	day := s.BusinessDay(input.Date)
	var rec *entity.CashReconciliation
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		breakdown, err := s.expected(ctx, branchID, day)
		if err != nil {
			return err
		}
		difference := actual - breakdown.ExpectedCash
		rec = &entity.CashReconciliation{
			BranchID:      branchID,
			Date:          day,
			Denominations: datatypes.NewJSONType(input.Denominations.Normalized()),
			ActualCash:    actual,
			ExpectedCash:  breakdown.ExpectedCash,
			Difference:    difference,
			CashSales:     breakdown.CashSales,
			OtherInflows:  breakdown.OtherInflows,
			BankDeposits:  breakdown.BankDeposits,
			CashExpenses:  breakdown.CashExpenses,
			Status:        enum.ClassifyDifference(difference.Sign()),
			Notes:         input.Notes,
			RecordedBy:    input.RecordedBy,
		}
		return s.cashRepo.CreateReconciliation(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	entry := s.logger.WithFields(logrus.Fields{
		"branch_id":  branchID,
		"date":       day.Format("2006-01-02"),
		"actual":     rec.ActualCash.String(),
		"expected":   rec.ExpectedCash.String(),
		"difference": rec.Difference.String(),
		"status":     rec.Status.String(),
	})
	if rec.Status == enum.ReconciliationBalanced {
		entry.Info("Cash reconciled")
	} else {
		entry.Warn("Cash drawer does not balance")
	}

	s.publisher.Publish(branchID, events.EventCashReconciled, rec)
	return rec, nil
}

// ListReconciliations lists drawer counts of the current branch, newest first
func (s *CashService) ListReconciliations(ctx context.Context, from, to *time.Time, params *pagination.PaginationParams) ([]entity.CashReconciliation, *pagination.Pagination, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, apperror.NewFieldError("to", "End date is before start date")
	}

	rows, total, err := s.cashRepo.ListReconciliations(ctx, &repository.ReconciliationFilterParams{
		Pagination: params,
		BranchID:   branchID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return nil, nil, err
	}
	return rows, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

// RecordBankDeposit appends a deposit; it lowers expected cash for its day
func (s *CashService) RecordBankDeposit(ctx context.Context, input *RecordBankDepositInput) (*entity.BankDeposit, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	bankName := strings.TrimSpace(input.BankName)
	if bankName == "" {
		return nil, apperror.NewFieldError("bank_name", "Bank name is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "Deposit amount must be greater than zero")
	}

	deposit := &entity.BankDeposit{
		BranchID:  branchID,
		Date:      s.BusinessDay(input.Date),
		BankName:  bankName,
		Amount:    input.Amount,
		Reference: input.Reference,
		Notes:     input.Notes,
	}
	if err := s.cashRepo.CreateBankDeposit(ctx, deposit); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"branch_id": branchID,
		"date":      deposit.Date.Format("2006-01-02"),
		"amount":    deposit.Amount.String(),
	}).Info("Bank deposit recorded")

	s.publisher.Publish(branchID, events.EventBankDeposited, deposit)
	return deposit, nil
}

// ListBankDeposits lists the deposits of one business day
func (s *CashService) ListBankDeposits(ctx context.Context, date *time.Time) ([]entity.BankDeposit, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	return s.cashRepo.ListBankDeposits(ctx, branchID, s.BusinessDay(date))
}

// RecordCashInflow appends cash put into the drawer outside of sales
func (s *CashService) RecordCashInflow(ctx context.Context, input *RecordCashInflowInput) (*entity.CashInflow, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		return nil, apperror.NewFieldError("source", "Source is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "Amount must be greater than zero")
	}

	inflow := &entity.CashInflow{
		BranchID: branchID,
		Date:     s.BusinessDay(input.Date),
		Source:   source,
		Amount:   input.Amount,
		Notes:    input.Notes,
	}
	if err := s.cashRepo.CreateCashInflow(ctx, inflow); err != nil {
		return nil, err
	}
	return inflow, nil
}

// RecordExpense appends an expense; only cash expenses affect the drawer
func (s *CashService) RecordExpense(ctx context.Context, input *RecordExpenseInput) (*entity.Expense, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, apperror.NewFieldError("category", "Category is required")
	}
	if !input.PaymentMode.Valid() {
		return nil, apperror.NewFieldError("payment_mode", "Unknown payment mode")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "Amount must be greater than zero")
	}

	expense := &entity.Expense{
		BranchID:    branchID,
		Date:        s.BusinessDay(input.Date),
		Category:    category,
		PaymentMode: input.PaymentMode,
		Amount:      input.Amount,
		Notes:       input.Notes,
	}
	if err := s.cashRepo.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}
