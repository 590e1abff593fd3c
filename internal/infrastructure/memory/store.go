// Package memory is an in-process implementation of the domain repositories.
// It backs DB_DRIVER=memory deployments and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	bills           map[uuid.UUID]*entity.Bill
	chairs          map[uuid.UUID]entity.Chair
	packages        map[uuid.UUID]*entity.Package
	reconciliations []entity.CashReconciliation
	deposits        []entity.BankDeposit
	inflows         []entity.CashInflow
	expenses        []entity.Expense

	idempotency map[string]entity.IdempotencyKey
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		bills:       make(map[uuid.UUID]*entity.Bill),
		chairs:      make(map[uuid.UUID]entity.Chair),
		packages:    make(map[uuid.UUID]*entity.Package),
		idempotency: make(map[string]entity.IdempotencyKey),
	}
}

// snapshot is a copy of everything a transaction may write
type snapshot struct {
	bills           map[uuid.UUID]*entity.Bill
	chairs          map[uuid.UUID]entity.Chair
	packages        map[uuid.UUID]*entity.Package
	reconciliations []entity.CashReconciliation
	deposits        []entity.BankDeposit
	inflows         []entity.CashInflow
	expenses        []entity.Expense
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		bills:           make(map[uuid.UUID]*entity.Bill, len(s.bills)),
		chairs:          make(map[uuid.UUID]entity.Chair, len(s.chairs)),
		packages:        make(map[uuid.UUID]*entity.Package, len(s.packages)),
		reconciliations: append([]entity.CashReconciliation(nil), s.reconciliations...),
		deposits:        append([]entity.BankDeposit(nil), s.deposits...),
		inflows:         append([]entity.CashInflow(nil), s.inflows...),
		expenses:        append([]entity.Expense(nil), s.expenses...),
	}
	for id, b := range s.bills {
		snap.bills[id] = cloneBill(b)
	}
	for id, c := range s.chairs {
		snap.chairs[id] = c
	}
	for id, p := range s.packages {
		snap.packages[id] = p
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bills = snap.bills
	s.chairs = snap.chairs
	s.packages = snap.packages
	s.reconciliations = snap.reconciliations
	s.deposits = snap.deposits
	s.inflows = snap.inflows
	s.expenses = snap.expenses
}

type txKey struct{}

type transactor struct {
	s *Store
}

// NewTransactor serializes transactions on the store and rolls back on error
func NewTransactor(s *Store) domainRepo.Transactor {
	return &transactor{s: s}
}

func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// lockWrite takes the write lock for a mutation. A write outside a
// transaction also waits for the running transaction to finish, so a
// rollback only ever discards that transaction's own writes.
func (s *Store) lockWrite(ctx context.Context) func() {
	if inTransaction(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func cloneBill(b *entity.Bill) *entity.Bill {
	c := *b
	c.Items = append([]entity.BillItem(nil), b.Items...)
	c.Payments = append([]entity.Payment(nil), b.Payments...)
	return &c
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func paginate[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
