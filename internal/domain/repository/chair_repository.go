package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
)

// ChairRepository defines the interface for chair data operations.
// Occupancy changes are compare-and-set updates on the chair row.
type ChairRepository interface {
	// Create inserts a chair; a duplicate chair number in the branch is a state conflict
	Create(ctx context.Context, chair *entity.Chair) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Chair, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, status *enum.ChairStatus) ([]entity.Chair, error)
	// Occupy moves an available chair to occupied by billID. It reports false
	// when the chair was not available.
	Occupy(ctx context.Context, chairID, billID uuid.UUID) (bool, error)
	// ReleaseHeldBy frees the chair only if billID still holds it
	ReleaseHeldBy(ctx context.Context, chairID, billID uuid.UUID) (bool, error)
	// UpdateWithVersion writes status and current bill if the version matches
	UpdateWithVersion(ctx context.Context, chair *entity.Chair, expectedVersion int64) error
}
