package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
)

// PackageRepository defines the interface for service package data operations
type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Package, error)
}
