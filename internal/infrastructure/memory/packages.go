package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
)

type packageRepository struct {
	s *Store
}

// NewPackageRepository creates a package repository on the store
func NewPackageRepository(s *Store) domainRepo.PackageRepository {
	return &packageRepository{s: s}
}

func (r *packageRepository) Create(ctx context.Context, pkg *entity.Package) error {
	defer r.s.lockWrite(ctx)()

	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	now := time.Now()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now

	for i := range pkg.Services {
		svc := &pkg.Services[i]
		if svc.ID == uuid.Nil {
			svc.ID = uuid.New()
		}
		svc.PackageID = pkg.ID
		svc.GroupID = nil
	}
	for gi := range pkg.Groups {
		group := &pkg.Groups[gi]
		if group.ID == uuid.Nil {
			group.ID = uuid.New()
		}
		group.PackageID = pkg.ID
		group.Position = gi
		groupID := group.ID
		for oi := range group.Options {
			opt := &group.Options[oi]
			if opt.ID == uuid.Nil {
				opt.ID = uuid.New()
			}
			opt.PackageID = pkg.ID
			opt.GroupID = &groupID
		}
	}

	stored := *pkg
	r.s.packages[pkg.ID] = &stored
	return nil
}

func (r *packageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.packages[id]
	if !ok || !infraRepo.InBranch(ctx, p.BranchID) {
		return nil, nil
	}
	out := *p
	return &out, nil
}
