package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *gorm.DB) domainRepo.PackageRepository {
	return &packageRepository{db: db}
}

// Create writes the package, its standalone services and its groups with their options
func (r *packageRepository) Create(ctx context.Context, pkg *entity.Package) error {
	db := conn(ctx, r.db)
	if err := db.Omit(clause.Associations).Create(pkg).Error; err != nil {
		return err
	}

	for i := range pkg.Services {
		pkg.Services[i].PackageID = pkg.ID
		pkg.Services[i].GroupID = nil
	}
	if len(pkg.Services) > 0 {
		if err := db.Create(&pkg.Services).Error; err != nil {
			return err
		}
	}

	for gi := range pkg.Groups {
		group := &pkg.Groups[gi]
		group.PackageID = pkg.ID
		group.Position = gi
		if err := db.Omit(clause.Associations).Create(group).Error; err != nil {
			return err
		}
		if len(group.Options) == 0 {
			continue
		}
		groupID := group.ID
		for oi := range group.Options {
			group.Options[oi].PackageID = pkg.ID
			group.Options[oi].GroupID = &groupID
		}
		if err := db.Create(&group.Options).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *packageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	var pkg entity.Package
	err := conn(ctx, r.db).
		Scopes(BranchScope(ctx)).
		Preload("Services", "group_id IS NULL").
		Preload("Groups", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Groups.Options").
		First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pkg, err
}
