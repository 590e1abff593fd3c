package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/pricing"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/sirupsen/logrus"
)

// PackageService prices service bundles
type PackageService struct {
	packageRepo repository.PackageRepository
	logger      logrus.FieldLogger
}

// NewPackageService creates a new package service
func NewPackageService(packageRepo repository.PackageRepository, log logrus.FieldLogger) *PackageService {
	return &PackageService{
		packageRepo: packageRepo,
		logger:      log,
	}
}

// CreatePackageInput represents the create package input
type CreatePackageInput struct {
	Name     string
	Price    *money.Amount
	Services []pricing.Line
	Groups   []pricing.Group
}

// ComputePackagePricing prices an ad hoc composition
func (s *PackageService) ComputePackagePricing(ctx context.Context, c pricing.Composition) (*pricing.Result, error) {
	return pricing.Compute(c)
}

// PackagePricing prices a stored package
func (s *PackageService) PackagePricing(ctx context.Context, id uuid.UUID) (*entity.Package, *pricing.Result, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if pkg == nil {
		return nil, nil, apperror.NewNotFoundError("Package")
	}
	result, err := pricing.Compute(pricing.FromPackage(pkg))
	if err != nil {
		return nil, nil, err
	}
	return pkg, result, nil
}

// CreatePackage stores a package after checking that it prices
func (s *PackageService) CreatePackage(ctx context.Context, input *CreatePackageInput) (*entity.Package, *pricing.Result, error) {
	branchID, err := requireBranch(ctx)
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, apperror.NewFieldError("name", "Package name is required")
	}

	result, err := pricing.Compute(pricing.Composition{
		Price:    input.Price,
		Services: input.Services,
		Groups:   input.Groups,
	})
	if err != nil {
		return nil, nil, err
	}

	pkg := &entity.Package{
		BranchID: branchID,
		Name:     name,
		Price:    input.Price,
		IsActive: true,
	}
	for _, l := range input.Services {
		pkg.Services = append(pkg.Services, packageServiceOf(l))
	}
	for i, g := range input.Groups {
		if len(g.Options) == 0 {
			continue
		}
		group := entity.PackageServiceGroup{Label: g.Label, Position: i}
		if group.Label == "" {
			group.Label = fmt.Sprintf("Choice %d", i+1)
		}
		for _, l := range g.Options {
			group.Options = append(group.Options, packageServiceOf(l))
		}
		pkg.Groups = append(pkg.Groups, group)
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"package_id": pkg.ID,
		"individual": result.IndividualPrice.String(),
		"price":      result.PackagePrice.String(),
	}).Info("Package created")
	return pkg, result, nil
}

func packageServiceOf(l pricing.Line) entity.PackageService {
	return entity.PackageService{
		ServiceID: l.ServiceID,
		Name:      l.Name,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
	}
}
