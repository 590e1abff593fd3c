package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/sirupsen/logrus"
)

// defaultChairs is the board a fresh branch starts with
var defaultChairs = []string{"C1", "C2", "C3", "C4"}

// SeedBranch gives a branch a chair board and a sample package. It is a
// no-op once the branch has chairs, and works on either storage driver.
func SeedBranch(ctx context.Context, branchID uuid.UUID, chairs repository.ChairRepository, packages repository.PackageRepository, log logrus.FieldLogger) error {
	existing, err := chairs.ListByBranch(ctx, branchID, nil)
	if err != nil {
		return fmt.Errorf("failed to list chairs: %w", err)
	}
	if len(existing) > 0 {
		log.WithField("branch_id", branchID).Debug("Branch already seeded")
		return nil
	}

	for _, number := range defaultChairs {
		if err := chairs.Create(ctx, &entity.Chair{BranchID: branchID, ChairNumber: number, Version: 1}); err != nil {
			return fmt.Errorf("failed to create chair %s: %w", number, err)
		}
	}

	price := money.Rupees(1499)
	pkg := &entity.Package{
		BranchID: branchID,
		Name:     "Bridal Glow",
		Price:    &price,
		IsActive: true,
		Services: []entity.PackageService{
			{ServiceID: uuid.New(), Name: "Haircut", Quantity: 1, UnitPrice: money.Rupees(500)},
		},
		Groups: []entity.PackageServiceGroup{
			{
				Label: "Facial",
				Options: []entity.PackageService{
					{ServiceID: uuid.New(), Name: "Gold Facial", Quantity: 1, UnitPrice: money.Rupees(1200)},
					{ServiceID: uuid.New(), Name: "Fruit Facial", Quantity: 1, UnitPrice: money.Rupees(800)},
				},
			},
		},
	}
	if err := packages.Create(ctx, pkg); err != nil {
		return fmt.Errorf("failed to create sample package: %w", err)
	}

	log.WithFields(logrus.Fields{"branch_id": branchID, "chairs": len(defaultChairs)}).Info("Seeded branch")
	return nil
}
