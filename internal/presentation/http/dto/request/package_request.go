package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/pkg/money"
)

// PackageLineRequest is a service inside a package
type PackageLineRequest struct {
	ServiceID uuid.UUID    `json:"service_id" binding:"required"`
	Name      string       `json:"name" binding:"required,max=255"`
	Quantity  int          `json:"quantity" binding:"required,min=1"`
	UnitPrice money.Amount `json:"unit_price" binding:"min=0"`
}

// PackageGroupRequest is an OR-group; the customer redeems one option
type PackageGroupRequest struct {
	Label   string               `json:"label" binding:"omitempty,max=100"`
	Options []PackageLineRequest `json:"options" binding:"dive"`
}

// PackagePricingRequest is an ad hoc composition to price
type PackagePricingRequest struct {
	Price    *money.Amount         `json:"price" binding:"omitempty,min=0"`
	Services []PackageLineRequest  `json:"services" binding:"dive"`
	Groups   []PackageGroupRequest `json:"groups" binding:"dive"`
}

// CreatePackageRequest stores a package
type CreatePackageRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
	PackagePricingRequest
}
