package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/pkg/money"
	"gorm.io/gorm"
)

// Package bundles services at an optional fixed price. Standalone services
// have no group; grouped services are mutually exclusive options.
type Package struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	BranchID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"branch_id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	Price     *money.Amount `json:"price,omitempty"`
	IsActive  bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Services []PackageService      `gorm:"foreignKey:PackageID" json:"services"`
	Groups   []PackageServiceGroup `gorm:"foreignKey:PackageID" json:"groups"`
}

// BeforeCreate generates a UUID before creating a new package
func (p *Package) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Package model
func (Package) TableName() string {
	return "packages"
}

// PackageServiceGroup is an OR-group: exactly one option is redeemed
type PackageServiceGroup struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	PackageID uuid.UUID        `gorm:"type:uuid;not null;index" json:"package_id"`
	Label     string           `gorm:"size:100" json:"label"`
	Position  int              `gorm:"not null;default:0" json:"position"`
	Options   []PackageService `gorm:"foreignKey:GroupID" json:"options"`
}

// BeforeCreate generates a UUID before creating a new group
func (g *PackageServiceGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PackageServiceGroup model
func (PackageServiceGroup) TableName() string {
	return "package_service_groups"
}

type PackageService struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	PackageID uuid.UUID    `gorm:"type:uuid;not null;index" json:"package_id"`
	GroupID   *uuid.UUID   `gorm:"type:uuid;index" json:"group_id,omitempty"`
	ServiceID uuid.UUID    `gorm:"type:uuid;not null" json:"service_id"`
	Name      string       `gorm:"size:255;not null" json:"name"`
	Quantity  int          `gorm:"not null;default:1" json:"quantity"`
	UnitPrice money.Amount `gorm:"not null" json:"unit_price"`
}

// BeforeCreate generates a UUID before creating a new package service
func (s *PackageService) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PackageService model
func (PackageService) TableName() string {
	return "package_services"
}
