package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Chair is a physical service station. CurrentBillID is set iff the chair is occupied.
type Chair struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	BranchID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_chair_branch_number" json:"branch_id"`
	ChairNumber   string           `gorm:"size:20;not null;uniqueIndex:idx_chair_branch_number" json:"chair_number"`
	Status        enum.ChairStatus `gorm:"not null;default:0" json:"status"`
	CurrentBillID *uuid.UUID       `gorm:"type:uuid;index" json:"current_bill_id,omitempty"`
	Version       int64            `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new chair
func (c *Chair) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Chair model
func (Chair) TableName() string {
	return "chairs"
}

// IsHeldBy reports whether the chair is occupied by the given bill
func (c *Chair) IsHeldBy(billID uuid.UUID) bool {
	return c.Status == enum.ChairStatusOccupied && c.CurrentBillID != nil && *c.CurrentBillID == billID
}
