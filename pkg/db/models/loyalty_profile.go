package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoyaltyProfile is the one-per-user customer profile that accumulates points.
type LoyaltyProfile struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FullName       string     `gorm:"column:full_name;not null"`
	NationalID     string     `gorm:"column:national_id;not null;uniqueIndex"`
	Phone          *string    `gorm:"column:phone"`
	NeighborhoodID *uuid.UUID `gorm:"column:neighborhood_id;type:uuid"`
	Address        *string    `gorm:"column:address"`
	Points         int        `gorm:"column:points;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *LoyaltyProfile) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// LoyaltyHistoryEntry is an append-only audit record of a points delta.
type LoyaltyHistoryEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProfileID uuid.UUID  `gorm:"column:profile_id;type:uuid;not null;index"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid"`
	Points    int        `gorm:"column:points;not null"`
	Reason    string     `gorm:"column:reason;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (LoyaltyHistoryEntry) TableName() string {
	return "loyalty_history"
}

func (e *LoyaltyHistoryEntry) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
