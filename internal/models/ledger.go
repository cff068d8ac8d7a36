package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger is the running account of an external party (vendor, worker,
// commission agent) kept against one farm.
type Ledger struct {
	LedgerID      uuid.UUID `gorm:"column:ledger_id;type:uuid;primaryKey" json:"ledger_id"`
	FarmID        uuid.UUID `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	Farm          *Farm     `gorm:"foreignKey:FarmID;references:FarmID;constraint:OnDelete:RESTRICT" json:"farm,omitempty"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	ContactNumber string    `gorm:"column:contact_number" json:"contact_number"`
	Location      string    `gorm:"column:location" json:"location"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Ledger) TableName() string {
	return "ledgers"
}

func (l *Ledger) BeforeCreate(tx *gorm.DB) error {
	if l.LedgerID == uuid.Nil {
		l.LedgerID = uuid.New()
	}
	return nil
}
