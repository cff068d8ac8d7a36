package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Output is one sale of harvested produce from a crop cycle. Revenue for the
// sale is total_mann * rate_per_mann.
type Output struct {
	OutputID    uuid.UUID      `gorm:"column:output_id;type:uuid;primaryKey" json:"output_id"`
	CropID      uuid.UUID      `gorm:"column:crop_id;type:uuid;not null;index" json:"crop_id"`
	Crop        *Crop          `gorm:"foreignKey:CropID;references:CropID;constraint:OnDelete:RESTRICT" json:"crop,omitempty"`
	TotalMann   float64        `gorm:"column:total_mann;not null" json:"total_mann"`
	RatePerMann float64        `gorm:"column:rate_per_mann;type:decimal(18,2);not null" json:"rate_per_mann"`
	SoldDate    datatypes.Date `gorm:"column:sold_date;not null" json:"sold_date"`
	Notes       string         `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Output) TableName() string {
	return "outputs"
}

func (o *Output) BeforeCreate(tx *gorm.DB) error {
	if o.OutputID == uuid.Nil {
		o.OutputID = uuid.New()
	}
	return nil
}
