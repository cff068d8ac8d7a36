package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Season values for a crop cycle.
const (
	SeasonSummer    = "summer"
	SeasonWinter    = "winter"
	SeasonMidSeason = "mid_season"
)

// ValidSeason reports whether s is a known season value.
func ValidSeason(s string) bool {
	switch s {
	case SeasonSummer, SeasonWinter, SeasonMidSeason:
		return true
	}
	return false
}

// Crop is one growing cycle of a crop type on a field.
type Crop struct {
	CropID         uuid.UUID       `gorm:"column:crop_id;type:uuid;primaryKey" json:"crop_id"`
	FieldID        uuid.UUID       `gorm:"column:field_id;type:uuid;not null;index" json:"field_id"`
	Field          *Field          `gorm:"foreignKey:FieldID;references:FieldID;constraint:OnDelete:RESTRICT" json:"field,omitempty"`
	CropTypeID     uuid.UUID       `gorm:"column:crop_type_id;type:uuid;not null;index" json:"crop_type_id"`
	CropType       *CropType       `gorm:"foreignKey:CropTypeID;references:CropTypeID;constraint:OnDelete:RESTRICT" json:"crop_type,omitempty"`
	Season         string          `gorm:"column:season;type:varchar(20);not null" json:"season"`
	Breed          string          `gorm:"column:breed;not null" json:"breed"`
	TotalAcres     float64         `gorm:"column:total_acres;not null" json:"total_acres"`
	DateSowing     datatypes.Date  `gorm:"column:date_sowing;not null" json:"date_sowing"`
	DateHarvesting *datatypes.Date `gorm:"column:date_harvesting" json:"date_harvesting"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Crop) TableName() string {
	return "crops"
}

func (c *Crop) BeforeCreate(tx *gorm.DB) error {
	if c.CropID == uuid.Nil {
		c.CropID = uuid.New()
	}
	return nil
}
