package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Field is a plot of land belonging to one farm. Landlord and lease columns
// are only meaningful when the field is not own property.
type Field struct {
	FieldID                uuid.UUID       `gorm:"column:field_id;type:uuid;primaryKey" json:"field_id"`
	FarmID                 uuid.UUID       `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	Farm                   *Farm           `gorm:"foreignKey:FarmID;references:FarmID;constraint:OnDelete:RESTRICT" json:"farm,omitempty"`
	Name                   string          `gorm:"column:name;not null" json:"name"`
	Location               string          `gorm:"column:location" json:"location"`
	IsOwnProperty          bool            `gorm:"column:is_own_property;not null" json:"is_own_property"`
	HasElectricityTubewell bool            `gorm:"column:has_electricity_tubewell;not null;default:false" json:"has_electricity_tubewell"`
	HasCanalIrrigation     bool            `gorm:"column:has_canal_irrigation;not null;default:false" json:"has_canal_irrigation"`
	TotalAcres             float64         `gorm:"column:total_acres;not null" json:"total_acres"`
	LandlordName           string          `gorm:"column:landlord_name" json:"landlord_name"`
	LandlordNumber         string          `gorm:"column:landlord_number" json:"landlord_number"`
	LeasePerAcre           *float64        `gorm:"column:lease_per_acre;type:decimal(18,2)" json:"lease_per_acre"`
	LeaseStart             *datatypes.Date `gorm:"column:lease_start" json:"lease_start"`
	LeaseEnd               *datatypes.Date `gorm:"column:lease_end" json:"lease_end"`
	IsActive               bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

func (Field) TableName() string {
	return "fields"
}

func (f *Field) BeforeCreate(tx *gorm.DB) error {
	if f.FieldID == uuid.Nil {
		f.FieldID = uuid.New()
	}
	return nil
}
