package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FarmAsset is machinery or equipment owned by a farm (tractor, tubewell motor...).
type FarmAsset struct {
	AssetID       uuid.UUID      `gorm:"column:asset_id;type:uuid;primaryKey" json:"asset_id"`
	FarmID        uuid.UUID      `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	Farm          *Farm          `gorm:"foreignKey:FarmID;references:FarmID;constraint:OnDelete:RESTRICT" json:"farm,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	DatePurchased datatypes.Date `gorm:"column:date_purchased;not null" json:"date_purchased"`
	IsBoughtNew   bool           `gorm:"column:is_bought_new;not null" json:"is_bought_new"`
	PurchaseCost  float64        `gorm:"column:purchase_cost;type:decimal(18,2);not null" json:"purchase_cost"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (FarmAsset) TableName() string {
	return "farm_assets"
}

func (a *FarmAsset) BeforeCreate(tx *gorm.DB) error {
	if a.AssetID == uuid.Nil {
		a.AssetID = uuid.New()
	}
	return nil
}
