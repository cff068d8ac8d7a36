package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Farm is the root of the ownership hierarchy: every scoped entity resolves
// its visibility through farm.owner_id.
type Farm struct {
	FarmID    uuid.UUID `gorm:"column:farm_id;type:uuid;primaryKey" json:"farm_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID;references:UserID;constraint:OnDelete:RESTRICT" json:"owner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Farm) TableName() string {
	return "farms"
}

func (f *Farm) BeforeCreate(tx *gorm.DB) error {
	if f.FarmID == uuid.Nil {
		f.FarmID = uuid.New()
	}
	return nil
}
