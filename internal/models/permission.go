package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permission is a view-only grant for one entity type, seeded idempotently at
// deploy time (one row per registered entity).
type Permission struct {
	PermissionID uuid.UUID `gorm:"column:permission_id;type:uuid;primaryKey" json:"permission_id"`
	EntityType   string    `gorm:"column:entity_type;not null;uniqueIndex" json:"entity_type"`
	Codename     string    `gorm:"column:codename;not null" json:"codename"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Permission) TableName() string {
	return "permissions"
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.PermissionID == uuid.Nil {
		p.PermissionID = uuid.New()
	}
	return nil
}
