package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CropType is global reference data (wheat, rice, sugarcane...) shared by all
// farms, carried in English and Urdu.
type CropType struct {
	CropTypeID    uuid.UUID `gorm:"column:crop_type_id;type:uuid;primaryKey" json:"crop_type_id"`
	NameEn        string    `gorm:"column:name_en;not null" json:"name_en"`
	NameUr        string    `gorm:"column:name_ur" json:"name_ur"`
	DescriptionEn string    `gorm:"column:description_en" json:"description_en"`
	DescriptionUr string    `gorm:"column:description_ur" json:"description_ur"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (CropType) TableName() string {
	return "crop_types"
}

func (ct *CropType) BeforeCreate(tx *gorm.DB) error {
	if ct.CropTypeID == uuid.Nil {
		ct.CropTypeID = uuid.New()
	}
	return nil
}

// DisplayName resolves the name for the given language, falling back to English.
func (ct *CropType) DisplayName(lang string) string {
	if lang == LanguageUrdu && ct.NameUr != "" {
		return ct.NameUr
	}
	return ct.NameEn
}

// DisplayDescription resolves the description for the given language.
func (ct *CropType) DisplayDescription(lang string) string {
	if lang == LanguageUrdu && ct.DescriptionUr != "" {
		return ct.DescriptionUr
	}
	return ct.DescriptionEn
}
