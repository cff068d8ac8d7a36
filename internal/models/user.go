package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supported display languages for localised catalog fields.
const (
	LanguageEnglish = "en"
	LanguageUrdu    = "ur"
)

// User is a farm owner or employee. IsSuperuser grants unrestricted access;
// everyone else only sees rows reachable from farms they own.
type User struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username     string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Fullname     string    `gorm:"column:fullname;not null" json:"fullname"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Language     string    `gorm:"column:language;type:varchar(2);not null;default:en" json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	if u.Language == "" {
		u.Language = LanguageEnglish
	}
	return nil
}
