package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Expense type values.
const (
	ExpenseSeed        = "seed"
	ExpenseFertilizer  = "fertilizer"
	ExpensePesticides  = "pesticides"
	ExpenseWater       = "water"
	ExpenseElectricity = "electricity"
	ExpenseOil         = "oil"
	ExpenseLabour      = "labour"
	ExpenseLease       = "lease"
	ExpenseMisc        = "misc"
)

// ExpenseTypes lists all valid expense type values.
var ExpenseTypes = []string{
	ExpenseSeed, ExpenseFertilizer, ExpensePesticides, ExpenseWater,
	ExpenseElectricity, ExpenseOil, ExpenseLabour, ExpenseLease, ExpenseMisc,
}

// ValidExpenseType reports whether t is a known expense type.
func ValidExpenseType(t string) bool {
	for _, v := range ExpenseTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Expense is money spent on one crop cycle.
type Expense struct {
	ExpenseID   uuid.UUID      `gorm:"column:expense_id;type:uuid;primaryKey" json:"expense_id"`
	CropID      uuid.UUID      `gorm:"column:crop_id;type:uuid;not null;index" json:"crop_id"`
	Crop        *Crop          `gorm:"foreignKey:CropID;references:CropID;constraint:OnDelete:RESTRICT" json:"crop,omitempty"`
	ExpenseType string         `gorm:"column:expense_type;type:varchar(20);not null" json:"expense_type"`
	ExpenseDate datatypes.Date `gorm:"column:expense_date;not null" json:"expense_date"`
	Amount      float64        `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Notes       string         `gorm:"column:notes;type:text" json:"notes"`
	SpentByID   uuid.UUID      `gorm:"column:spent_by_id;type:uuid;not null" json:"spent_by_id"`
	SpentBy     *User          `gorm:"foreignKey:SpentByID;references:UserID;constraint:OnDelete:RESTRICT" json:"spent_by,omitempty"`
	AddedByID   uuid.UUID      `gorm:"column:added_by_id;type:uuid;not null" json:"added_by_id"`
	AddedBy     *User          `gorm:"foreignKey:AddedByID;references:UserID;constraint:OnDelete:RESTRICT" json:"added_by,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ExpenseID == uuid.Nil {
		e.ExpenseID = uuid.New()
	}
	return nil
}
