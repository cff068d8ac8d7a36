package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry types.
const (
	EntryDebit  = "debit"
	EntryCredit = "credit"
)

// ValidEntryType reports whether t is debit or credit.
func ValidEntryType(t string) bool {
	return t == EntryDebit || t == EntryCredit
}

// MinLedgerEntryAmount is the lowest accepted entry amount.
const MinLedgerEntryAmount = 1.0

// LedgerEntry is one debit or credit against a ledger account.
type LedgerEntry struct {
	EntryID         uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	LedgerID        uuid.UUID `gorm:"column:ledger_id;type:uuid;not null;index" json:"ledger_id"`
	Ledger          *Ledger   `gorm:"foreignKey:LedgerID;references:LedgerID;constraint:OnDelete:RESTRICT" json:"ledger,omitempty"`
	EntryType       string    `gorm:"column:entry_type;type:varchar(10);not null" json:"entry_type"`
	Amount          float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TransactionDate time.Time `gorm:"column:transaction_date;not null" json:"transaction_date"`
	Notes           string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	if e.TransactionDate.IsZero() {
		e.TransactionDate = time.Now()
	}
	return nil
}
