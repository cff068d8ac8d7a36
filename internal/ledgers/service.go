package ledgers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khet-backend/internal/metrics"
	"khet-backend/internal/models"
	"khet-backend/internal/pkg/validation"
	"khet-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrLedgerNotFound  = errors.New("Ledger not found")
	ErrEntryNotFound   = errors.New("Ledger entry not found")
	ErrNameRequired    = errors.New("Ledger name is required")
	ErrContactInvalid  = errors.New("Invalid contact number")
	ErrEntryTypeBad    = errors.New("Entry type must be debit or credit")
	ErrAmountTooSmall  = errors.New("Amount must be at least 1.0")
	ErrScopeViolation  = errors.New("Invalid reference")
	ErrInvalidFilter   = errors.New("Invalid balance filter")
	ErrHasDependents   = errors.New("Ledger has entries and cannot be deleted")
)

type Service struct {
	DB *gorm.DB
}

type LedgerInput struct {
	FarmID        uuid.UUID `json:"farm_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ContactNumber string    `json:"contact_number"`
	Location      string    `json:"location"`
	IsActive      *bool     `json:"is_active"`
}

func (in *LedgerInput) validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if !validation.IsValidContactNumber(in.ContactNumber) {
		return ErrContactInvalid
	}
	return nil
}

// CreateLedger opens an account for an external party against a farm. The
// farm is resolved through the scoped query.
func (s *Service) CreateLedger(ctx context.Context, principal *models.User, in LedgerInput) (*models.Ledger, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkFarm(ctx, principal, in.FarmID); err != nil {
		return nil, err
	}
	ledger := &models.Ledger{
		FarmID:        in.FarmID,
		Name:          in.Name,
		Description:   in.Description,
		ContactNumber: in.ContactNumber,
		Location:      in.Location,
		IsActive:      true,
	}
	if in.IsActive != nil {
		ledger.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Create(ledger).Error; err != nil {
		return nil, fmt.Errorf("Failed to create ledger: %v", err)
	}
	return ledger, nil
}

type ListFilter struct {
	Balance  string
	FarmID   *uuid.UUID
	IsActive *bool
}

// ListLedgers returns scoped ledgers with debit/credit rollups. Scope is
// applied before the balance filter so totals never mix owners.
func (s *Service) ListLedgers(ctx context.Context, principal *models.User, f ListFilter) ([]metrics.LedgerRow, error) {
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Ledger{}), principal, scope.Ledgers)
	if f.FarmID != nil {
		q = q.Where("farm_id = ?", *f.FarmID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Balance != "" {
		var err error
		q, err = metrics.LedgerBalanceFilter(q, f.Balance)
		if err != nil {
			return nil, ErrInvalidFilter
		}
	}
	return metrics.LedgerRows(q)
}

// GetLedger returns one scoped ledger with metrics.
func (s *Service) GetLedger(ctx context.Context, principal *models.User, ledgerID uuid.UUID) (*metrics.LedgerRow, error) {
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Ledger{}), principal, scope.Ledgers)
	row, err := metrics.LedgerRowByID(q, ledgerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *Service) UpdateLedger(ctx context.Context, principal *models.User, ledgerID uuid.UUID, in LedgerInput) (*models.Ledger, error) {
	ledger, err := s.findLedger(ctx, principal, ledgerID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.FarmID != uuid.Nil && in.FarmID != ledger.FarmID {
		if err := s.checkFarm(ctx, principal, in.FarmID); err != nil {
			return nil, err
		}
		ledger.FarmID = in.FarmID
	}
	ledger.Name = in.Name
	ledger.Description = in.Description
	ledger.ContactNumber = in.ContactNumber
	ledger.Location = in.Location
	if in.IsActive != nil {
		ledger.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Save(ledger).Error; err != nil {
		return nil, err
	}
	return ledger, nil
}

// DeleteLedger refuses to delete a ledger with entries.
func (s *Service) DeleteLedger(ctx context.Context, principal *models.User, ledgerID uuid.UUID) error {
	ledger, err := s.findLedger(ctx, principal, ledgerID)
	if err != nil {
		return err
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.LedgerEntry{}).Where("ledger_id = ?", ledgerID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrHasDependents
	}
	return s.DB.WithContext(ctx).Delete(ledger).Error
}

// Choices returns the ledgers the principal may post entries to.
func (s *Service) Choices(ctx context.Context, principal *models.User) ([]scope.Choice, error) {
	return scope.LedgerChoices(s.DB.WithContext(ctx), principal)
}

type EntryInput struct {
	LedgerID        uuid.UUID  `json:"ledger_id"`
	EntryType       string     `json:"entry_type"`
	Amount          float64    `json:"amount"`
	TransactionDate *time.Time `json:"transaction_date"`
	Notes           string     `json:"notes"`
}

// CreateEntry posts a debit or credit against a ledger. Amount below 1.0 is a
// hard validation failure; the ledger is resolved through the scoped query.
func (s *Service) CreateEntry(ctx context.Context, principal *models.User, in EntryInput) (*models.LedgerEntry, error) {
	if !models.ValidEntryType(in.EntryType) {
		return nil, ErrEntryTypeBad
	}
	if in.Amount < models.MinLedgerEntryAmount {
		return nil, ErrAmountTooSmall
	}
	if _, err := s.findLedger(ctx, principal, in.LedgerID); err != nil {
		if err == ErrLedgerNotFound {
			return nil, ErrScopeViolation
		}
		return nil, err
	}
	entry := &models.LedgerEntry{
		LedgerID:  in.LedgerID,
		EntryType: in.EntryType,
		Amount:    in.Amount,
		Notes:     in.Notes,
	}
	if in.TransactionDate != nil {
		entry.TransactionDate = *in.TransactionDate
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("Failed to create ledger entry: %v", err)
	}
	return entry, nil
}

type EntryFilter struct {
	LedgerID  *uuid.UUID
	EntryType string
}

// ListEntries returns scoped entries, newest first. With ledger_id and
// entry_type filters this is the deep-link target for a ledger's debit or
// credit total.
func (s *Service) ListEntries(ctx context.Context, principal *models.User, f EntryFilter) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.LedgerEntry{}), principal, scope.LedgerEntries)
	if f.LedgerID != nil {
		q = q.Where("ledger_id = ?", *f.LedgerID)
	}
	if f.EntryType != "" {
		if !models.ValidEntryType(f.EntryType) {
			return nil, ErrEntryTypeBad
		}
		q = q.Where("entry_type = ?", f.EntryType)
	}
	if err := q.Order("transaction_date DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) DeleteEntry(ctx context.Context, principal *models.User, entryID uuid.UUID) error {
	var entry models.LedgerEntry
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.LedgerEntry{}), principal, scope.LedgerEntries)
	if err := q.Where("entry_id = ?", entryID).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrEntryNotFound
		}
		return err
	}
	return s.DB.WithContext(ctx).Delete(&entry).Error
}

func (s *Service) findLedger(ctx context.Context, principal *models.User, ledgerID uuid.UUID) (*models.Ledger, error) {
	var ledger models.Ledger
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Ledger{}), principal, scope.Ledgers)
	if err := q.Where("ledger_id = ?", ledgerID).First(&ledger).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	return &ledger, nil
}

func (s *Service) checkFarm(ctx context.Context, principal *models.User, farmID uuid.UUID) error {
	var n int64
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Farm{}), principal, scope.Farms)
	if err := q.Where("farm_id = ?", farmID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrScopeViolation
	}
	return nil
}
