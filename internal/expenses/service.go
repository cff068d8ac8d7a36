package expenses

import (
	"context"
	"errors"
	"fmt"

	"khet-backend/internal/models"
	"khet-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrExpenseNotFound = errors.New("Expense not found")
	ErrTypeInvalid     = errors.New("Invalid expense type")
	ErrAmountInvalid   = errors.New("Amount must not be negative")
	ErrSpentByRequired = errors.New("Spent by is required")
	ErrScopeViolation  = errors.New("Invalid crop reference")
)

type Service struct {
	DB *gorm.DB
}

type ExpenseInput struct {
	CropID      uuid.UUID      `json:"crop_id"`
	ExpenseType string         `json:"expense_type"`
	ExpenseDate datatypes.Date `json:"expense_date"`
	Amount      float64        `json:"amount"`
	Notes       string         `json:"notes"`
	SpentByID   uuid.UUID      `json:"spent_by_id"`
}

func (in *ExpenseInput) validate() error {
	if !models.ValidExpenseType(in.ExpenseType) {
		return ErrTypeInvalid
	}
	if in.Amount < 0 {
		return ErrAmountInvalid
	}
	if in.SpentByID == uuid.Nil {
		return ErrSpentByRequired
	}
	return nil
}

// CreateExpense records spending against a crop. The crop is resolved through
// the scoped query; added_by is always the requesting principal.
func (s *Service) CreateExpense(ctx context.Context, principal *models.User, in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCrop(ctx, principal, in.CropID); err != nil {
		return nil, err
	}
	expense := &models.Expense{
		CropID:      in.CropID,
		ExpenseType: in.ExpenseType,
		ExpenseDate: in.ExpenseDate,
		Amount:      in.Amount,
		Notes:       in.Notes,
		SpentByID:   in.SpentByID,
		AddedByID:   principal.UserID,
	}
	if err := s.DB.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, fmt.Errorf("Failed to create expense: %v", err)
	}
	return expense, nil
}

type ListFilter struct {
	CropID      *uuid.UUID
	ExpenseType string
	SpentByID   *uuid.UUID
}

// ListExpenses returns scoped expenses, newest first. With a crop_id filter
// this is the deep-link target for a crop's total_expense figure.
func (s *Service) ListExpenses(ctx context.Context, principal *models.User, f ListFilter) ([]models.Expense, error) {
	var expenses []models.Expense
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Expense{}), principal, scope.Expenses)
	if f.CropID != nil {
		q = q.Where("crop_id = ?", *f.CropID)
	}
	if f.ExpenseType != "" {
		if !models.ValidExpenseType(f.ExpenseType) {
			return nil, ErrTypeInvalid
		}
		q = q.Where("expense_type = ?", f.ExpenseType)
	}
	if f.SpentByID != nil {
		q = q.Where("spent_by_id = ?", *f.SpentByID)
	}
	if err := q.Order("expense_date DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Service) UpdateExpense(ctx context.Context, principal *models.User, expenseID uuid.UUID, in ExpenseInput) (*models.Expense, error) {
	var expense models.Expense
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Expense{}), principal, scope.Expenses)
	if err := q.Where("expense_id = ?", expenseID).First(&expense).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.CropID != uuid.Nil && in.CropID != expense.CropID {
		if err := s.checkCrop(ctx, principal, in.CropID); err != nil {
			return nil, err
		}
		expense.CropID = in.CropID
	}
	expense.ExpenseType = in.ExpenseType
	expense.ExpenseDate = in.ExpenseDate
	expense.Amount = in.Amount
	expense.Notes = in.Notes
	expense.SpentByID = in.SpentByID
	if err := s.DB.WithContext(ctx).Save(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *Service) DeleteExpense(ctx context.Context, principal *models.User, expenseID uuid.UUID) error {
	var expense models.Expense
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Expense{}), principal, scope.Expenses)
	if err := q.Where("expense_id = ?", expenseID).First(&expense).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrExpenseNotFound
		}
		return err
	}
	return s.DB.WithContext(ctx).Delete(&expense).Error
}

func (s *Service) checkCrop(ctx context.Context, principal *models.User, cropID uuid.UUID) error {
	var n int64
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Crop{}), principal, scope.Crops)
	if err := q.Where("crop_id = ?", cropID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrScopeViolation
	}
	return nil
}
