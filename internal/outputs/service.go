package outputs

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
	ErrOutputNotFound = errors.New("Output not found")
	ErrMannInvalid    = errors.New("Total mann must be greater than zero")
	ErrRateInvalid    = errors.New("Rate per mann must not be negative")
	ErrScopeViolation = errors.New("Invalid crop reference")
)

type Service struct {
	DB *gorm.DB
}

type OutputInput struct {
	CropID      uuid.UUID      `json:"crop_id"`
	TotalMann   float64        `json:"total_mann"`
	RatePerMann float64        `json:"rate_per_mann"`
	SoldDate    datatypes.Date `json:"sold_date"`
	Notes       string         `json:"notes"`
}

func (in *OutputInput) validate() error {
	if in.TotalMann <= 0 {
		return ErrMannInvalid
	}
	if in.RatePerMann < 0 {
		return ErrRateInvalid
	}
	return nil
}

// CreateOutput records a sale of produce from a crop. The crop is resolved
// through the scoped query.
func (s *Service) CreateOutput(ctx context.Context, principal *models.User, in OutputInput) (*models.Output, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCrop(ctx, principal, in.CropID); err != nil {
		return nil, err
	}
	output := &models.Output{
		CropID:      in.CropID,
		TotalMann:   in.TotalMann,
		RatePerMann: in.RatePerMann,
		SoldDate:    in.SoldDate,
		Notes:       in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(output).Error; err != nil {
		return nil, fmt.Errorf("Failed to create output: %v", err)
	}
	return output, nil
}

// ListOutputs returns scoped outputs, newest sale first. With a crop_id
// filter this is the deep-link target for a crop's total_output figure.
func (s *Service) ListOutputs(ctx context.Context, principal *models.User, cropID *uuid.UUID) ([]models.Output, error) {
	var outputs []models.Output
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Output{}), principal, scope.Outputs)
	if cropID != nil {
		q = q.Where("crop_id = ?", *cropID)
	}
	if err := q.Order("sold_date DESC").Find(&outputs).Error; err != nil {
		return nil, err
	}
	return outputs, nil
}

func (s *Service) DeleteOutput(ctx context.Context, principal *models.User, outputID uuid.UUID) error {
	var output models.Output
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Output{}), principal, scope.Outputs)
	if err := q.Where("output_id = ?", outputID).First(&output).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOutputNotFound
		}
		return err
	}
	return s.DB.WithContext(ctx).Delete(&output).Error
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
