package fields

import (
	"context"
	"errors"
	"fmt"

	"khet-backend/internal/models"
	"khet-backend/internal/pkg/validation"
	"khet-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrFieldNotFound   = errors.New("Field not found")
	ErrNameRequired    = errors.New("Field name is required")
	ErrAcresInvalid    = errors.New("Total acres must be greater than zero")
	ErrLandlordInvalid = errors.New("Invalid landlord contact number")
	ErrScopeViolation  = errors.New("Invalid farm reference")
	ErrHasDependents   = errors.New("Field has dependent crops and cannot be deleted")
)

type Service struct {
	DB *gorm.DB
}

type FieldInput struct {
	FarmID                 uuid.UUID       `json:"farm_id"`
	Name                   string          `json:"name"`
	Location               string          `json:"location"`
	IsOwnProperty          bool            `json:"is_own_property"`
	HasElectricityTubewell bool            `json:"has_electricity_tubewell"`
	HasCanalIrrigation     bool            `json:"has_canal_irrigation"`
	TotalAcres             float64         `json:"total_acres"`
	LandlordName           string          `json:"landlord_name"`
	LandlordNumber         string          `json:"landlord_number"`
	LeasePerAcre           *float64        `json:"lease_per_acre"`
	LeaseStart             *datatypes.Date `json:"lease_start"`
	LeaseEnd               *datatypes.Date `json:"lease_end"`
	IsActive               *bool           `json:"is_active"`
}

func (in *FieldInput) validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.TotalAcres <= 0 {
		return ErrAcresInvalid
	}
	if !validation.IsValidContactNumber(in.LandlordNumber) {
		return ErrLandlordInvalid
	}
	return nil
}

// CreateField attaches a field to a farm. The farm is resolved through the
// scoped query so a restricted principal cannot reference a farm they do not
// own.
func (s *Service) CreateField(ctx context.Context, principal *models.User, in FieldInput) (*models.Field, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkFarm(ctx, principal, in.FarmID); err != nil {
		return nil, err
	}
	field := &models.Field{
		FarmID:                 in.FarmID,
		Name:                   in.Name,
		Location:               in.Location,
		IsOwnProperty:          in.IsOwnProperty,
		HasElectricityTubewell: in.HasElectricityTubewell,
		HasCanalIrrigation:     in.HasCanalIrrigation,
		TotalAcres:             in.TotalAcres,
		LandlordName:           in.LandlordName,
		LandlordNumber:         in.LandlordNumber,
		LeasePerAcre:           in.LeasePerAcre,
		LeaseStart:             in.LeaseStart,
		LeaseEnd:               in.LeaseEnd,
		IsActive:               true,
	}
	if in.IsActive != nil {
		field.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Create(field).Error; err != nil {
		return nil, fmt.Errorf("Failed to create field: %v", err)
	}
	return field, nil
}

type ListFilter struct {
	FarmID   *uuid.UUID
	IsActive *bool
}

func (s *Service) ListFields(ctx context.Context, principal *models.User, f ListFilter) ([]models.Field, error) {
	var fields []models.Field
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Field{}), principal, scope.Fields)
	if f.FarmID != nil {
		q = q.Where("farm_id = ?", *f.FarmID)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if err := q.Order("name").Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *Service) GetField(ctx context.Context, principal *models.User, fieldID uuid.UUID) (*models.Field, error) {
	var field models.Field
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Field{}), principal, scope.Fields)
	if err := q.Where("field_id = ?", fieldID).First(&field).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	return &field, nil
}

func (s *Service) UpdateField(ctx context.Context, principal *models.User, fieldID uuid.UUID, in FieldInput) (*models.Field, error) {
	field, err := s.GetField(ctx, principal, fieldID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	// Moving the field to another farm still has to pass the scope check.
	if in.FarmID != uuid.Nil && in.FarmID != field.FarmID {
		if err := s.checkFarm(ctx, principal, in.FarmID); err != nil {
			return nil, err
		}
		field.FarmID = in.FarmID
	}
	field.Name = in.Name
	field.Location = in.Location
	field.IsOwnProperty = in.IsOwnProperty
	field.HasElectricityTubewell = in.HasElectricityTubewell
	field.HasCanalIrrigation = in.HasCanalIrrigation
	field.TotalAcres = in.TotalAcres
	field.LandlordName = in.LandlordName
	field.LandlordNumber = in.LandlordNumber
	field.LeasePerAcre = in.LeasePerAcre
	field.LeaseStart = in.LeaseStart
	field.LeaseEnd = in.LeaseEnd
	if in.IsActive != nil {
		field.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Save(field).Error; err != nil {
		return nil, err
	}
	return field, nil
}

// DeleteField refuses to delete a field with crops on it.
func (s *Service) DeleteField(ctx context.Context, principal *models.User, fieldID uuid.UUID) error {
	field, err := s.GetField(ctx, principal, fieldID)
	if err != nil {
		return err
	}
	var crops int64
	if err := s.DB.WithContext(ctx).Model(&models.Crop{}).Where("field_id = ?", field.FieldID).Count(&crops).Error; err != nil {
		return err
	}
	if crops > 0 {
		return ErrHasDependents
	}
	return s.DB.WithContext(ctx).Delete(field).Error
}

// Choices returns the fields the principal may reference.
func (s *Service) Choices(ctx context.Context, principal *models.User) ([]scope.Choice, error) {
	return scope.FieldChoices(s.DB.WithContext(ctx), principal)
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
