package crops

import (
	"context"
	"errors"
	"fmt"

	"khet-backend/internal/metrics"
	"khet-backend/internal/models"
	"khet-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrCropNotFound      = errors.New("Crop not found")
	ErrCropTypeNotFound  = errors.New("Crop type not found")
	ErrCropTypeNameEmpty = errors.New("Crop type name is required")
	ErrBreedRequired     = errors.New("Crop breed is required")
	ErrSeasonInvalid     = errors.New("Invalid season")
	ErrAcresInvalid      = errors.New("Total acres must be greater than zero")
	ErrScopeViolation    = errors.New("Invalid field reference")
	ErrInvalidFilter     = errors.New("Invalid balance filter")
	ErrHasDependents     = errors.New("Crop has dependent records and cannot be deleted")
	ErrTypeHasDependents = errors.New("Crop type is referenced by crops and cannot be deleted")
)

type Service struct {
	DB *gorm.DB
}

// CropTypeView is a catalog row with the display strings resolved to the
// requesting user's language. Raw fields ride along for editing.
type CropTypeView struct {
	CropTypeID  uuid.UUID `json:"crop_type_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	NameEn      string    `json:"name_en"`
	NameUr      string    `json:"name_ur"`
}

// ListCropTypes returns the global catalog, localised. CropType carries no
// owner; everyone sees the full set.
func (s *Service) ListCropTypes(ctx context.Context, principal *models.User) ([]CropTypeView, error) {
	var types []models.CropType
	if err := s.DB.WithContext(ctx).Order("name_en").Find(&types).Error; err != nil {
		return nil, err
	}
	lang := models.LanguageEnglish
	if principal != nil {
		lang = principal.Language
	}
	out := make([]CropTypeView, 0, len(types))
	for i := range types {
		ct := &types[i]
		out = append(out, CropTypeView{
			CropTypeID:  ct.CropTypeID,
			Name:        ct.DisplayName(lang),
			Description: ct.DisplayDescription(lang),
			NameEn:      ct.NameEn,
			NameUr:      ct.NameUr,
		})
	}
	return out, nil
}

type CropTypeInput struct {
	NameEn        string `json:"name_en"`
	NameUr        string `json:"name_ur"`
	DescriptionEn string `json:"description_en"`
	DescriptionUr string `json:"description_ur"`
}

func (s *Service) CreateCropType(ctx context.Context, in CropTypeInput) (*models.CropType, error) {
	if in.NameEn == "" {
		return nil, ErrCropTypeNameEmpty
	}
	ct := &models.CropType{
		NameEn:        in.NameEn,
		NameUr:        in.NameUr,
		DescriptionEn: in.DescriptionEn,
		DescriptionUr: in.DescriptionUr,
	}
	if err := s.DB.WithContext(ctx).Create(ct).Error; err != nil {
		return nil, fmt.Errorf("Failed to create crop type: %v", err)
	}
	return ct, nil
}

func (s *Service) UpdateCropType(ctx context.Context, cropTypeID uuid.UUID, in CropTypeInput) (*models.CropType, error) {
	var ct models.CropType
	if err := s.DB.WithContext(ctx).Where("crop_type_id = ?", cropTypeID).First(&ct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCropTypeNotFound
		}
		return nil, err
	}
	if in.NameEn == "" {
		return nil, ErrCropTypeNameEmpty
	}
	ct.NameEn = in.NameEn
	ct.NameUr = in.NameUr
	ct.DescriptionEn = in.DescriptionEn
	ct.DescriptionUr = in.DescriptionUr
	if err := s.DB.WithContext(ctx).Save(&ct).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (s *Service) DeleteCropType(ctx context.Context, cropTypeID uuid.UUID) error {
	var ct models.CropType
	if err := s.DB.WithContext(ctx).Where("crop_type_id = ?", cropTypeID).First(&ct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrCropTypeNotFound
		}
		return err
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Crop{}).Where("crop_type_id = ?", cropTypeID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrTypeHasDependents
	}
	return s.DB.WithContext(ctx).Delete(&ct).Error
}

type CropInput struct {
	FieldID        uuid.UUID       `json:"field_id"`
	CropTypeID     uuid.UUID       `json:"crop_type_id"`
	Season         string          `json:"season"`
	Breed          string          `json:"breed"`
	TotalAcres     float64         `json:"total_acres"`
	DateSowing     datatypes.Date  `json:"date_sowing"`
	DateHarvesting *datatypes.Date `json:"date_harvesting"`
}

func (in *CropInput) validate() error {
	if !models.ValidSeason(in.Season) {
		return ErrSeasonInvalid
	}
	if in.Breed == "" {
		return ErrBreedRequired
	}
	if in.TotalAcres <= 0 {
		return ErrAcresInvalid
	}
	return nil
}

// CreateCrop starts a crop cycle on a field. The field is resolved through
// the scoped query; the crop type only has to exist (global catalog).
func (s *Service) CreateCrop(ctx context.Context, principal *models.User, in CropInput) (*models.Crop, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkField(ctx, principal, in.FieldID); err != nil {
		return nil, err
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.CropType{}).Where("crop_type_id = ?", in.CropTypeID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrCropTypeNotFound
	}
	crop := &models.Crop{
		FieldID:        in.FieldID,
		CropTypeID:     in.CropTypeID,
		Season:         in.Season,
		Breed:          in.Breed,
		TotalAcres:     in.TotalAcres,
		DateSowing:     in.DateSowing,
		DateHarvesting: in.DateHarvesting,
	}
	if err := s.DB.WithContext(ctx).Create(crop).Error; err != nil {
		return nil, fmt.Errorf("Failed to create crop: %v", err)
	}
	return crop, nil
}

// ListFilter narrows the crop listing. Balance filters on the derived
// output-vs-expense figures; the rest are stored columns.
type ListFilter struct {
	Balance    string
	FieldID    *uuid.UUID
	CropTypeID *uuid.UUID
	Season     string
}

// ListCrops returns scoped crops with their financial rollups. Scope is
// applied before the balance filter so aggregates never leak across owners.
func (s *Service) ListCrops(ctx context.Context, principal *models.User, f ListFilter) ([]metrics.CropRow, error) {
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Crop{}), principal, scope.Crops)
	if f.FieldID != nil {
		q = q.Where("field_id = ?", *f.FieldID)
	}
	if f.CropTypeID != nil {
		q = q.Where("crop_type_id = ?", *f.CropTypeID)
	}
	if f.Season != "" {
		if !models.ValidSeason(f.Season) {
			return nil, ErrSeasonInvalid
		}
		q = q.Where("season = ?", f.Season)
	}
	if f.Balance != "" {
		var err error
		q, err = metrics.CropProfitFilter(q, f.Balance)
		if err != nil {
			return nil, ErrInvalidFilter
		}
	}
	return metrics.CropRows(q)
}

// GetCrop returns one scoped crop with metrics.
func (s *Service) GetCrop(ctx context.Context, principal *models.User, cropID uuid.UUID) (*metrics.CropRow, error) {
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Crop{}), principal, scope.Crops)
	row, err := metrics.CropRowByID(q, cropID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCropNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *Service) UpdateCrop(ctx context.Context, principal *models.User, cropID uuid.UUID, in CropInput) (*models.Crop, error) {
	var crop models.Crop
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Crop{}), principal, scope.Crops)
	if err := q.Where("crop_id = ?", cropID).First(&crop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCropNotFound
		}
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.FieldID != uuid.Nil && in.FieldID != crop.FieldID {
		if err := s.checkField(ctx, principal, in.FieldID); err != nil {
			return nil, err
		}
		crop.FieldID = in.FieldID
	}
	if in.CropTypeID != uuid.Nil {
		crop.CropTypeID = in.CropTypeID
	}
	crop.Season = in.Season
	crop.Breed = in.Breed
	crop.TotalAcres = in.TotalAcres
	crop.DateSowing = in.DateSowing
	crop.DateHarvesting = in.DateHarvesting
	if err := s.DB.WithContext(ctx).Save(&crop).Error; err != nil {
		return nil, err
	}
	return &crop, nil
}

// DeleteCrop refuses to delete a crop with expenses or outputs.
func (s *Service) DeleteCrop(ctx context.Context, principal *models.User, cropID uuid.UUID) error {
	var crop models.Crop
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Crop{}), principal, scope.Crops)
	if err := q.Where("crop_id = ?", cropID).First(&crop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrCropNotFound
		}
		return err
	}
	var dependents int64
	for _, m := range []interface{}{&models.Expense{}, &models.Output{}} {
		var n int64
		if err := s.DB.WithContext(ctx).Model(m).Where("crop_id = ?", cropID).Count(&n).Error; err != nil {
			return err
		}
		dependents += n
	}
	if dependents > 0 {
		return ErrHasDependents
	}
	return s.DB.WithContext(ctx).Delete(&crop).Error
}

// Choices returns the crops the principal may reference.
func (s *Service) Choices(ctx context.Context, principal *models.User) ([]scope.Choice, error) {
	return scope.CropChoices(s.DB.WithContext(ctx), principal)
}

// TypeChoices returns the crop type catalog localised for the principal.
func (s *Service) TypeChoices(ctx context.Context, principal *models.User) ([]scope.Choice, error) {
	return scope.CropTypeChoices(s.DB.WithContext(ctx), principal)
}

// CropTypeNames maps crop type id to the display name in the principal's
// language, for decorating listings.
func (s *Service) CropTypeNames(ctx context.Context, principal *models.User) (map[uuid.UUID]string, error) {
	choices, err := scope.CropTypeChoices(s.DB.WithContext(ctx), principal)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(choices))
	for _, ch := range choices {
		names[ch.ID] = ch.Name
	}
	return names, nil
}

func (s *Service) checkField(ctx context.Context, principal *models.User, fieldID uuid.UUID) error {
	var n int64
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Field{}), principal, scope.Fields)
	if err := q.Where("field_id = ?", fieldID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrScopeViolation
	}
	return nil
}
