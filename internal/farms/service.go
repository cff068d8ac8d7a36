package farms

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
	ErrFarmNotFound   = errors.New("Farm not found")
	ErrAssetNotFound  = errors.New("Farm asset not found")
	ErrNameRequired   = errors.New("Farm name is required")
	ErrOwnerRequired  = errors.New("Farm owner is required")
	ErrScopeViolation = errors.New("Invalid farm reference")
	ErrHasDependents  = errors.New("Farm has dependent records and cannot be deleted")
)

type Service struct {
	DB *gorm.DB
}

type CreateFarmInput struct {
	Name    string     `json:"name"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

// CreateFarm creates a farm. Restricted principals always own what they
// create; only superusers may assign another owner.
func (s *Service) CreateFarm(ctx context.Context, principal *models.User, in CreateFarmInput) (*models.Farm, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	ownerID := principal.UserID
	if principal.IsSuperuser && in.OwnerID != nil {
		ownerID = *in.OwnerID
	}
	if ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	farm := &models.Farm{Name: in.Name, OwnerID: ownerID}
	if err := s.DB.WithContext(ctx).Create(farm).Error; err != nil {
		return nil, fmt.Errorf("Failed to create farm: %v", err)
	}
	return farm, nil
}

func (s *Service) ListFarms(ctx context.Context, principal *models.User) ([]models.Farm, error) {
	var farms []models.Farm
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Farm{}), principal, scope.Farms)
	if err := q.Order("name").Find(&farms).Error; err != nil {
		return nil, err
	}
	return farms, nil
}

func (s *Service) GetFarm(ctx context.Context, principal *models.User, farmID uuid.UUID) (*models.Farm, error) {
	var farm models.Farm
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.Farm{}), principal, scope.Farms)
	if err := q.Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrFarmNotFound
		}
		return nil, err
	}
	return &farm, nil
}

type UpdateFarmInput struct {
	Name string `json:"name"`
}

func (s *Service) UpdateFarm(ctx context.Context, principal *models.User, farmID uuid.UUID, in UpdateFarmInput) (*models.Farm, error) {
	farm, err := s.GetFarm(ctx, principal, farmID)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	farm.Name = in.Name
	if err := s.DB.WithContext(ctx).Save(farm).Error; err != nil {
		return nil, err
	}
	return farm, nil
}

// DeleteFarm refuses to delete a farm with fields, ledgers or assets.
// Referential protection: block, never cascade.
func (s *Service) DeleteFarm(ctx context.Context, principal *models.User, farmID uuid.UUID) error {
	farm, err := s.GetFarm(ctx, principal, farmID)
	if err != nil {
		return err
	}
	db := s.DB.WithContext(ctx)
	var dependents int64
	for _, m := range []interface{}{&models.Field{}, &models.Ledger{}, &models.FarmAsset{}} {
		var n int64
		if err := db.Model(m).Where("farm_id = ?", farm.FarmID).Count(&n).Error; err != nil {
			return err
		}
		dependents += n
	}
	if dependents > 0 {
		return ErrHasDependents
	}
	return db.Delete(farm).Error
}

// Choices returns the farms the principal may reference, for dropdowns and
// write-time parent validation.
func (s *Service) Choices(ctx context.Context, principal *models.User) ([]scope.Choice, error) {
	return scope.FarmChoices(s.DB.WithContext(ctx), principal)
}

type CreateAssetInput struct {
	FarmID        uuid.UUID      `json:"farm_id"`
	Name          string         `json:"name"`
	DatePurchased datatypes.Date `json:"date_purchased"`
	IsBoughtNew   bool           `json:"is_bought_new"`
	PurchaseCost  float64        `json:"purchase_cost"`
}

// CreateAsset attaches an asset to a farm. The farm is resolved through the
// scoped query so a restricted principal cannot attach to a farm they do not
// own.
func (s *Service) CreateAsset(ctx context.Context, principal *models.User, in CreateAssetInput) (*models.FarmAsset, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.GetFarm(ctx, principal, in.FarmID); err != nil {
		if err == ErrFarmNotFound {
			return nil, ErrScopeViolation
		}
		return nil, err
	}
	asset := &models.FarmAsset{
		FarmID:        in.FarmID,
		Name:          in.Name,
		DatePurchased: in.DatePurchased,
		IsBoughtNew:   in.IsBoughtNew,
		PurchaseCost:  in.PurchaseCost,
	}
	if err := s.DB.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, fmt.Errorf("Failed to create farm asset: %v", err)
	}
	return asset, nil
}

func (s *Service) ListAssets(ctx context.Context, principal *models.User, farmID *uuid.UUID) ([]models.FarmAsset, error) {
	var assets []models.FarmAsset
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.FarmAsset{}), principal, scope.FarmAssets)
	if farmID != nil {
		q = q.Where("farm_id = ?", *farmID)
	}
	if err := q.Order("date_purchased DESC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *Service) DeleteAsset(ctx context.Context, principal *models.User, assetID uuid.UUID) error {
	var asset models.FarmAsset
	q := scope.Apply(s.DB.WithContext(ctx).Model(&models.FarmAsset{}), principal, scope.FarmAssets)
	if err := q.Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrAssetNotFound
		}
		return err
	}
	return s.DB.WithContext(ctx).Delete(&asset).Error
}
