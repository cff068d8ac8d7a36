package scope

import (
	"khet-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity names the scoped tables. Used by Apply to pick the ownership chain.
type Entity string

const (
	Farms         Entity = "farms"
	FarmAssets    Entity = "farm_assets"
	Fields        Entity = "fields"
	CropTypes     Entity = "crop_types"
	Crops         Entity = "crops"
	Expenses      Entity = "expenses"
	Outputs       Entity = "outputs"
	Ledgers       Entity = "ledgers"
	LedgerEntries Entity = "ledger_entries"
	Users         Entity = "users"
)

// All lists every scoped entity (permission bootstrap iterates this).
var All = []Entity{
	Farms, FarmAssets, Fields, CropTypes, Crops, Expenses, Outputs,
	Ledgers, LedgerEntries, Users,
}

// Apply narrows q to the rows principal may see, walking the ownership chain
// up to farm.owner_id. Superusers get the identity predicate; CropTypes are
// global reference data and are never narrowed. The whole predicate stays a
// single SQL statement (nested IN subqueries), so callers can stack further
// filters and aggregates on the result.
//
// Apply must be the first thing done to any list/get/aggregate query; the
// metrics layer assumes its input is already scoped.
func Apply(q *gorm.DB, principal *models.User, entity Entity) *gorm.DB {
	if principal != nil && principal.IsSuperuser {
		return q
	}
	if principal == nil {
		// No principal: match nothing. Defensive for handlers that skip auth.
		return q.Where("1 = 0")
	}
	switch entity {
	case Farms:
		return q.Where("owner_id = ?", principal.UserID)
	case FarmAssets, Fields, Ledgers:
		return q.Where("farm_id IN (?)", ownedFarms(q, principal))
	case Crops:
		return q.Where("field_id IN (?)", ownedFields(q, principal))
	case Expenses, Outputs:
		return q.Where("crop_id IN (?)", ownedCrops(q, principal))
	case LedgerEntries:
		return q.Where("ledger_id IN (?)", ownedLedgers(q, principal))
	case CropTypes:
		return q
	case Users:
		return q.Where("user_id = ?", principal.UserID)
	}
	return q.Where("1 = 0")
}

func newQuery(q *gorm.DB) *gorm.DB {
	return q.Session(&gorm.Session{NewDB: true})
}

func ownedFarms(q *gorm.DB, u *models.User) *gorm.DB {
	return newQuery(q).Model(&models.Farm{}).Select("farm_id").
		Where("owner_id = ?", u.UserID)
}

func ownedFields(q *gorm.DB, u *models.User) *gorm.DB {
	return newQuery(q).Model(&models.Field{}).Select("field_id").
		Where("farm_id IN (?)", ownedFarms(q, u))
}

func ownedCrops(q *gorm.DB, u *models.User) *gorm.DB {
	return newQuery(q).Model(&models.Crop{}).Select("crop_id").
		Where("field_id IN (?)", ownedFields(q, u))
}

func ownedLedgers(q *gorm.DB, u *models.User) *gorm.DB {
	return newQuery(q).Model(&models.Ledger{}).Select("ledger_id").
		Where("farm_id IN (?)", ownedFarms(q, u))
}

// Choice is one selectable value for a filter dropdown or a parent reference.
type Choice struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// FarmChoices returns the farms principal may attach records to.
func FarmChoices(db *gorm.DB, principal *models.User) ([]Choice, error) {
	var out []Choice
	q := Apply(db.Model(&models.Farm{}), principal, Farms)
	err := q.Select("farm_id AS id, name").Order("name").Scan(&out).Error
	return out, err
}

// FieldChoices returns the fields principal may attach records to.
func FieldChoices(db *gorm.DB, principal *models.User) ([]Choice, error) {
	var out []Choice
	q := Apply(db.Model(&models.Field{}), principal, Fields)
	err := q.Select("field_id AS id, name").Order("name").Scan(&out).Error
	return out, err
}

// CropChoices returns the crops principal may attach records to. Breed stands
// in for a display name.
func CropChoices(db *gorm.DB, principal *models.User) ([]Choice, error) {
	var out []Choice
	q := Apply(db.Model(&models.Crop{}), principal, Crops)
	err := q.Select("crop_id AS id, breed AS name").Order("breed").Scan(&out).Error
	return out, err
}

// LedgerChoices returns the ledgers principal may attach entries to.
func LedgerChoices(db *gorm.DB, principal *models.User) ([]Choice, error) {
	var out []Choice
	q := Apply(db.Model(&models.Ledger{}), principal, Ledgers)
	err := q.Select("ledger_id AS id, name").Order("name").Scan(&out).Error
	return out, err
}

// CropTypeChoices returns the global crop type catalog, display name resolved
// to the principal's language.
func CropTypeChoices(db *gorm.DB, principal *models.User) ([]Choice, error) {
	var types []models.CropType
	if err := db.Order("name_en").Find(&types).Error; err != nil {
		return nil, err
	}
	lang := models.LanguageEnglish
	if principal != nil {
		lang = principal.Language
	}
	out := make([]Choice, 0, len(types))
	for i := range types {
		out = append(out, Choice{ID: types[i].CropTypeID, Name: types[i].DisplayName(lang)})
	}
	return out, nil
}
