package crops

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"khet-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupCropsTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Farm{}, &models.Field{}, &models.CropType{},
		&models.Crop{}, &models.Expense{}, &models.Output{},
	))
	return &Handlers{Service: &Service{DB: db}}, db
}

type cropFixture struct {
	owner    *models.User
	field    *models.Field
	cropType *models.CropType
}

func seedCropFixture(t *testing.T, db *gorm.DB, username string) cropFixture {
	u := &models.User{Username: username, Fullname: username, Email: username + "@test.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	farm := &models.Farm{Name: username + " farm", OwnerID: u.UserID}
	require.NoError(t, db.Create(farm).Error)
	field := &models.Field{FarmID: farm.FarmID, Name: username + " plot", IsOwnProperty: true, TotalAcres: 10, IsActive: true}
	require.NoError(t, db.Create(field).Error)
	ct := &models.CropType{NameEn: "Wheat " + username, NameUr: "گندم"}
	require.NoError(t, db.Create(ct).Error)
	return cropFixture{owner: u, field: field, cropType: ct}
}

func seedCrop(t *testing.T, db *gorm.DB, fx cropFixture, breed string) *models.Crop {
	crop := &models.Crop{
		FieldID:    fx.field.FieldID,
		CropTypeID: fx.cropType.CropTypeID,
		Season:     models.SeasonWinter,
		Breed:      breed,
		TotalAcres: 10,
		DateSowing: datatypes.Date(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, db.Create(crop).Error)
	return crop
}

func sessionStub(u *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":      u.UserID.String(),
			"username":     u.Username,
			"is_superuser": u.IsSuperuser,
			"language":     u.Language,
		})
		return c.Next()
	}
}

func TestCreateCrop_InvalidSeason(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")

	app := fiber.New()
	app.Use(sessionStub(fx.owner))
	app.Post("/create-crop", h.CreateCrop)

	body, _ := json.Marshal(map[string]interface{}{
		"field_id":     fx.field.FieldID.String(),
		"crop_type_id": fx.cropType.CropTypeID.String(),
		"season":       "monsoon",
		"breed":        "Basmati",
		"total_acres":  5,
		"date_sowing":  "2025-06-01",
	})
	req := httptest.NewRequest("POST", "/create-crop", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateCrop_ForeignFieldRejected(t *testing.T) {
	h, db := setupCropsTest(t)
	alice := seedCropFixture(t, db, "alice")
	bob := seedCropFixture(t, db, "bob")

	app := fiber.New()
	app.Use(sessionStub(alice.owner))
	app.Post("/create-crop", h.CreateCrop)

	body, _ := json.Marshal(map[string]interface{}{
		"field_id":     bob.field.FieldID.String(),
		"crop_type_id": alice.cropType.CropTypeID.String(),
		"season":       models.SeasonWinter,
		"breed":        "Faisalabad-08",
		"total_acres":  5,
		"date_sowing":  "2025-11-01",
	})
	req := httptest.NewRequest("POST", "/create-crop", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	errObj := result["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.Equal(t, "field_id", details["field"])
}

func TestListCrops_MetricsAndDeepLinks(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")
	crop := seedCrop(t, db, fx, "Faisalabad-08")

	expDate := datatypes.Date(time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.Create(&models.Expense{CropID: crop.CropID, ExpenseType: models.ExpenseSeed, ExpenseDate: expDate, Amount: 100, SpentByID: fx.owner.UserID, AddedByID: fx.owner.UserID}).Error)
	require.NoError(t, db.Create(&models.Expense{CropID: crop.CropID, ExpenseType: models.ExpenseLabour, ExpenseDate: expDate, Amount: 50, SpentByID: fx.owner.UserID, AddedByID: fx.owner.UserID}).Error)
	require.NoError(t, db.Create(&models.Output{CropID: crop.CropID, TotalMann: 2, RatePerMann: 80, SoldDate: expDate}).Error)

	app := fiber.New()
	app.Use(sessionStub(fx.owner))
	app.Get("/list", h.ListCrops)

	req := httptest.NewRequest("GET", "/list", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	rows := result["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, 150.0, row["total_expense"])
	assert.Equal(t, 160.0, row["total_output"])
	assert.Equal(t, 10.0, row["net_profit"])
	assert.Equal(t, "positive", row["profit_tag"])
	assert.Equal(t, "Wheat alice", row["crop_type_name"])
	assert.Equal(t, "/api/v1/expenses/list?crop_id="+crop.CropID.String(), row["expenses_url"])
	assert.Equal(t, "/api/v1/outputs/list?crop_id="+crop.CropID.String(), row["outputs_url"])
}

func TestListCrops_BalanceFilter(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")
	winner := seedCrop(t, db, fx, "Winner")
	loser := seedCrop(t, db, fx, "Loser")

	d := datatypes.Date(time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.Create(&models.Expense{CropID: winner.CropID, ExpenseType: models.ExpenseSeed, ExpenseDate: d, Amount: 100, SpentByID: fx.owner.UserID, AddedByID: fx.owner.UserID}).Error)
	require.NoError(t, db.Create(&models.Output{CropID: winner.CropID, TotalMann: 2, RatePerMann: 80, SoldDate: d}).Error)
	require.NoError(t, db.Create(&models.Expense{CropID: loser.CropID, ExpenseType: models.ExpenseSeed, ExpenseDate: d, Amount: 500, SpentByID: fx.owner.UserID, AddedByID: fx.owner.UserID}).Error)

	app := fiber.New()
	app.Use(sessionStub(fx.owner))
	app.Get("/list", h.ListCrops)

	req := httptest.NewRequest("GET", "/list?balance=profitable", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	rows := result["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Winner", rows[0].(map[string]interface{})["breed"])

	req = httptest.NewRequest("GET", "/list?balance=bogus", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListCrops_ScopedToOwner(t *testing.T) {
	h, db := setupCropsTest(t)
	alice := seedCropFixture(t, db, "alice")
	bob := seedCropFixture(t, db, "bob")
	seedCrop(t, db, alice, "Alice Breed")
	seedCrop(t, db, bob, "Bob Breed")

	app := fiber.New()
	app.Use(sessionStub(alice.owner))
	app.Get("/list", h.ListCrops)

	req := httptest.NewRequest("GET", "/list", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	rows := result["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice Breed", rows[0].(map[string]interface{})["breed"])
}

func TestGetCrop_WithMetrics(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")
	crop := seedCrop(t, db, fx, "Faisalabad-08")

	app := fiber.New()
	app.Use(sessionStub(fx.owner))
	app.Get("/get-crop/:crop_id", h.GetCrop)

	req := httptest.NewRequest("GET", "/get-crop/"+crop.CropID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	row := result["data"].(map[string]interface{})
	assert.Equal(t, 0.0, row["total_expense"])
	assert.Equal(t, "positive", row["profit_tag"])
}

func TestDeleteCrop_BlockedByExpenses(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")
	crop := seedCrop(t, db, fx, "Faisalabad-08")
	d := datatypes.Date(time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, db.Create(&models.Expense{CropID: crop.CropID, ExpenseType: models.ExpenseSeed, ExpenseDate: d, Amount: 10, SpentByID: fx.owner.UserID, AddedByID: fx.owner.UserID}).Error)

	app := fiber.New()
	app.Use(sessionStub(fx.owner))
	app.Delete("/delete-crop/:crop_id", h.DeleteCrop)

	req := httptest.NewRequest("DELETE", "/delete-crop/"+crop.CropID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestListCropTypes_Localised(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")
	fx.owner.Language = models.LanguageUrdu

	app := fiber.New()
	app.Use(sessionStub(fx.owner))
	app.Get("/list", h.ListCropTypes)

	req := httptest.NewRequest("GET", "/list", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	rows := result["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "گندم", row["name"])
	assert.Equal(t, "Wheat alice", row["name_en"])
}

func TestDeleteCropType_BlockedWhenReferenced(t *testing.T) {
	h, db := setupCropsTest(t)
	fx := seedCropFixture(t, db, "alice")
	seedCrop(t, db, fx, "Faisalabad-08")

	app := fiber.New()
	app.Delete("/delete-crop-type/:crop_type_id", h.DeleteCropType)

	req := httptest.NewRequest("DELETE", "/delete-crop-type/"+fx.cropType.CropTypeID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
