package ledgers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"khet-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgersTest(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Farm{}, &models.Ledger{}, &models.LedgerEntry{},
	))
	return &Handlers{Service: &Service{DB: db}}, db
}

func seedOwnerWithFarm(t *testing.T, db *gorm.DB, username string) (*models.User, *models.Farm) {
	u := &models.User{Username: username, Fullname: username, Email: username + "@test.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	farm := &models.Farm{Name: username + " farm", OwnerID: u.UserID}
	require.NoError(t, db.Create(farm).Error)
	return u, farm
}

func seedLedger(t *testing.T, db *gorm.DB, farmID uuid.UUID, name string) *models.Ledger {
	ledger := &models.Ledger{FarmID: farmID, Name: name, IsActive: true}
	require.NoError(t, db.Create(ledger).Error)
	return ledger
}

func postEntry(t *testing.T, db *gorm.DB, ledgerID uuid.UUID, entryType string, amount float64) *models.LedgerEntry {
	entry := &models.LedgerEntry{
		LedgerID:        ledgerID,
		EntryType:       entryType,
		Amount:          amount,
		TransactionDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
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

func TestCreateLedger_OnOwnFarm(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Post("/create-ledger", h.CreateLedger)

	body, _ := json.Marshal(map[string]interface{}{
		"farm_id":        farm.FarmID.String(),
		"name":           "Tractor mechanic",
		"contact_number": "+923001234567",
		"location":       "Okara",
	})
	req := httptest.NewRequest("POST", "/create-ledger", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var ledger models.Ledger
	require.NoError(t, db.First(&ledger).Error)
	assert.Equal(t, "Tractor mechanic", ledger.Name)
	assert.True(t, ledger.IsActive)
}

func TestCreateLedger_ForeignFarmRejected(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, _ := seedOwnerWithFarm(t, db, "alice")
	_, bobFarm := seedOwnerWithFarm(t, db, "bob")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Post("/create-ledger", h.CreateLedger)

	body, _ := json.Marshal(map[string]interface{}{
		"farm_id": bobFarm.FarmID.String(),
		"name":    "Sneaky account",
	})
	req := httptest.NewRequest("POST", "/create-ledger", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var n int64
	require.NoError(t, db.Model(&models.Ledger{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateLedger_BadContactNumber(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Post("/create-ledger", h.CreateLedger)

	body, _ := json.Marshal(map[string]interface{}{
		"farm_id":        farm.FarmID.String(),
		"name":           "Seed dealer",
		"contact_number": "call me maybe",
	})
	req := httptest.NewRequest("POST", "/create-ledger", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListLedgers_MetricsAndDeepLinks(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")
	ledger := seedLedger(t, db, farm.FarmID, "Harvest crew")
	postEntry(t, db, ledger.LedgerID, models.EntryDebit, 700)
	postEntry(t, db, ledger.LedgerID, models.EntryCredit, 300)

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Get("/list", h.ListLedgers)

	resp, err := app.Test(httptest.NewRequest("GET", "/list", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	items := result["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, float64(700), item["total_debit"])
	assert.Equal(t, float64(300), item["total_credit"])
	assert.Equal(t, float64(-400), item["net_balance"])
	assert.Equal(t, "negative", item["balance_tag"])
	wantDebit := fmt.Sprintf("/api/v1/ledger-entries/list?ledger_id=%s&entry_type=debit", ledger.LedgerID)
	wantCredit := fmt.Sprintf("/api/v1/ledger-entries/list?ledger_id=%s&entry_type=credit", ledger.LedgerID)
	assert.Equal(t, wantDebit, item["debit_entries_url"])
	assert.Equal(t, wantCredit, item["credit_entries_url"])
}

func TestListLedgers_BalanceFilter(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")
	debtor := seedLedger(t, db, farm.FarmID, "Debtor")
	postEntry(t, db, debtor.LedgerID, models.EntryDebit, 500)
	creditor := seedLedger(t, db, farm.FarmID, "Creditor")
	postEntry(t, db, creditor.LedgerID, models.EntryCredit, 500)
	settled := seedLedger(t, db, farm.FarmID, "Settled")
	postEntry(t, db, settled.LedgerID, models.EntryDebit, 100)
	postEntry(t, db, settled.LedgerID, models.EntryCredit, 100)

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Get("/list", h.ListLedgers)

	cases := []struct {
		kind string
		want string
	}{
		{"debt", "Debtor"},
		{"credit", "Creditor"},
		{"balanced", "Settled"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/list?balance="+tc.kind, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		items := result["data"].([]interface{})
		require.Len(t, items, 1, "balance=%s", tc.kind)
		assert.Equal(t, tc.want, items[0].(map[string]interface{})["name"])
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/list?balance=overdrawn", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetLedger_CrossTenantIsNotFound(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, _ := seedOwnerWithFarm(t, db, "alice")
	_, bobFarm := seedOwnerWithFarm(t, db, "bob")
	bobLedger := seedLedger(t, db, bobFarm.FarmID, "Bob account")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Get("/get-ledger/:ledger_id", h.GetLedger)

	resp, err := app.Test(httptest.NewRequest("GET", "/get-ledger/"+bobLedger.LedgerID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteLedger_BlockedByEntries(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")
	ledger := seedLedger(t, db, farm.FarmID, "Busy account")
	postEntry(t, db, ledger.LedgerID, models.EntryDebit, 50)

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Delete("/delete-ledger/:ledger_id", h.DeleteLedger)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/delete-ledger/"+ledger.LedgerID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var n int64
	require.NoError(t, db.Model(&models.Ledger{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDeleteLedger_WithoutEntries(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")
	ledger := seedLedger(t, db, farm.FarmID, "Empty account")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Delete("/delete-ledger/:ledger_id", h.DeleteLedger)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/delete-ledger/"+ledger.LedgerID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var n int64
	require.NoError(t, db.Model(&models.Ledger{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateEntry_AmountBelowMinimum(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")
	ledger := seedLedger(t, db, farm.FarmID, "Harvest crew")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Post("/create-entry", h.CreateEntry)

	body, _ := json.Marshal(map[string]interface{}{
		"ledger_id":  ledger.LedgerID.String(),
		"entry_type": models.EntryDebit,
		"amount":     0.5,
	})
	req := httptest.NewRequest("POST", "/create-entry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateEntry_ForeignLedgerRejected(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, _ := seedOwnerWithFarm(t, db, "alice")
	_, bobFarm := seedOwnerWithFarm(t, db, "bob")
	bobLedger := seedLedger(t, db, bobFarm.FarmID, "Bob account")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Post("/create-entry", h.CreateEntry)

	body, _ := json.Marshal(map[string]interface{}{
		"ledger_id":  bobLedger.LedgerID.String(),
		"entry_type": models.EntryCredit,
		"amount":     100,
	})
	req := httptest.NewRequest("POST", "/create-entry", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	details := result["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "ledger_id", details["field"])
}

func TestListEntries_DeepLinkFilter(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, farm := seedOwnerWithFarm(t, db, "alice")
	ledger := seedLedger(t, db, farm.FarmID, "Harvest crew")
	other := seedLedger(t, db, farm.FarmID, "Seed dealer")
	postEntry(t, db, ledger.LedgerID, models.EntryDebit, 700)
	postEntry(t, db, ledger.LedgerID, models.EntryCredit, 300)
	postEntry(t, db, other.LedgerID, models.EntryDebit, 999)

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Get("/list", h.ListEntries)

	url := fmt.Sprintf("/list?ledger_id=%s&entry_type=debit", ledger.LedgerID)
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	items := result["data"].([]interface{})
	require.Len(t, items, 1)
	entry := items[0].(map[string]interface{})
	assert.Equal(t, models.EntryDebit, entry["entry_type"])
	assert.Equal(t, float64(700), entry["amount"])
}

func TestListEntries_BadEntryType(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, _ := seedOwnerWithFarm(t, db, "alice")

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Get("/list", h.ListEntries)

	resp, err := app.Test(httptest.NewRequest("GET", "/list?entry_type=overdraft", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteEntry_CrossTenantIsNotFound(t *testing.T) {
	h, db := setupLedgersTest(t)
	alice, _ := seedOwnerWithFarm(t, db, "alice")
	_, bobFarm := seedOwnerWithFarm(t, db, "bob")
	bobLedger := seedLedger(t, db, bobFarm.FarmID, "Bob account")
	entry := postEntry(t, db, bobLedger.LedgerID, models.EntryDebit, 200)

	app := fiber.New()
	app.Use(sessionStub(alice))
	app.Delete("/delete-entry/:entry_id", h.DeleteEntry)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/delete-entry/"+entry.EntryID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var n int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
