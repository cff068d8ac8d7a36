package app

import (
	"khet-backend/internal/auth"
	"khet-backend/internal/config"
	"khet-backend/internal/crops"
	"khet-backend/internal/database"
	"khet-backend/internal/expenses"
	"khet-backend/internal/farms"
	"khet-backend/internal/fields"
	"khet-backend/internal/health"
	"khet-backend/internal/ledgers"
	"khet-backend/internal/middleware"
	"khet-backend/internal/outputs"
	"khet-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// gormPinger adapts *gorm.DB to the health check's Ping interface.
type gormPinger struct{ db *gorm.DB }

func (p gormPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and routes.
// Returns the DB and Redis handles so main can verify connections at startup.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:       cfg.SessionSecret,
		RedisURL:     cfg.RedisURL,
		IsProduction: cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	healthHandlers := &health.Handlers{Rdb: rdb, HealthAdminKey: cfg.HealthAdminKey}
	if db != nil {
		healthHandlers.DB = gormPinger{db: db}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)
	app.Post("/health/reset", healthHandlers.Reset)

	// Auth routes stay public; everything else requires a session user.
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{UserFinder: userFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil {
		registerRoutes(app, db)
	}

	return app, db, rdb, nil
}

// registerRoutes mounts the session-protected feature modules.
func registerRoutes(app *fiber.App, db *gorm.DB) {
	userHandlers := &users.Handlers{Service: &users.Service{DB: db}}
	userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
	userGroup.Get("/view-user/:user_id", userHandlers.ViewUser)
	userGroup.Put("/update-user/:user_id", userHandlers.UpdateUser)
	userGroup.Get("/list", middleware.RequireSuperuser(), userHandlers.ListUsers)
	userGroup.Post("/create-user", middleware.RequireSuperuser(), userHandlers.CreateUser)
	userGroup.Delete("/remove-user/:user_id", middleware.RequireSuperuser(), userHandlers.RemoveUser)

	farmHandlers := &farms.Handlers{Service: &farms.Service{DB: db}}
	farmGroup := app.Group("/api/v1/farms", middleware.RequireAuth())
	farmGroup.Post("/create-farm", farmHandlers.CreateFarm)
	farmGroup.Get("/list", farmHandlers.ListFarms)
	farmGroup.Get("/get-farm/:farm_id", farmHandlers.GetFarm)
	farmGroup.Put("/update-farm/:farm_id", farmHandlers.UpdateFarm)
	farmGroup.Delete("/delete-farm/:farm_id", farmHandlers.DeleteFarm)
	farmGroup.Get("/choices", farmHandlers.Choices)
	farmGroup.Post("/create-asset", farmHandlers.CreateAsset)
	farmGroup.Get("/list-assets", farmHandlers.ListAssets)
	farmGroup.Delete("/delete-asset/:asset_id", farmHandlers.DeleteAsset)

	fieldHandlers := &fields.Handlers{Service: &fields.Service{DB: db}}
	fieldGroup := app.Group("/api/v1/fields", middleware.RequireAuth())
	fieldGroup.Post("/create-field", fieldHandlers.CreateField)
	fieldGroup.Get("/list", fieldHandlers.ListFields)
	fieldGroup.Get("/get-field/:field_id", fieldHandlers.GetField)
	fieldGroup.Put("/update-field/:field_id", fieldHandlers.UpdateField)
	fieldGroup.Delete("/delete-field/:field_id", fieldHandlers.DeleteField)
	fieldGroup.Get("/choices", fieldHandlers.Choices)

	cropHandlers := &crops.Handlers{Service: &crops.Service{DB: db}}
	cropGroup := app.Group("/api/v1/crops", middleware.RequireAuth())
	cropGroup.Post("/create-crop", cropHandlers.CreateCrop)
	cropGroup.Get("/list", cropHandlers.ListCrops)
	cropGroup.Get("/get-crop/:crop_id", cropHandlers.GetCrop)
	cropGroup.Put("/update-crop/:crop_id", cropHandlers.UpdateCrop)
	cropGroup.Delete("/delete-crop/:crop_id", cropHandlers.DeleteCrop)
	cropGroup.Get("/choices", cropHandlers.Choices)

	// Crop type catalog is global: reads are open to any session user,
	// writes are superuser only.
	typeGroup := app.Group("/api/v1/crop-types", middleware.RequireAuth())
	typeGroup.Get("/list", cropHandlers.ListCropTypes)
	typeGroup.Get("/choices", cropHandlers.TypeChoices)
	typeGroup.Post("/create-crop-type", middleware.RequireSuperuser(), cropHandlers.CreateCropType)
	typeGroup.Put("/update-crop-type/:crop_type_id", middleware.RequireSuperuser(), cropHandlers.UpdateCropType)
	typeGroup.Delete("/delete-crop-type/:crop_type_id", middleware.RequireSuperuser(), cropHandlers.DeleteCropType)

	expenseHandlers := &expenses.Handlers{Service: &expenses.Service{DB: db}}
	expenseGroup := app.Group("/api/v1/expenses", middleware.RequireAuth())
	expenseGroup.Post("/create-expense", expenseHandlers.CreateExpense)
	expenseGroup.Get("/list", expenseHandlers.ListExpenses)
	expenseGroup.Put("/update-expense/:expense_id", expenseHandlers.UpdateExpense)
	expenseGroup.Delete("/delete-expense/:expense_id", expenseHandlers.DeleteExpense)

	outputHandlers := &outputs.Handlers{Service: &outputs.Service{DB: db}}
	outputGroup := app.Group("/api/v1/outputs", middleware.RequireAuth())
	outputGroup.Post("/create-output", outputHandlers.CreateOutput)
	outputGroup.Get("/list", outputHandlers.ListOutputs)
	outputGroup.Delete("/delete-output/:output_id", outputHandlers.DeleteOutput)

	ledgerHandlers := &ledgers.Handlers{Service: &ledgers.Service{DB: db}}
	ledgerGroup := app.Group("/api/v1/ledgers", middleware.RequireAuth())
	ledgerGroup.Post("/create-ledger", ledgerHandlers.CreateLedger)
	ledgerGroup.Get("/list", ledgerHandlers.ListLedgers)
	ledgerGroup.Get("/get-ledger/:ledger_id", ledgerHandlers.GetLedger)
	ledgerGroup.Put("/update-ledger/:ledger_id", ledgerHandlers.UpdateLedger)
	ledgerGroup.Delete("/delete-ledger/:ledger_id", ledgerHandlers.DeleteLedger)
	ledgerGroup.Get("/choices", ledgerHandlers.Choices)

	entryGroup := app.Group("/api/v1/ledger-entries", middleware.RequireAuth())
	entryGroup.Post("/create-entry", ledgerHandlers.CreateEntry)
	entryGroup.Get("/list", ledgerHandlers.ListEntries)
	entryGroup.Delete("/delete-entry/:entry_id", ledgerHandlers.DeleteEntry)
}
