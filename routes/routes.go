package routes

import (
	"fmt"
	"net/http"

	"ClinicDesk/cache"
	"ClinicDesk/config"
	"ClinicDesk/controllers"
	"ClinicDesk/handlers"
	"ClinicDesk/middlewares"
	"ClinicDesk/repositories"
	"ClinicDesk/services"
	"ClinicDesk/store"
	"ClinicDesk/utils"
	"ClinicDesk/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies are the long lived components the router is built from.
// Cache, Hub and Mailer are optional.
type Dependencies struct {
	Config *config.AppConfig
	Driver store.Driver
	Cache  *cache.Cache
	Hub    *ws.Hub
	Mailer utils.Mailer
	Log    zerolog.Logger
}

// SetupRoutes initializes the services, handlers and middleware of the API.
func SetupRoutes(deps Dependencies) (http.Handler, error) {
	cfg := deps.Config
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	sealer, err := utils.NewSessionSealer(cfg.SymmetricKey)
	if err != nil {
		return nil, err
	}

	var notifier services.Notifier
	if deps.Hub != nil {
		notifier = deps.Hub
	}

	log := deps.Log
	driver := deps.Driver

	visits := services.NewVisitService(repositories.NewVisitRepository(driver), notifier, log)
	patients := services.NewPatientService(repositories.NewPatientRepository(driver), visits, notifier, log)
	casesheets := services.NewCasesheetService(repositories.NewCasesheetRepository(driver), notifier, log)
	treatments := services.NewTreatmentService(repositories.NewTreatmentRepository(driver), notifier, log)
	billings := services.NewBillingService(repositories.NewBillingRepository(driver), notifier, log)
	invoices := services.NewInvoiceService(repositories.NewInvoiceRepository(driver), notifier, log)
	payments := services.NewPaymentService(repositories.NewPaymentRepository(driver), invoices, notifier, log)
	media, err := services.NewMediaService(repositories.NewMediaRepository(driver), cfg.UploadsDir, cfg.MaxUploadBytes, notifier, log)
	if err != nil {
		return nil, err
	}

	var resets *utils.ResetCodes
	if deps.Cache != nil {
		resets = utils.NewResetCodes(deps.Cache)
	}
	userService := services.NewUserService(
		repositories.NewUserRepository(driver),
		repositories.NewSessionRepository(driver, cfg.SessionTTL),
		resets,
		deps.Mailer,
		log,
	)
	secure := !cfg.IsDev()

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(middlewares.RecoveryMiddleware(log))
	router.Use(middlewares.LoggingMiddleware(log))
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.CORSOrigins)))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	router.Use(middlewares.SessionAuthMiddleware(userService, sealer, secure, log))

	controllers.SetupRootRoute(router)

	authController := controllers.NewAuthController(handlers.NewAuthHandler(userService, sealer, secure, log))
	authController.RegisterRoutes(router)

	api := handlers.NewPatientHandler(patients, casesheets, treatments)
	apiHandlers := controllers.APIHandlers{
		Patients:   api,
		Visits:     handlers.NewVisitHandler(visits),
		Casesheets: handlers.NewCasesheetHandler(casesheets, treatments),
		Treatments: handlers.NewTreatmentHandler(treatments),
		Billings:   handlers.NewBillingHandler(billings),
		Invoices:   handlers.NewInvoiceHandler(invoices),
		Payments:   handlers.NewPaymentHandler(payments),
		Media:      handlers.NewMediaHandler(media),
	}
	if deps.Hub != nil {
		apiHandlers.Events = ws.ServeWS(deps.Hub, cfg.CORSOrigins)
	}
	controllers.SetupAPIRoutes(router.Group("/api"), apiHandlers)

	log.Debug().
		Str("driver", fmt.Sprintf("%T", driver)).
		Bool("reset_codes", userService.ResetEnabled()).
		Bool("websocket", deps.Hub != nil).
		Msg("routes registered")
	return router, nil
}
