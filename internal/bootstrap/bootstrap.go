package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/schooldesk/internal/app/controllers"
	appMigrations "github.com/yigit/schooldesk/internal/app/migrations"
	appRepos "github.com/yigit/schooldesk/internal/app/repositories"
	appRoutes "github.com/yigit/schooldesk/internal/app/routes"
	appServices "github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/config"
	"github.com/yigit/schooldesk/internal/db"
	appMiddleware "github.com/yigit/schooldesk/internal/middleware"
	pkgAuth "github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/document"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/filestorage"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
	"github.com/yigit/schooldesk/internal/pkg/validation"
	"github.com/yigit/schooldesk/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	EnquiryService      appServices.EnquiryService
	AdmissionService    appServices.AdmissionService
	DocumentService     appServices.DocumentService
	AuthService         *appServices.AuthService
	AuthController      *appControllers.AuthController
	EnquiryController   *appControllers.EnquiryController
	AdmissionController *appControllers.AdmissionController
	DocumentController  *appControllers.DocumentController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	DB                  *pgxpool.Pool
	JWTService          *pkgAuth.JWTService
	Metrics             *metrics.Metrics
	Logger              zerolog.Logger
	AttachmentStore     filestorage.AttachmentStore
	// LocalStorage is set when attachments are kept on disk and served under /uploads.
	LocalStorage *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return dbPool, nil
}

// NewAttachmentStore builds the attachment store selected by storage.driver.
func NewAttachmentStore(cfg *config.Config) (filestorage.AttachmentStore, *filestorage.LocalStorage, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case config.StorageDriverS3:
		s3cfg := cfg.Storage.S3
		store, err := filestorage.NewS3Storage(filestorage.S3Config{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			UseSSL:    s3cfg.UseSSL,
			PublicURL: s3cfg.PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		local, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.BaseURL())
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, DB: dbPool}

	validation.RegisterGinRules()

	deps.Repos = appRepos.NewRepositories(dbPool, cfg.School.EnquiryPrefix)
	deps.Metrics = metrics.New()

	var err error
	deps.AttachmentStore, deps.LocalStorage, err = NewAttachmentStore(cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize attachment storage")
		return nil, fmt.Errorf("failed to initialize attachment storage: %w", err)
	}
	lgr.Info().Str("driver", cfg.Storage.Driver).Msg("Attachment storage ready")

	transport := email.NewTransport(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.Component("email"))
	notifier := email.NewNotifier(transport, cfg.SMTP.AdminAddress, cfg.School.Name, logger.Component("notifier"))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.StaffRepository, deps.JWTService, lgr)
	deps.EnquiryService = appServices.NewEnquiryService(deps.Repos.EnquiryRepository, notifier, deps.Metrics,
		logger.Component("enquiries"))
	deps.AdmissionService = appServices.NewAdmissionService(
		deps.Repos.EnquiryRepository,
		deps.Repos.AdmissionRepository,
		deps.AttachmentStore,
		notifier,
		deps.Metrics,
		logger.Component("admissions"),
	)
	deps.DocumentService = appServices.NewDocumentService(
		deps.Repos.EnquiryRepository,
		deps.Repos.AdmissionRepository,
		document.NewGenerator(cfg.School.Name),
		deps.Metrics,
		logger.Component("documents"),
	)

	if err := seed.CreateDefaultData(ctx, cfg, deps.AuthService, lgr); err != nil {
		// not fatal: staff can still be created later
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.EnquiryController = appControllers.NewEnquiryController(deps.EnquiryService, lgr)
	deps.AdmissionController = appControllers.NewAdmissionController(deps.AdmissionService, cfg.Server.MaxUploadBytes, lgr)
	deps.DocumentController = appControllers.NewDocumentController(deps.DocumentService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.EnquiryController,
		deps.AdmissionController,
		deps.DocumentController,
		deps.AuthMiddleware,
	)

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler(lgr)))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			lgr.Warn().Err(err).Msg("Health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up", "storage": cfg.Storage.Driver})
	})

	if deps.LocalStorage != nil {
		router.Static("/uploads", deps.LocalStorage.BasePath())
		lgr.Info().Str("path", deps.LocalStorage.BasePath()).Msg("Static file serving configured for uploads directory")
	}

	return router
}
