// Package app assembles the service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"filesmanager/internal/config"
	"filesmanager/internal/database"
	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
	"filesmanager/internal/middleware"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/modules/cascade"
	"filesmanager/internal/modules/files"
	"filesmanager/internal/modules/languages"
	"filesmanager/internal/modules/sessions"
	"filesmanager/internal/modules/users"
	"filesmanager/internal/pkg/jwt"
	"filesmanager/internal/repository"
	"filesmanager/internal/sessionstore"
	"filesmanager/internal/storage"
)

type App struct {
	Config     *config.Config
	DB         *gorm.DB
	Sessions   sessionstore.Store
	Blobs      storage.BlobStore
	Metrics    *metrics.Metrics
	Authorizer *auth.Authorizer
	Cascade    *cascade.Coordinator
	Reaper     *sessions.Reaper
	Router     *gin.Engine

	closers []func() error
}

// New connects to the database and the configured stores and builds the
// router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	store, closeStore, err := sessionstore.Open(cfg.SessionBackend, db, cfg.SessionBadgerDir)
	if err != nil {
		return nil, err
	}

	blobs, err := storage.New(ctx, storage.Options{
		Backend:  cfg.StorageBackend,
		Dir:      cfg.StorageDir,
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
		Prefix:   cfg.S3Prefix,
	})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	a := Build(cfg, db, store, blobs, m)
	a.closers = append(a.closers, closeStore, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return a, nil
}

// Build wires every module on top of already opened stores.
func Build(cfg *config.Config, db *gorm.DB, store sessionstore.Store, blobs storage.BlobStore, m *metrics.Metrics) *App {
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	listRepo := repository.NewUserFileRepository(db)
	languageRepo := repository.NewLanguageRepository(db)

	authorizer := auth.NewAuthorizer(store, userRepo, m)
	authenticator := auth.NewAuthenticator(authorizer, store, userRepo)
	coordinator := cascade.NewCoordinator(userRepo, fileRepo, listRepo, store, blobs, m)

	transport := middleware.NewSessionTransport(jwt.New(cfg.SessionSecret), cfg.CookieName, domain.CookieMeta{
		Path:     cfg.CookiePath,
		MaxAge:   cfg.SessionTTL,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	}, cfg.SameSite())

	authHandler := auth.NewHandler(authenticator, authorizer, transport)
	userHandler := users.NewHandler(users.NewService(authorizer, userRepo, listRepo, coordinator), transport)
	fileHandler := files.NewHandler(files.NewService(authorizer, fileRepo, listRepo, userRepo, blobs, coordinator, m, cfg.MaxUploadSize))
	sessionHandler := sessions.NewHandler(sessions.NewService(authorizer, store))
	languageHandler := languages.NewHandler(languages.NewService(authorizer, languageRepo))

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadSize
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(m))
	r.Use(transport.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authHandler.RegisterRoutes(r)
	userHandler.RegisterRoutes(r)
	fileHandler.RegisterRoutes(r)
	sessionHandler.RegisterRoutes(r)
	languageHandler.RegisterRoutes(r)

	return &App{
		Config:     cfg,
		DB:         db,
		Sessions:   store,
		Blobs:      blobs,
		Metrics:    m,
		Authorizer: authorizer,
		Cascade:    coordinator,
		Reaper:     sessions.NewReaper(store, cfg.ReaperInterval, m),
		Router:     r,
	}
}

// Close releases the stores opened by New.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
