package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/quillcms/quill-backend/internal/config"
	"github.com/quillcms/quill-backend/internal/handler"
	"github.com/quillcms/quill-backend/internal/middleware"
	"github.com/quillcms/quill-backend/internal/migration"
	"github.com/quillcms/quill-backend/internal/repository"
	"github.com/quillcms/quill-backend/internal/routes"
	"github.com/quillcms/quill-backend/internal/service"
	pkgcache "github.com/quillcms/quill-backend/pkg/cache"
	pkgjwt "github.com/quillcms/quill-backend/pkg/jwt"
	pkglogger "github.com/quillcms/quill-backend/pkg/logger"
	pkgredis "github.com/quillcms/quill-backend/pkg/redis"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MySQL. TranslateError maps duplicate-key violations to
	// gorm.ErrDuplicatedKey, which revision number allocation depends on.
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis is optional: without it the engine just skips read caching
	var cacheService pkgcache.Service
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Redis unavailable, revision caching disabled: %v", err)
	} else {
		cacheService = pkgcache.NewService(redisClient)
		pkglogger.Info("Connected to Redis")
	}

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessMinutes, cfg.JWT.RefreshMinutes)

	// Repositories
	revisionRepo := repository.NewRevisionRepository(db)
	contentStore := repository.NewContentStore(db)

	// Services
	retention := service.NewRetentionPolicy(revisionRepo, cfg.Revision.MaxPerEntity)
	revisionService := service.NewRevisionService(revisionRepo, retention, cacheService)
	autosaveService := service.NewAutosaveService(contentStore, revisionService)
	restoreService := service.NewRestoreService(revisionRepo, contentStore, revisionService)
	compareService := service.NewCompareService(revisionRepo)
	statsService := service.NewStatsService(revisionRepo, cacheService)

	revisionHandler := handler.NewRevisionHandler(
		revisionService,
		autosaveService,
		restoreService,
		compareService,
		statsService,
		contentStore,
	)

	if env != "local" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	routes.Register(r, revisionHandler, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
