package app

import (
	"context"
	"escape_room_backend/internal/config"
	"escape_room_backend/internal/controller"
	"escape_room_backend/internal/repository"
	"escape_room_backend/internal/service"
	"escape_room_backend/internal/util"
	"escape_room_backend/pkg/configwatcher"
	"escape_room_backend/pkg/database"
	"escape_room_backend/pkg/logger"
	"escape_room_backend/pkg/monitoring"
	"escape_room_backend/pkg/security"
	"escape_room_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigFile string // watched for hot reload when set
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	cors            *security.CORSPolicy
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	story      *repository.StoryRepository
	stage      *repository.StageRepository
	hint       *repository.HintRepository
	access     *repository.AccessRepository
	attempt    *repository.AttemptRepository
	session    *repository.SessionRepository
	storyCache *repository.StoryCacheRepository
}

type services struct {
	auth    *service.AuthService
	storage *service.StorageService
	story   *service.StoryService
	manager *service.StoryManager
}

type controllers struct {
	auth    *controller.AuthController
	story   *controller.StoryController
	attempt *controller.AttemptController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:    repository.NewUserRepository(db),
		story:   repository.NewStoryRepository(db),
		stage:   repository.NewStageRepository(db),
		hint:    repository.NewHintRepository(db),
		access:  repository.NewAccessRepository(db),
		attempt: repository.NewAttemptRepository(db),
	}
	if rdb != nil {
		repos.session = repository.NewSessionRepository(rdb)
		repos.storyCache = repository.NewStoryCacheRepository(rdb)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	// Leave the interfaces untyped-nil when Redis is off.
	var sessions service.SessionStore
	var catalogCache service.CatalogCache
	if repos.session != nil {
		sessions = repos.session
	}
	if repos.storyCache != nil {
		catalogCache = repos.storyCache
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, sessions, cfg)
	s.story = service.NewStoryService(repos.story, repos.stage, s.storage, catalogCache, cfg)
	s.manager = service.NewStoryManager(
		db,
		repos.user,
		repos.story,
		repos.stage,
		repos.hint,
		repos.access,
		repos.attempt,
	)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		story:   controller.NewStoryController(s.story, s.manager, s.auth),
		attempt: controller.NewAttemptController(s.manager, s.auth),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.cors = security.NewCORSPolicy(cfg.CORS.AllowedOrigins)
	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.cors.SetOrigins(newCfg.CORS.AllowedOrigins)
		a.limiter.Update(newCfg.RateLimit.MaxRequests, time.Duration(newCfg.RateLimit.WindowMinutes)*time.Minute)
	})

	router.Use(a.cors.Middleware())
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires an App around already opened stores. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// NewApp opens MySQL and Redis, migrates when allowed and wires the App.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Server.Name, &cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	if a.ConfigFile != "" {
		go func() {
			if err := configwatcher.WatchConfig(watchCtx, a.ConfigFile, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.limiter.Stop()
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	log.Println("Server exiting")
}
