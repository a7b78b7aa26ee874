package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seccode_backend/internal/config"
	"seccode_backend/internal/controller"
	"seccode_backend/internal/repository"
	"seccode_backend/internal/service"
	"seccode_backend/pkg/configwatcher"
	"seccode_backend/pkg/database"
	"seccode_backend/pkg/logger"
	"seccode_backend/pkg/monitoring"
	"seccode_backend/pkg/security"
	"seccode_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	challenge  *repository.ChallengeRepository
	completion *repository.CompletionRepository
	usage      *repository.UsageRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	sandbox     *service.SandboxClient
	completion  *service.CompletionService
	usage       *service.UsageService
	entitlement *service.EntitlementService
	grader      *service.GraderService
	challenge   *service.ChallengeService
}

type controllers struct {
	auth       *controller.AuthController
	challenge  *controller.ChallengeController
	submission *controller.SubmissionController
	usage      *controller.UsageController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		challenge:  repository.NewChallengeRepository(db),
		completion: repository.NewCompletionRepository(db),
		usage:      repository.NewUsageRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.sandbox = service.NewSandboxClient(cfg)
	s.completion = service.NewCompletionService(repos.completion)
	s.usage = service.NewUsageService(repos.usage)
	s.entitlement = service.NewEntitlementService(s.usage, cfg)
	s.grader = service.NewGraderService(s.sandbox, s.completion)
	s.challenge = service.NewChallengeService(repos.challenge, s.entitlement, s.storage, rdb)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		challenge:  controller.NewChallengeController(s.challenge, s.auth),
		submission: controller.NewSubmissionController(s.grader, s.challenge, s.auth),
		usage:      controller.NewUsageController(s.usage, s.entitlement, s.completion, s.auth),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	// release 模式默认不自动迁移，可通过 -migrate 强制执行
	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = svcs
	ctrls := app.initControllers(svcs, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("seccode-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, repos, cfg)

	// 配额与沙箱配置支持热更新
	app.RegisterConfigCallback(svcs.entitlement.ApplyLimits)
	app.RegisterConfigCallback(svcs.sandbox.Reload)
	go configwatcher.WatchConfig("configs/config.yaml", app.applyConfig)

	return app
}

func (a *App) applyConfig(cfg *config.Config) {
	logger.Log.Info("Config reloaded")
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
