package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/config"
	"github.com/Erkezh/studypoint-edu/internal/controller"
	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/generator"
	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/repository"
	"github.com/Erkezh/studypoint-edu/internal/repository/memstore"
	"github.com/Erkezh/studypoint-edu/internal/service"
	"github.com/Erkezh/studypoint-edu/pkg/configwatcher"
	"github.com/Erkezh/studypoint-edu/pkg/database"
	"github.com/Erkezh/studypoint-edu/pkg/event"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"github.com/Erkezh/studypoint-edu/pkg/monitoring"
	"github.com/Erkezh/studypoint-edu/pkg/security"
	"github.com/Erkezh/studypoint-edu/pkg/tracing"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	// DemoSkills 内存模式下自动写入的演示技能
	DemoSkills []model.Skill

	practice        *service.PracticeService
	limiter         *service.RedisLimiter
	generator       *generator.Interpreter
	publisher       *event.EventPublisher
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type controllers struct {
	practice *controller.PracticeController
	health   *controller.HealthController
}

// backend 练习引擎依赖的存储集合
type backend struct {
	store    service.Store
	learners service.LearnerDirectory
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initBackend(ctx context.Context) (*backend, error) {
	if a.Config.Database.Driver == database.DriverMemory {
		store := memstore.New()
		skills, err := SeedDemo(ctx, newMemContent(store))
		if err != nil {
			return nil, err
		}
		a.DemoSkills = skills
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		return &backend{store: store, learners: store}, nil
	}

	db, err := database.InitDB(&a.Config.Database, a.Config.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, err
	}
	a.DB = db

	// 开发模式或显式指定时自动迁移
	if a.Config.ForceMigrate || a.Config.Server.Mode == gin.DebugMode {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	return &backend{
		store:    repository.NewGormStore(db),
		learners: repository.NewUserRepository(db),
	}, nil
}

func (a *App) initPractice(b *backend) {
	cfg := a.Config

	a.generator = generator.New(generator.WithTimeout(cfg.Practice.GeneratorTimeout()))

	var limiter service.SubscriptionLimiter = service.Unlimited{}
	if a.Redis != nil {
		a.limiter = service.NewRedisLimiter(a.Redis, cfg.Practice.FreeDailyQuestionLimit)
		limiter = a.limiter
	} else {
		logger.Log.Warn("Redis disabled, daily question quota is not enforced")
	}

	var publisher event.Publisher = event.Discard{}
	if a.publisher != nil {
		publisher = a.publisher
	}

	a.practice = service.NewPracticeService(service.PracticeDeps{
		Store:     b.store,
		Learners:  b.learners,
		Generator: a.generator,
		Evaluator: evaluator.NewRegistry(),
		Limiter:   limiter,
		Publisher: publisher,
		Logger:    logger.Log,
		Settings:  service.Settings{SessionExpiry: cfg.Practice.SessionExpiry()},
	})
}

func (a *App) initControllers() *controllers {
	return &controllers{
		practice: controller.NewPracticeController(a.practice),
		health:   controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window, security.ByIP))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// applyConfig pushes the reloadable practice settings to running components.
func (a *App) applyConfig(cfg *config.Config) {
	a.practice.UpdateSettings(service.Settings{SessionExpiry: cfg.Practice.SessionExpiry()})
	if a.limiter != nil {
		a.limiter.SetLimit(cfg.Practice.FreeDailyQuestionLimit)
	}
	a.generator.SetTimeout(cfg.Practice.GeneratorTimeout())

	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("Practice settings updated",
		zap.Int("free_daily_question_limit", cfg.Practice.FreeDailyQuestionLimit),
		zap.Duration("session_expiry", cfg.Practice.SessionExpiry()),
		zap.Duration("generator_timeout", cfg.Practice.GeneratorTimeout()),
	)
}

// NewApp wires storage, the practice engine and the HTTP router. The logger
// must already be initialized.
func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	gin.SetMode(cfg.Server.Mode)

	app := &App{Config: cfg}

	b, err := app.initBackend(ctx)
	if err != nil {
		logger.Log.Error("Failed to initialize database", zap.Error(err))
		return nil, err
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Error("Failed to initialize redis", zap.Error(err))
			return nil, err
		}
		app.Redis = rdb
	}

	if cfg.AMQP.Enabled {
		pub, err := event.NewEventPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Log.Error("Failed to connect to message broker", zap.Error(err))
			return nil, err
		}
		app.publisher = pub
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
		app.tracer = tp
	}

	app.initPractice(b)
	controllers := app.initControllers()

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.File != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.File, configwatcher.DefaultDebounce, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	select {
	case err := <-errCh:
		a.Close()
		return err
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Close()
	if err != nil {
		return err
	}

	logger.Log.Info("Server exiting")
	return nil
}
