package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/docs"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/route"
	"github.com/hugohenrick/verduleria-api/internal/adapter/repository"
	"github.com/hugohenrick/verduleria-api/internal/config"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/cache"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/lock"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/storage"
	"github.com/hugohenrick/verduleria-api/internal/realtime"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/auth"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/hugohenrick/verduleria-api/pkg/middleware"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// App representa la aplicación y sus dependencias
type App struct {
	cfg    *config.Config
	log    logger.Logger
	router *gin.Engine
	db     *database.PostgresDB
	redis  *redis.Client
	bridge *realtime.RedisBridge
}

// NewApp arma todas las dependencias. Sin REDIS_URL usa locks en memoria
// y entrega los avisos directo al hub local.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("zona horaria inválida: %w", err)
	}

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.MigrationsPath, cfg.DSN()); err != nil {
			return nil, err
		}
		log.Info("migraciones aplicadas", "path", cfg.MigrationsPath)
	}

	db, err := database.NewPostgresDB(ctx, database.PostgresConfig{
		DSN:             cfg.DSN(),
		MaxConnections:  cfg.DBMaxConns,
		MinConnections:  cfg.DBMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}, log)
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, log: log, db: db}

	hub := realtime.NewHub(cfg.AllowedOrigins(), log.With("component", "realtime"))

	var (
		locker     service.Locker     = lock.NewLocalLocker()
		boardCache service.BoardCache = cache.NopBoardCache{}
		notifier   service.Notifier   = hub
		redisPing  controller.Pinger
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}
		app.redis = rdb
		app.bridge = realtime.NewRedisBridge(rdb, hub, realtime.DefaultChannel, log.With("component", "redis_bridge"))

		locker = lock.NewRedisLocker(rdb, cfg.LockTTL())
		boardCache = cache.NewBoardCache(rdb, cfg.BoardCacheTTL())
		notifier = app.bridge
		redisPing = cache.NewHealthCheck(rdb)
	} else {
		log.Warn("REDIS_URL vacío: locks en memoria y sin caché del tablero")
	}

	images, err := storage.NewLocalImageStore(cfg.UploadDir, cfg.UploadPublicURL, cfg.UploadMaxBytes)
	if err != nil {
		app.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.JWTSecretKey, cfg.JWTExpiration())
	if err != nil {
		app.Close()
		return nil, err
	}

	// Repositorios
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	itemRepo := repository.NewItemRepository(db)
	lotRepo := repository.NewLotRepository(db)
	priceRepo := repository.NewDailyPriceRepository(db)
	marginRepo := repository.NewMarginRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)

	// Servicios
	pricingService := service.NewPricingService(service.PricingDeps{
		Sessions:      sessionRepo,
		Variants:      variantRepo,
		Lots:          lotRepo,
		Prices:        priceRepo,
		Margins:       marginRepo,
		Tx:            db,
		Locker:        locker,
		Cache:         boardCache,
		Notifier:      notifier,
		DefaultMargin: cfg.MarginDefault(),
		Logger:        log.With("service", "pricing"),
	})
	if err := pricingService.EnsureMargin(ctx); err != nil {
		app.Close()
		return nil, err
	}

	sessionService := service.NewSessionService(service.SessionDeps{
		Sessions: sessionRepo,
		Items:    itemRepo,
		Variants: variantRepo,
		Lots:     lotRepo,
		Pricing:  pricingService,
		Tx:       db,
		Locker:   locker,
		Location: loc,
		Logger:   log.With("service", "session"),
	})
	purchaseService := service.NewPurchaseService(service.PurchaseDeps{
		Sessions:  sessionRepo,
		Items:     itemRepo,
		Lots:      lotRepo,
		Variants:  variantRepo,
		Suppliers: supplierRepo,
		Pricing:   pricingService,
		Tx:        db,
		Locker:    locker,
		Logger:    log.With("service", "purchase"),
	})
	promotionService := service.NewPromotionService(service.PromotionDeps{
		Sessions:   sessionRepo,
		Promotions: promotionRepo,
		Variants:   variantRepo,
		Prices:     priceRepo,
		Images:     images,
		Notifier:   notifier,
		Logger:     log.With("service", "promotion"),
	})
	catalogService := service.NewCatalogService(productRepo, variantRepo, supplierRepo, images, log.With("service", "catalog"))
	userService := service.NewUserService(userRepo, log.With("service", "user"))
	authService := service.NewAuthService(userRepo, jwtService, db, log.With("service", "auth"))
	uploadService := service.NewUploadService(images, log.With("service", "upload"))

	// Controladores
	authController := controller.NewAuthController(authService, log)
	userController := controller.NewUserController(userService, log)
	catalogController := controller.NewCatalogController(catalogService, log)
	sessionController := controller.NewSessionController(sessionService, purchaseService, log)
	lotController := controller.NewLotController(purchaseService, log)
	pricingController := controller.NewPricingController(pricingService, sessionService, log)
	promotionController := controller.NewPromotionController(promotionService, log)
	uploadController := controller.NewUploadController(uploadService, log)
	healthController := controller.NewHealthController(db, redisPing, log)
	realtimeController := controller.NewRealtimeController(hub)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins())))

	router.Static("/uploads", cfg.UploadDir)

	if !cfg.IsProduction() {
		docs.SwaggerInfo.BasePath = cfg.BasePath
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authMW := auth.JWTAuthMiddleware(jwtService)
	api := router.Group(cfg.BasePath)
	route.SetupRealtimeRoutes(api, realtimeController, healthController)
	route.SetupPublicRoutes(api, sessionController, promotionController)
	route.SetupAuthRoutes(api, authController, authMW)
	route.SetupUserRoutes(api, userController, authMW)
	route.SetupCatalogRoutes(api, catalogController, authMW)
	route.SetupSessionRoutes(api, sessionController, authMW)
	route.SetupLotRoutes(api, lotController, authMW)
	route.SetupPricingRoutes(api, pricingController, authMW)
	route.SetupPromotionRoutes(api, promotionController, authMW)
	route.SetupUploadRoutes(api, uploadController, authMW)

	app.router = router
	return app, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDKey},
		ExposeHeaders:    []string{middleware.RequestIDKey},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// Run arranca los procesos de fondo, hoy solo el puente de redis
func (a *App) Run(ctx context.Context) {
	if a.bridge == nil {
		return
	}
	go a.bridge.Run(ctx)
}

// Router devuelve el router de la aplicación
func (a *App) Router() *gin.Engine {
	return a.router
}

// Close libera los recursos de la aplicación
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
