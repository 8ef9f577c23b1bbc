package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spareshop-api/config"
	"spareshop-api/controllers"
	"spareshop-api/middlewares"
	"spareshop-api/routes"
	"spareshop-api/seeders"
	"spareshop-api/services"
	"spareshop-api/utils/token"
	"spareshop-api/utils/upload"
)

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	if cfg.Seed {
		if err := seeders.Seed(db); err != nil {
			logger.Fatal("seed database", zap.Error(err))
		}
	}

	images, err := upload.NewImageStore(cfg.UploadDir, cfg.MaxUploadMB)
	if err != nil {
		logger.Fatal("prepare upload dir", zap.Error(err))
	}

	tokens := token.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20
	r.Use(
		middlewares.Environment(cfg.IsProduction()),
		middlewares.Recovery(logger),
		middlewares.RequestLogger(logger),
		middlewares.Metrics(),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:        controllers.NewAuthController(services.NewAuthService(db, tokens), cfg.RefreshTokenTTL, cfg.CookieSecure),
		Spareparts:  controllers.NewSparepartController(services.NewSparepartService(db, images), images),
		Orders:      controllers.NewOrderController(services.NewOrderService(db)),
		Purchases:   controllers.NewPurchaseController(services.NewPurchaseService(db)),
		Dashboard:   controllers.NewDashboardController(services.NewDashboardService(db), services.NewUserService(db)),
		Tokens:      tokens,
		AuthLimiter: middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		UploadDir:   cfg.UploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
