package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"expeditions-service/config"
	"expeditions-service/handlers"
	"expeditions-service/middleware"
	"expeditions-service/models"
	"expeditions-service/services"
	"expeditions-service/utils"
	"expeditions-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable not set")
	}
	if cfg.ServiceToken == "" {
		logger.Warn("SERVICE_TOKEN not set, service-only routes will reject every request")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subgraph := services.NewSubgraphClient(cfg.Subgraph.Endpoints, cfg.Subgraph.Timeout, logger.Named("subgraph"))

	campaignService := services.NewCampaignService(db, cfg.CampaignAdmins, logger.Named("campaigns"))
	weeklyService := services.NewWeeklyFragmentsService(db, subgraph, cfg.Fragments, logger.Named("weekly"))
	dailyService := services.NewDailyFragmentsService(db, cfg.Fragments, logger.Named("daily"))
	taskService := services.NewTaskService(campaignService, weeklyService, dailyService)

	var signer services.ClaimSigner
	if claimSigner, err := services.NewEIP712ClaimSigner(cfg.ClaimSigner); err != nil {
		logger.Warn("reward claims disabled", zap.Error(err))
	} else {
		signer = claimSigner
		logger.Info("reward claim signer ready", zap.String("signer", claimSigner.Address()))
	}
	rewardService := services.NewRewardService(db, taskService, signer, logger.Named("rewards"))
	progressService := services.NewProgressService(taskService, rewardService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	})
	app.Use(middleware.RequestLogger(logger.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Service-Token, X-Request-ID",
		MaxAge:       86400,
	}))

	auth := handlers.Auth{
		Verifier:     services.PersonalSignVerifier{},
		ServiceToken: cfg.ServiceToken,
		Log:          logger.Named("http"),
	}
	handlers.SetupCampaignRoutes(app, campaignService, auth)
	handlers.SetupTaskRoutes(app, taskService, progressService, auth)
	handlers.SetupRewardRoutes(app, rewardService, campaignService, auth)

	if cfg.Snapshot.Enabled {
		store, err := utils.NewR2Client(ctx,
			cfg.Snapshot.AccountID,
			cfg.Snapshot.AccessKeyID,
			cfg.Snapshot.AccessKeySecret,
			cfg.Snapshot.Bucket,
			cfg.Snapshot.CDNBaseURL,
		)
		if err != nil {
			logger.Fatal("failed to initialize R2 client", zap.Error(err))
		}
		snapshots := workers.NewSnapshotWorker(taskService, store, logger.Named("snapshot"))
		if err := snapshots.Start(ctx); err != nil {
			logger.Fatal("failed to start snapshot worker", zap.Error(err))
		}
		handlers.SetupSnapshotRoutes(app, snapshots, auth)
		logger.Info("✅ Standings snapshot worker running (Mondays 00:05 UTC)")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	logger.Info("✅ Server running", zap.String("port", cfg.Port))
	logger.Info("✅ CORS configured", zap.Strings("origins", cfg.AllowedOrigins))

	<-ctx.Done()
	logger.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
