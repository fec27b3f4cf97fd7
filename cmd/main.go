package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inventory-automation/app/domain"
	handler "inventory-automation/app/handler/api"
	"inventory-automation/app/middleware"
	"inventory-automation/app/repository/broker"
	"inventory-automation/app/repository/db"
	"inventory-automation/app/repository/lock"
	"inventory-automation/app/scheduler"
	"inventory-automation/app/usecase"
	"inventory-automation/config"
	"inventory-automation/migrations"
	"inventory-automation/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	slogfiber "github.com/samber/slog-fiber"
)

func main() {
	// init logger
	logger.InitLogger()

	ctx := context.Background()
	// init config
	cfg, err := config.InitConfig(ctx)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		return
	}

	// init database
	dbConn, err := db.NewPostgres(cfg.Db)
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		return
	}
	defer dbConn.Close()

	if cfg.Db.AutoMigrate {
		if _, err := db.Migrate(ctx, dbConn, migrations.FS); err != nil {
			slog.Error("DB migration failed", "error", err)
			return
		}
	}

	// Connect to NATS server
	nc, err := nats.Connect(cfg.Nats.Url)
	if err != nil {
		slog.Error("Error connecting to NATS", "error", err)
		return
	}
	defer nc.Drain()

	js, err := jetstream.New(nc)
	if err != nil {
		slog.Error("Error creating JetStream context", "error", err)
		return
	}
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     strings.ToUpper(cfg.Nats.StreamName),
		Subjects: []string{fmt.Sprintf("%s.*", strings.ToLower(cfg.Nats.StreamName))},
		Storage:  jetstream.FileStorage,
	})
	if err != nil && !errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		slog.Error("create INVENTORY stream failed", "error", err)
		return
	}

	// Redis is optional; without it sweeps are only serialized in-process.
	var locker domain.JobLocker
	if cfg.Redis.Address != "" {
		rdb, err := lock.NewRedis(ctx, cfg.Redis)
		if err != nil {
			slog.Error("Redis connection failed", "error", err)
			return
		}
		defer rdb.Close()
		locker = lock.NewRedisJobLocker(rdb)
	}

	reqValidator := validator.New()
	productRepo := db.NewProductRepository(dbConn)
	orderLineRepo := db.NewOrderLineRepository(dbConn)
	supplierRepo := db.NewSupplierRepository(dbConn)
	inventoryLogRepo := db.NewInventoryLogRepository(dbConn)
	velocityRepo := db.NewSalesVelocityRepository(dbConn)
	recommendationRepo := db.NewStockRecommendationRepository(dbConn)
	reorderRepo := db.NewReorderTaskRepository(dbConn)
	alertRepo := db.NewDeadStockAlertRepository(dbConn)
	inventoryBroker := broker.NewInventoryBrokerPublisher(js, cfg.Nats.StreamName)

	velocityUsecase := usecase.NewSalesVelocityUsecase(productRepo, orderLineRepo, velocityRepo, cfg)
	recommendationUsecase := usecase.NewStockRecommendationUsecase(productRepo, supplierRepo, velocityRepo, recommendationRepo, velocityUsecase, cfg)
	reorderUsecase := usecase.NewAutoReorderUsecase(productRepo, supplierRepo, recommendationRepo, reorderRepo, inventoryLogRepo, inventoryBroker, cfg)
	deadStockUsecase := usecase.NewDeadStockUsecase(productRepo, orderLineRepo, alertRepo, inventoryLogRepo, inventoryBroker, cfg)

	// init job queue
	queue := scheduler.NewQueue(cfg.Scheduler.JobTimeout, inventoryBroker)
	retry := scheduler.RetryPolicy{
		MaxAttempts: cfg.Scheduler.RetryMaxAttempts,
		Backoff:     cfg.Scheduler.RetryBackoff,
		MaxBackoff:  cfg.Scheduler.RetryMaxBackoff,
	}
	for jobType, jobHandler := range usecase.JobHandlers(velocityUsecase, recommendationUsecase, reorderUsecase, deadStockUsecase) {
		jobHandler = scheduler.WithRetry(jobHandler, retry)
		jobHandler = scheduler.WithLock(jobHandler, locker, "inventory-automation:job:"+string(jobType), cfg.Scheduler.LockTTL)
		queue.Register(jobType, jobHandler)
	}
	queue.Every(domain.JobTypeSalesVelocity, cfg.Scheduler.VelocityInterval)
	queue.Every(domain.JobTypeStockRecommendations, cfg.Scheduler.RecommendationInterval)
	queue.Every(domain.JobTypeAutoReorder, cfg.Scheduler.ReorderInterval)
	queue.Every(domain.JobTypeDeadStockDetection, cfg.Scheduler.DeadStockInterval)

	handlers := handler.Handlers{
		Job:            handler.NewJobHandler(queue, reqValidator),
		Velocity:       handler.NewVelocityHandler(velocityUsecase),
		Recommendation: handler.NewRecommendationHandler(recommendationUsecase),
		Reorder:        handler.NewReorderHandler(reorderUsecase, reqValidator),
		DeadStock:      handler.NewDeadStockHandler(deadStockUsecase, reqValidator),
		Overview:       handler.NewOverviewHandler(velocityUsecase, recommendationUsecase, reorderUsecase, deadStockUsecase, queue),
	}

	// Initialize HTTP web framework
	app := fiber.New()
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		LivenessEndpoint: "/live",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return dbConn.PingContext(c.Context()) == nil
		},
		ReadinessEndpoint: "/ready",
	}))
	webLogger := slog.New(&logger.ContextHandler{Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})})
	app.Use(slogfiber.New(webLogger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(middleware.RequestIDMiddleware())

	handler.SetupRouter(app, handlers, cfg)

	if err := queue.Start(ctx); err != nil {
		slog.Error("Failed to start job queue", "error", err)
		return
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Failed to listen", "port", cfg.Port)
			return
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Gracefully shutdown")
	err = app.Shutdown()
	if err != nil {
		slog.Warn("Unfortunately the shutdown wasn't smooth", "err", err)
	}
	queue.Stop()
}
