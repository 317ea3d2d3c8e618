package main

import (
	"context"
	"fmt"
	"time"

	"taskhub/configs"
	v1 "taskhub/internal/api/v1"
	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/cache"
	"taskhub/internal/middleware"
	"taskhub/internal/store"
	"taskhub/internal/token"
	"taskhub/internal/ws"
	"taskhub/pkg/database"
	"taskhub/pkg/hash"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := configs.LoadConfig()

	logger.InitLoggers(cfg.LogDir)
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	db, driver, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.ErrorLogger.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	logger.SystemLogger.Info("Database connected", zap.String("driver", driver))

	st := store.New(db, driver)
	if err := st.EnsureSchema(context.Background()); err != nil {
		logger.ErrorLogger.Fatal("Schema bootstrap failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisAddr)
		if err != nil {
			logger.ErrorLogger.Fatal("Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
		logger.SystemLogger.Info("Redis connected", zap.String("addr", cfg.RedisAddr))
	}
	ca := cache.New(redisClient, time.Hour)

	tokens := token.NewManager(cfg.SecretKey, cfg.TokenTTL)
	hasher := hash.NewHasher(cfg.BcryptCost)

	hub := ws.NewHub()
	go hub.Run()

	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	h := handlers.New(st, ca, hasher, tokens, hub)
	v1.RegisterRoutes(app, h, tokens, st)

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
