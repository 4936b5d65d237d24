// Package main is the entry point for the application. It initializes
// all dependencies, sets up the HTTP server, and starts the application.
package main

import (
	"context"
	"time"

	"saldo/internal/config"
	"saldo/internal/repositories"
	"saldo/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	log "github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnv()

	if config.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("failed to close database connection: %v", err)
			}
		}
	}()

	// Cache is an explicit dependency with graceful degradation: when
	// Redis is unreachable the app runs with an always-miss cache.
	var cache repositories.CacheRepository
	redisClient := repositories.NewRedisClient()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, degrading to always-miss cache: %v", err)
		cache = repositories.NewNoopCacheRepository()
	} else {
		cache = repositories.NewRedisCacheRepository(redisClient)
	}
	cancel()
	defer func() {
		if err := cache.Close(); err != nil {
			log.Printf("failed to close cache: %v", err)
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, x-api-token, x-api-secret",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/auth/login", "/auth/register"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        config.GetIntEnv("AUTH_RATE_LIMIT", 5),
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many requests, please try again later",
				})
			},
		}))
	}

	routes.SetupRoutes(app, db, cache)

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
