package main

import (
	"context"
	"encoding/base64"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/observatory-hq/observatory/internal/api"
	"github.com/observatory-hq/observatory/internal/bootstrap"
	"github.com/observatory-hq/observatory/internal/config"
	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/probe"
)

func main() {
	configPath := "observatory.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config init failed: %v", err)
	}

	secretKey, err := base64.StdEncoding.DecodeString(cfg.SecretKey)
	if err != nil {
		log.Fatalf("secret key is not valid base64: %v", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	repos := db.NewRepositories(database)
	if err := bootstrap.EnsureAdmin(repos.Users, os.Stderr); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	auditFile, err := os.OpenFile(cfg.AuditLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("audit log init failed: %v", err)
	}
	defer auditFile.Close()

	handler, err := api.NewHandler(database, secretKey, probe.NewGitHubSource(), api.NewAuditLog(auditFile), api.Options{
		BaseURL:       cfg.BaseURL,
		SecureCookies: cfg.Production,
	})
	if err != nil {
		log.Fatalf("handler init failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Observatory",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	handler.RegisterRoutes(app)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Observatory listening on http://0.0.0.0:%s (db: %s)", cfg.Port, cfg.DBPath)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
