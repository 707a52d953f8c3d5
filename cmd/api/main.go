package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/justsurfingit/lead-labeler/internal/auth"
	"github.com/justsurfingit/lead-labeler/internal/classifier"
	"github.com/justsurfingit/lead-labeler/internal/config"
	"github.com/justsurfingit/lead-labeler/internal/database"
	"github.com/justsurfingit/lead-labeler/internal/handlers"
	"github.com/justsurfingit/lead-labeler/internal/logger"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// 3. Optional integrations
	var llmService *services.LLMService
	if cfg.LLM.APIKey != "" {
		llmService, err = services.NewLLMService(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			logger.Warn("LLM client unavailable, llm models disabled", "error", err)
		}
	}

	var events services.EventPublisher = services.NopPublisher{}
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, labeled leads will not be published", "error", err)
		} else {
			events = services.NewRedisPublisher(rdb, cfg.Redis.Channel)
			logger.Info("publishing labeled leads", "channel", cfg.Redis.Channel)
		}
	}

	// 4. Core services
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	modelService := services.NewModelService(db, cfg.Models.Dir, &classifier.Loader{LLM: llmService.Model()})
	leadService := services.NewLeadService(db, modelService, events)
	userService := services.NewUserService(db, tokens)

	// 5. Gmail watcher
	var emailService *services.EmailService
	if cfg.Gmail.Enabled {
		emailService = startGmailWatcher(ctx, cfg, leadService)
	}

	// 6. HTTP server
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.Deps{
		Leads:          leadService,
		Models:         modelService,
		Users:          userService,
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if emailService != nil {
		emailService.StopWatcher()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func startGmailWatcher(ctx context.Context, cfg *config.Config, leads *services.LeadService) *services.EmailService {
	logger.Info("Initializing Gmail client...")
	httpClient, err := auth.GetGmailClient(ctx, cfg.Gmail.CredentialsFile, cfg.Gmail.TokenFile)
	if err != nil {
		logger.Warn("Gmail client unavailable, watcher disabled", "error", err)
		return nil
	}

	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Warn("failed to create Gmail service", "error", err)
		return nil
	}

	emailService := services.NewEmailService(leads.DB, leads, gmailService, nil, cfg.Gmail.Query, cfg.Gmail.ModelName)
	if err := emailService.StartWatcher(cfg.Gmail.Schedule); err != nil {
		logger.Error("Gmail watcher not started", "error", err)
		return nil
	}
	return emailService
}
