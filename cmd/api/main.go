package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/config"
	"github.com/TimiOdusanya/tourbirth-backend/internal/connect"
	"github.com/TimiOdusanya/tourbirth-backend/internal/container"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/logger"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/notify"
	"github.com/TimiOdusanya/tourbirth-backend/internal/routes"
	"github.com/TimiOdusanya/tourbirth-backend/internal/session"
	"github.com/TimiOdusanya/tourbirth-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.LogPath, cfg.App.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("Starting TourBirth API server", zap.String("environment", cfg.App.Environment))

	mongoClient, err := connect.MongoDBConnect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := connect.MongoDBDisconnect(mongoClient); err != nil {
			log.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	log.Info("Connected to MongoDB successfully", zap.String("database", cfg.Mongo.Database))

	repo := models.MongodbNewRepo(mongoClient, cfg.Mongo.Database)
	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = repo.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	blobs, err := blobStore(cfg.Blob)
	if err != nil {
		return err
	}
	log.Info("Blob store ready", zap.String("driver", cfg.Blob.Driver))

	revoker, closeRedis, err := revocationStore(cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	dispatcher, err := notifier(cfg, log)
	if err != nil {
		return err
	}

	var previous map[string]string
	if cfg.JWT.PreviousSecret != "" && cfg.JWT.PreviousKeyID != "" {
		previous = map[string]string{cfg.JWT.PreviousKeyID: cfg.JWT.PreviousSecret}
	}
	tokens := helpers.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.KeyID, cfg.JWT.Issuer, previous)

	appContainer := container.NewContainer(log, repo, blobs, dispatcher, tokens, revoker, container.Options{
		FrontendURL:    cfg.App.FrontendURL,
		AllowedOrigins: cfg.App.AllowedOrigins,
		OTPExpiry:      cfg.OTP.Expiry,
	})
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Warn("Notification queue not fully drained", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

func blobStore(cfg config.BlobConfig) (storage.BlobStore, error) {
	if cfg.Driver == "supabase" {
		client, err := connect.InitSupabase(cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewSupabaseStore(client, cfg.SupabaseBucket), nil
	}
	cld, err := connect.CloudinaryCredentials(cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewCloudinaryStore(cld), nil
}

// revocationStore uses Redis when configured and an in-process set otherwise.
func revocationStore(cfg config.RedisConfig, log *zap.Logger) (session.Revoker, func(), error) {
	client, err := connect.RedisConnect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("REDIS_ADDR not set; logged-out tokens are tracked in memory only")
		return session.NewMemoryRevoker(), func() {}, nil
	}
	log.Info("Connected to Redis successfully")
	return session.NewRedisRevoker(client), func() { _ = client.Close() }, nil
}

func notifier(cfg *config.Config, log *zap.Logger) (*notify.Dispatcher, error) {
	catalog, err := notify.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	var mailer notify.Sender
	if cfg.Email.Host == "" {
		log.Warn("SMTP_HOST not set; emails are written to the log")
		mailer = notify.NewLogSender(log)
	} else {
		mailer = notify.NewSMTPSender(cfg.Email.Host, cfg.Email.Port, cfg.Email.User, cfg.Email.Password, cfg.Email.From, cfg.Email.FromName)
	}

	opts := notify.Options{
		Workers:      cfg.Notify.Workers,
		QueueSize:    cfg.Notify.QueueSize,
		AdminAddress: cfg.Email.AdminAddress,
		SendTimeout:  30 * time.Second,
	}
	if cfg.Telegram.BotToken != "" {
		alerts, err := notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Warn("Telegram alerts disabled", zap.Error(err))
		} else {
			opts.Alerts = alerts
		}
	}
	return notify.NewDispatcher(catalog, mailer, log, opts), nil
}
