package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kawooya/remitta/internal/cache"
	"github.com/kawooya/remitta/internal/config"
	"github.com/kawooya/remitta/internal/env"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/file"
	"github.com/kawooya/remitta/internal/helper"
	"github.com/kawooya/remitta/internal/rates"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/seeder"
	"github.com/kawooya/remitta/internal/smtp"
	"github.com/kawooya/remitta/internal/stream"
	"github.com/joho/godotenv"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items as and when they need them
type Application struct {
	Config       config.Config
	DB           repository.Database
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	WG           sync.WaitGroup
	errorHandler *errHandler.ErrorHandler
	helper       *helper.HelperRepository
	Kafka        *stream.KafkaStream
	Cache        *cache.Cache
	Converter    *rates.Converter
	FileUploader *file.FileUploader
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)
	cfg.Db.Autoseed = env.GetBool("DB_AUTOSEED", false)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Remitta <no_reply@remitta.local>")

	cfg.RateFeed.BaseURL = env.GetString("RATE_FEED_BASE_URL", "https://open.er-api.com/v6/latest")

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Db.Autoseed {
		if err := seeder.New(db, logger).Run(); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	errorHandler := errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)

	redisCache := cache.New(cfg.RedisServer, 0)

	kafkaStream := stream.New(cfg.KafkaServers)

	fileUploader := file.New(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret)

	converter := rates.New(db.Currency(), redisCache, cfg.RateFeed.BaseURL)

	app := &Application{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		Mailer:       mailer,
		errorHandler: errorHandler,
		Kafka:        kafkaStream,
		Cache:        redisCache,
		Converter:    converter,
		FileUploader: fileUploader,
	}

	app.helper = helper.New(&app.Config.BaseURL, &app.WG, errorHandler)

	return app, nil
}

// Helper exposes the shared background-task helper for the workers.
func (app *Application) Helper() *helper.HelperRepository {
	return app.helper
}
