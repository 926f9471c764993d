package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Mongo    MongoConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Blob     BlobConfig
	Email    EmailConfig
	Telegram TelegramConfig
	Redis    RedisConfig
	Notify   NotifyConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Environment    string
	LogLevel       string
	LogPath        string
	FrontendURL    string
	AllowedOrigins []string
}

type MongoConfig struct {
	URI      string
	Password string
	Database string
}

type JWTConfig struct {
	Secret string
	KeyID  string
	Issuer string
	// PreviousSecret keeps tokens signed before a rotation verifiable.
	PreviousSecret string
	PreviousKeyID  string
}

type OTPConfig struct {
	Expiry time.Duration
}

type BlobConfig struct {
	Driver              string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	SupabaseURL         string
	SupabaseKey         string
	SupabaseBucket      string
}

type EmailConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	FromName     string
	AdminAddress string
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type NotifyConfig struct {
	Workers   int
	QueueSize int
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "tourbirth-api")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DB_NAME", "tourbirth")
	v.SetDefault("JWT_KEY_ID", "primary")
	v.SetDefault("JWT_ISSUER", "tourbirth")
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("BLOB_DRIVER", "cloudinary")
	v.SetDefault("SUPABASE_BUCKET", "documents")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM_NAME", "TourBirth")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Environment: v.GetString("ENVIRONMENT"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			LogPath:     v.GetString("LOG_PATH"),
			FrontendURL: v.GetString("FRONTEND_URL"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGODB_URI"),
			Password: v.GetString("MONGODB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			KeyID:          v.GetString("JWT_KEY_ID"),
			Issuer:         v.GetString("JWT_ISSUER"),
			PreviousSecret: v.GetString("JWT_PREVIOUS_SECRET"),
			PreviousKeyID:  v.GetString("JWT_PREVIOUS_KEY_ID"),
		},
		OTP: OTPConfig{
			Expiry: time.Duration(v.GetInt("OTP_EXPIRY_MINUTES")) * time.Minute,
		},
		Blob: BlobConfig{
			Driver:              strings.ToLower(v.GetString("BLOB_DRIVER")),
			CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
			SupabaseURL:         v.GetString("SUPABASE_URL"),
			SupabaseKey:         v.GetString("SUPABASE_SERVICE_KEY"),
			SupabaseBucket:      v.GetString("SUPABASE_BUCKET"),
		},
		Email: EmailConfig{
			Host:         v.GetString("SMTP_HOST"),
			Port:         v.GetInt("SMTP_PORT"),
			User:         v.GetString("SMTP_USER"),
			Password:     v.GetString("SMTP_PASS"),
			From:         v.GetString("EMAIL_FROM"),
			FromName:     v.GetString("EMAIL_FROM_NAME"),
			AdminAddress: v.GetString("ADMIN_EMAIL"),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID:   v.GetInt64("TELEGRAM_ADMIN_CHAT_ID"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Notify: NotifyConfig{
			Workers:   v.GetInt("NOTIFY_WORKERS"),
			QueueSize: v.GetInt("NOTIFY_QUEUE_SIZE"),
		},
	}

	origins := v.GetString("CORS_ORIGINS")
	if origins == "" {
		origins = cfg.App.FrontendURL
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.App.AllowedOrigins = append(cfg.App.AllowedOrigins, o)
		}
	}

	// Validate required fields
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.Blob.Driver {
	case "cloudinary", "supabase":
	default:
		return nil, fmt.Errorf("unsupported BLOB_DRIVER: %s (expected cloudinary or supabase)", cfg.Blob.Driver)
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 1
	}

	return cfg, nil
}

// MongoURI returns the connection string with the password placeholder filled in.
func (c *Config) MongoURI() string {
	return strings.Replace(c.Mongo.URI, "<password>", c.Mongo.Password, 1)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
