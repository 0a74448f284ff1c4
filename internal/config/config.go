package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bpoc/internal/llm"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var supportedProviders = []string{"gemini", "vertex"}

type Config struct {
	Env  string
	Port string

	Database Database
	JWT      JWT
	Redis    Redis
	Daily    Daily
	AI       AI
	MinIO    MinIO
	RabbitMQ RabbitMQ
	SMTP     SMTP
	Jobs     Jobs

	PDFRendererURL string
	AllowedOrigins []string
}

type Database struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
	ConnTimeout time.Duration
}

// DSN renders the libpq-style connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type JWT struct {
	Secret string
	TTL    time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	Enabled  bool
}

type Daily struct {
	APIKey  string
	BaseURL string
	Domain  string
}

type AI struct {
	Provider         string
	MaxAttempts      int
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	VertexProject    string
	VertexRegion     string
	VertexModel      string
}

// Settings returns the credentials of the selected provider.
func (a AI) Settings() llm.Settings {
	if a.Provider == "vertex" {
		return llm.Settings{Project: a.VertexProject, Location: a.VertexRegion, Model: a.VertexModel}
	}
	return llm.Settings{APIKey: a.GeminiAPIKey, Model: a.GeminiModel, ImageModel: a.GeminiImageModel}
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Enabled   bool
}

type RabbitMQ struct {
	URL      string
	Queue    string
	Workers  int
	Enabled  bool
	MaxTries uint
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Jobs struct {
	SweepSchedule    string
	ReminderSchedule string
	BackfillSchedule string
	MissedCallAfter  time.Duration
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetString("PORT"),
		Database: Database{
			Host:        v.GetString("POSTGRES_HOST"),
			Port:        v.GetString("POSTGRES_PORT"),
			User:        v.GetString("POSTGRES_USER"),
			Password:    v.GetString("POSTGRES_PASSWORD"),
			Name:        v.GetString("POSTGRES_DB"),
			SSLMode:     v.GetString("POSTGRES_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
			ConnTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		JWT: JWT{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Channel:  v.GetString("REDIS_NOTIFICATION_CHANNEL"),
			Enabled:  !v.GetBool("SKIP_REDIS"),
		},
		Daily: Daily{
			APIKey:  v.GetString("DAILY_API_KEY"),
			BaseURL: v.GetString("DAILY_API_URL"),
			Domain:  v.GetString("DAILY_DOMAIN"),
		},
		AI: AI{
			Provider:         v.GetString("AI_PROVIDER"),
			MaxAttempts:      v.GetInt("AI_MAX_ATTEMPTS"),
			GeminiAPIKey:     v.GetString("GEMINI_API_KEY"),
			GeminiModel:      v.GetString("GEMINI_MODEL"),
			GeminiImageModel: v.GetString("GEMINI_IMAGE_MODEL"),
			VertexProject:    v.GetString("VERTEX_PROJECT_ID"),
			VertexRegion:     v.GetString("VERTEX_REGION"),
			VertexModel:      v.GetString("VERTEX_MODEL"),
		},
		MinIO: MinIO{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Enabled:   v.GetString("MINIO_ENDPOINT") != "",
		},
		RabbitMQ: RabbitMQ{
			URL:      v.GetString("RABBITMQ_URL"),
			Queue:    v.GetString("RABBITMQ_CAMPAIGN_QUEUE"),
			Workers:  v.GetInt("RABBITMQ_WORKERS"),
			Enabled:  v.GetString("RABBITMQ_URL") != "",
			MaxTries: v.GetUint("RABBITMQ_MAX_TRIES"),
		},
		SMTP: SMTP{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetString("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Jobs: Jobs{
			SweepSchedule:    v.GetString("JOBS_SWEEP_SCHEDULE"),
			ReminderSchedule: v.GetString("JOBS_REMINDER_SCHEDULE"),
			BackfillSchedule: v.GetString("JOBS_AI_BACKFILL_SCHEDULE"),
			MissedCallAfter:  v.GetDuration("JOBS_MISSED_CALL_AFTER"),
		},
		PDFRendererURL: v.GetString("PDF_RENDERER_URL"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "bpoc")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_NOTIFICATION_CHANNEL", "notifications")
	v.SetDefault("DAILY_API_URL", "https://api.daily.co/v1")
	v.SetDefault("AI_PROVIDER", "gemini")
	v.SetDefault("AI_MAX_ATTEMPTS", 3)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("VERTEX_REGION", "us-central1")
	v.SetDefault("VERTEX_MODEL", "gemini-1.5-flash")
	v.SetDefault("MINIO_BUCKET", "bpoc")
	v.SetDefault("RABBITMQ_CAMPAIGN_QUEUE", "email_campaigns")
	v.SetDefault("RABBITMQ_WORKERS", 4)
	v.SetDefault("RABBITMQ_MAX_TRIES", 5)
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_FROM", "no-reply@bpoc.io")
	v.SetDefault("JOBS_SWEEP_SCHEDULE", "@every 1m")
	v.SetDefault("JOBS_REMINDER_SCHEDULE", "@every 1m")
	v.SetDefault("JOBS_AI_BACKFILL_SCHEDULE", "*/15 * * * *")
	v.SetDefault("JOBS_MISSED_CALL_AFTER", "60s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

func validateConfig(config *Config) error {
	supported := false
	for _, p := range supportedProviders {
		if config.AI.Provider == p {
			supported = true
			break
		}
	}
	if !supported {
		return errors.New("unsupported AI provider: " + config.AI.Provider + ". Currently supported: " + strings.Join(supportedProviders, ", "))
	}
	if config.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if config.AI.MaxAttempts < 1 {
		return fmt.Errorf("AI_MAX_ATTEMPTS must be positive, got %d", config.AI.MaxAttempts)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
