package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Workflow WorkflowConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WorkflowLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
	OtelSampleRatio    float64
}

type DatabaseConfig struct {
	Connection      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	NotifyEmail string // recipient of completion notices, empty disables them
}

type APIKeys struct {
	JwtSecret    string
	ScoringTopic string // watermill topic for queued contract scoring
}

type AIConfig struct {
	LLMProvider         string // "ollama", "openai", etc
	LLMModel            string // e.g. "llama3", "gpt-4o-mini"
	LLMBaseURL          string
	LLMAPIKey           string
	ScoringModel        string // overrides LLMModel for scoring when set
	CategorizationModel string
}

type WorkflowConfig struct {
	SessionStore        string // "memory" or "redis"
	SessionTTL          time.Duration
	MaxQuestionAttempts int
	ReviewPassScore     int
	MaxReviewIterations int
	DefaultDepartment   string
	CatalogFile         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WorkflowLogPath:    getEnv("WORKFLOW_LOG_PATH", "logs/workflow.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OtelSampleRatio:    getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			SlowQuery:       getEnvAsDuration("DB_SLOW_QUERY", time.Second),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "Contract Drafting"),
			NotifyEmail: getEnv("NOTIFY_EMAIL", ""),
		},
		Keys: APIKeys{
			JwtSecret:    getEnv("JWT_SECRET", ""),
			ScoringTopic: getEnv("SCORING_TOPIC", "SCORE_CONTRACT"),
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:          getEnv("LLM_BASE_URL", "http://localhost:11434"),
			LLMAPIKey:           getEnv("LLM_API_KEY", ""),
			ScoringModel:        getEnv("SCORING_MODEL", ""),
			CategorizationModel: getEnv("CATEGORIZATION_MODEL", ""),
		},
		Workflow: WorkflowConfig{
			SessionStore:        strings.ToLower(getEnv("SESSION_STORE", "memory")),
			SessionTTL:          getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			MaxQuestionAttempts: getEnvAsInt("MAX_QUESTION_ATTEMPTS", 5),
			ReviewPassScore:     getEnvAsInt("REVIEW_PASS_SCORE", 80),
			MaxReviewIterations: getEnvAsInt("MAX_REVIEW_ITERATIONS", 2),
			DefaultDepartment:   getEnv("DEFAULT_DEPARTMENT", "Legal"),
			CatalogFile:         getEnv("CATALOG_FILE", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
