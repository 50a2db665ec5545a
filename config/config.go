package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	DBUrl string
	// OpenRouter API
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	ParsingModel      string
	ScreeningModel    string
	// Email Processing
	EnableEmailProcessing bool
	PollIntervalSeconds   int
	MailboxQuery          string
	SenderEmail           string
	GmailTokenJSON        string // full token JSON (Cloud Run style)
	GmailTokenPath        string // file fallback for local development
	// Resume Storage (S3-compatible; local fallback when bucket unset)
	S3Bucket        string
	S3Region        string
	S3AccessKeyID   string
	S3SecretKey     string
	S3Endpoint      string
	LocalResumeDir  string
	MaxAttachmentMB int
	// Dedup cache (Redis optional; in-memory fallback)
	RedisURL      string
	RedisPassword string
	// Admin API (cache clear, compliance delete)
	AdminJWTSecret string
	// OCR toolchain
	TesseractLang string
	PopplerPath   string
}

func LoadConfig() (*Config, error) {
	// .env only matters locally; ignored in production when absent
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),
		// OpenRouter API
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: strings.TrimRight(getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		ParsingModel:      getEnv("PARSING_MODEL", "openai/gpt-3.5-turbo"),
		ScreeningModel:    getEnv("SCREENING_MODEL", "openai/gpt-3.5-turbo"),
		// Email Processing
		EnableEmailProcessing: getEnvBool("ENABLE_EMAIL_PROCESSING", true),
		PollIntervalSeconds:   getEnvInt("POLL_INTERVAL", 300), // 5 minute poll cycle
		MailboxQuery:          getEnv("MAILBOX_QUERY", "has:attachment is:unread"),
		SenderEmail:           getEnv("SENDER_EMAIL", "recruiting@auroralabs.example"),
		GmailTokenJSON:        getEnv("GMAIL_TOKEN_JSON", ""),
		GmailTokenPath:        getEnv("GMAIL_TOKEN_PATH", "token.json"),
		// Resume Storage
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		LocalResumeDir:  getEnv("LOCAL_RESUME_DIR", "resumes"),
		MaxAttachmentMB: getEnvInt("MAX_ATTACHMENT_MB", 10),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Admin API
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		// OCR
		TesseractLang: getEnv("TESSERACT_LANG", "eng"),
		PopplerPath:   getEnv("POPPLER_PATH", ""),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.OpenRouterAPIKey == "" {
		log.Println("WARNING: OPENROUTER_API_KEY not configured. Parsing and screening will use heuristic fallbacks only.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Dedup cache will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
