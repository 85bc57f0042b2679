// Package config provides centralized default values for MockDrill
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	BaseURL            string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Storage Configuration
	SQLitePath    string
	TursoDatabase string
	TursoToken    string

	// Session Configuration
	JWTSecret     string
	SessionMaxAge time.Duration

	// Default account seeded into an empty user directory
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string

	// Wizard Configuration
	CompleteResetDelay time.Duration
	SimulatedSendDelay time.Duration

	// Outbound Channels
	EmailJSEndpoint  string
	SMSEndpoint      string
	WhatsAppEndpoint string
	SenderName       string

	// Draft Generation
	GeminiEndpoint  string
	GeminiMaxTokens int

	// Operator Mailer (Resend)
	ResendAPIKey  string
	MailFromEmail string
	MailFromName  string

	// Observability
	LogDirectory    string
	LogJSONFormat   bool
	SlowOpThreshold time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Storage
	SQLitePath = getEnvString("SQLITE_PATH", "data/mockdrill.db")
	TursoDatabase = getEnvString("TURSO_DATABASE", "")
	TursoToken = getEnvString("TURSO_TOKEN", "")

	// Session
	JWTSecret = getEnvString("JWT_SECRET", "mockdrill-dev-secret")
	SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", 24*time.Hour)

	// Seeded account
	SeedAdminEmail = getEnvString("SEED_ADMIN_EMAIL", "admin@example.com")
	SeedAdminPassword = getEnvString("SEED_ADMIN_PASSWORD", "password")
	SeedAdminName = getEnvString("SEED_ADMIN_NAME", "Admin User")

	// Wizard
	CompleteResetDelay = getEnvDuration("COMPLETE_RESET_DELAY", 3*time.Second)
	SimulatedSendDelay = getEnvDuration("SIMULATED_SEND_DELAY", 1*time.Second)

	// Outbound Channels
	EmailJSEndpoint = getEnvString("EMAILJS_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send")
	SMSEndpoint = getEnvString("SMS_ENDPOINT", "https://api.twilio.com/2010-04-01/Accounts/default/Messages.json")
	WhatsAppEndpoint = getEnvString("WHATSAPP_ENDPOINT", "https://api.whatsapp.com/send")
	SenderName = getEnvString("SENDER_NAME", "IT Security Team")

	// Draft Generation
	GeminiEndpoint = getEnvString("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1/models/gemini-1.5-flash:generateContent")
	GeminiMaxTokens = getEnvInt("GEMINI_MAX_TOKENS", 1500)

	// Operator Mailer
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	MailFromEmail = getEnvString("MAIL_FROM_EMAIL", "noreply@mockdrill.app")
	MailFromName = getEnvString("MAIL_FROM_NAME", "MockDrill")

	// Observability
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogJSONFormat = getEnvBool("LOG_JSON_FORMAT", true)
	SlowOpThreshold = getEnvDuration("SLOW_OP_THRESHOLD", 500*time.Millisecond)
}
