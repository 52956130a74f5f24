package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port string

	APIURL     string
	SocketURL  string
	APITimeout time.Duration
	FeedDriver string

	StorageDriver string
	StorageDir    string
	MongoURI      string
	DBName        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	AccessTokenTTL    time.Duration
	AdminEmail        string
	AdminPasswordHash string

	Currency             string
	DeliveryFee          float64
	NotificationLogLimit int
	CheckoutRatePerMin   int
	CORSOrigins          []string

	SessionIdleTTL time.Duration
	SecureCookies  bool
	APIToken       string

	ServiceName   string
	TraceExporter string
	OTLPEndpoint  string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() Config {
	return Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		APIURL:               strings.TrimRight(getEnvOrDefault("API_URL", "http://localhost:5500"), "/"),
		SocketURL:            getEnvOrDefault("SOCKET_URL", "http://localhost:5500"),
		APITimeout:           getDurationEnv("API_TIMEOUT", 10, time.Second),
		FeedDriver:           strings.ToLower(getEnvOrDefault("FEED_DRIVER", "socketio")),
		StorageDriver:        strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "file")),
		StorageDir:           getEnvOrDefault("STORAGE_DIR", "./data"),
		MongoURI:             getEnvOrDefault("MONGO_URI", ""),
		DBName:               getEnvOrDefault("DB_NAME", "farmstore"),
		RedisAddr:            getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:              getIntEnv("REDIS_DB", 0),
		JWTSecret:            getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:       getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		AdminEmail:           strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPasswordHash:    getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),
		Currency:             strings.ToUpper(getEnvOrDefault("CURRENCY", "CDF")),
		DeliveryFee:          getFloatEnv("DELIVERY_FEE", 5),
		NotificationLogLimit: getIntEnv("NOTIFICATION_LOG_LIMIT", 500),
		CheckoutRatePerMin:   getIntEnv("CHECKOUT_RATE_PER_MINUTE", 6),
		CORSOrigins:          getListEnv("CORS_ORIGINS", []string{"*"}),
		SessionIdleTTL:       getDurationEnv("SESSION_IDLE_TTL", 120, time.Minute),
		SecureCookies:        getBoolEnv("SECURE_COOKIES", false),
		APIToken:             getEnvOrDefault("API_TOKEN", ""),
		ServiceName:          getEnvOrDefault("SERVICE_NAME", "farmstore"),
		TraceExporter:        strings.ToLower(getEnvOrDefault("TRACE_EXPORTER", "none")),
		OTLPEndpoint:         getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] %s=%q is not a non-negative integer, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] %s=%q is not a non-negative number, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] %s=%q is not a boolean, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
