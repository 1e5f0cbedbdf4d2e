package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Application identity
	Env         string
	ProjectName string
	PathPrefix  string
	AppPort     string
	Debug       bool

	// MongoDB Configuration
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// HTTP Server Configuration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Access Token Configuration
	SecretKey         string
	Algorithm         string
	AccessTokenExpiry time.Duration

	// Telegram Configuration
	BotToken     string
	ErrorChatID  int64
	DBDumpChatID int64

	// Health Probe Configuration
	NginxExternalPort string
	ProbeTimeout      time.Duration

	// Scheduler Configuration
	SchedulerEnabled    bool
	PingIntervalMinutes int
	DumpHour            int

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// Application
		Env:         getEnv("ENV", "local"),
		ProjectName: getEnv("PROJECT_NAME", "outpost"),
		PathPrefix:  getEnv("PATH_PREFIX", "/api"),
		AppPort:     getEnv("APP_PORT", "8090"),
		Debug:       getBoolEnv("DEBUG", false),

		// MongoDB
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/outpost?authSource=admin"),
		MongoDatabase: getEnv("MONGO_DATABASE", "outpost"),
		MongoTimeout:  getDurationEnv("MONGO_TIMEOUT_SEC", 10) * time.Second,

		// HTTP Server
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 30) * time.Second,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Access tokens. The secret has no usable default on purpose.
		SecretKey:         getEnv("SECRET_KEY", ""),
		Algorithm:         getEnv("ALGORITHM", "HS256"),
		AccessTokenExpiry: getDurationEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 1440) * time.Minute,

		// Telegram
		BotToken:     getEnv("TG_HELPER_BOT_TOKEN", ""),
		ErrorChatID:  getInt64Env("TG_ERROR_CHAT_ID", 0),
		DBDumpChatID: getInt64Env("TG_DB_DUMP_CHAT_ID", 0),

		// Health probes
		NginxExternalPort: getEnv("NGINX_EXTERNAL_PORT", "80"),
		ProbeTimeout:      getDurationEnv("PROBE_TIMEOUT_SEC", 10) * time.Second,

		// Scheduler
		SchedulerEnabled:    getBoolEnv("SCHEDULER_ENABLED", true),
		PingIntervalMinutes: getIntEnv("PING_INTERVAL_MINUTES", 1),
		DumpHour:            getIntEnv("DB_DUMP_HOUR", 3),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, OPTIONS"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),
	}
}

// ProbeHosts returns the hosts the ping scheduler probes: the service behind
// the external nginx port and the application itself.
func (c *Config) ProbeHosts() []string {
	return []string{
		fmt.Sprintf("nginx:%s", c.NginxExternalPort),
		fmt.Sprintf("app:%s", c.AppPort),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
