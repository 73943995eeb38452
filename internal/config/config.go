package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Storage   StorageConfig
	OCR       OCRConfig
	Face      FaceConfig
	Sanctions SanctionsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds encryption keys and session settings
type SecurityConfig struct {
	SessionEncryptionKey string
	SessionTTL           time.Duration
}

// StorageConfig holds document blob storage configuration
type StorageConfig struct {
	BaseDir string
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Language       string
	TessdataPrefix string
}

// FaceConfig holds face recognition model configuration
type FaceConfig struct {
	ModelsDir string
}

// SanctionsConfig holds the public sanctions dataset source settings
type SanctionsConfig struct {
	URL             string
	Timeout         time.Duration
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "peerlend"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			BaseDir: getEnv("STORAGE_BASE_DIR", "./data/documents"),
		},
		OCR: OCRConfig{
			Language:       getEnv("OCR_LANGUAGE", "por"),
			TessdataPrefix: getEnv("OCR_TESSDATA_PREFIX", ""),
		},
		Face: FaceConfig{
			ModelsDir: getEnv("FACE_MODELS_DIR", "./data/models"),
		},
		Sanctions: SanctionsConfig{
			URL:             getEnv("SANCTIONS_CSV_URL", "https://portaldatransparencia.gov.br/download-de-dados/ceis"),
			Timeout:         getEnvAsDuration("SANCTIONS_TIMEOUT", 30*time.Second),
			CacheTTL:        getEnvAsDuration("SANCTIONS_CACHE_TTL", 24*time.Hour),
			RefreshInterval: getEnvAsDuration("SANCTIONS_REFRESH_INTERVAL", 6*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
