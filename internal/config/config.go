package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (actor identity, issued by the auth collaborator)
	JWTSecret string

	// KYC survey workbook
	SurveyPath string

	// Wizard
	MaxPhotoBytes int64
	PhotoBoundPx  int
	BlobRetention time.Duration
	AdminPageSize int

	// Admin
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "aipress24"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		SurveyPath: getEnv("KYC_SURVEY_PATH", "survey.xlsx"),

		MaxPhotoBytes: parseInt64(getEnv("KYC_MAX_PHOTO_BYTES", "2097152")),
		PhotoBoundPx:  int(parseInt64(getEnv("KYC_PHOTO_BOUND_PX", "800"))),
		BlobRetention: parseDuration(getEnv("KYC_BLOB_RETENTION", "48h")),
		AdminPageSize: int(parseInt64(getEnv("ADMIN_PAGE_SIZE", "25"))),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 48 * time.Hour
	}
	return d
}
