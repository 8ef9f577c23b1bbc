package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port               string
	AppEnv             string
	DBDSN              string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CORSOrigins        []string
	UploadDir          string
	MaxUploadMB        int64
	CookieSecure       bool
	AuthRateLimit      float64
	AuthRateBurst      int
	Seed               bool
	LogLevel           string
}

// Load reads configuration from the environment. Call godotenv.Load first
// when a .env file should be honoured.
func Load() Config {
	return Config{
		Port:               getenv("PORT", "8080"),
		AppEnv:             getenv("APP_ENV", "development"),
		DBDSN:              getenv("DB_DSN", "root:@tcp(127.0.0.1:3306)/spareshop?charset=utf8mb4&parseTime=True&loc=Local"),
		AccessTokenSecret:  getenv("ACCESS_TOKEN_SECRET", "change-me-access"),
		RefreshTokenSecret: getenv("REFRESH_TOKEN_SECRET", "change-me-refresh"),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		CORSOrigins:        splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000")),
		UploadDir:          getenv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB:        int64(getInt("MAX_UPLOAD_MB", 5)),
		CookieSecure:       getBool("COOKIE_SECURE", false),
		AuthRateLimit:      getFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:      getInt("AUTH_RATE_BURST", 10),
		Seed:               getBool("SEED", false),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getFloat(k string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	return v
}

func getBool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
